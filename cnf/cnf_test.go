// Copyright © 2016 Abcum Ltd
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package cnf

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDefaults(t *testing.T) {

	Convey("The default configuration", t, func() {
		o := Defaults()

		Convey("Should set the configured similarity thresholds", func() {
			So(o.Similarity.High, ShouldEqual, 92)
			So(o.Similarity.Medium, ShouldEqual, 84)
			So(o.Similarity.GateCutoff, ShouldEqual, 72)
		})
		Convey("Should set the configured penalty weights", func() {
			So(o.Similarity.Penalty.SuffixMismatch, ShouldEqual, 25)
			So(o.Similarity.Penalty.NumStyleMismatch, ShouldEqual, 5)
			So(o.Similarity.Penalty.PunctuationMismatch, ShouldEqual, 3)
		})
		Convey("Should set the configured blocking defaults", func() {
			So(o.Blocking.StopTokens, ShouldResemble, []string{"inc", "llc", "ltd"})
			So(o.Blocking.SoftBan.BlockCap, ShouldEqual, 800)
			So(o.Blocking.SoftBan.MaxShardSize, ShouldEqual, 200)
		})
		Convey("Should set the configured grouping and alias defaults", func() {
			So(o.Grouping.MaxGroupSize, ShouldEqual, 50)
			So(o.Grouping.EdgeGating.AllowMediumPlusSharedToken, ShouldBeTrue)
			So(o.Alias.MaxAliasPairs, ShouldEqual, 100000)
		})
		Convey("Should set the global pair cap", func() {
			So(o.MaxPairs, ShouldEqual, 2000000)
		})
	})
}

func TestMerge(t *testing.T) {

	Convey("Merging a partial overlay onto the defaults", t, func() {
		base := Defaults()
		overlay := &Options{}
		overlay.Similarity.High = 95
		overlay.MaxPairs = 500

		merged := base.Merge(overlay)

		Convey("Should overlay the non-zero overlay fields", func() {
			So(merged.Similarity.High, ShouldEqual, 95)
			So(merged.MaxPairs, ShouldEqual, 500)
		})
		Convey("Should leave zero-valued overlay fields at their default", func() {
			So(merged.Similarity.Medium, ShouldEqual, 84)
			So(merged.Blocking.SoftBan.BlockCap, ShouldEqual, 800)
		})
	})

	Convey("Merging a nil overlay", t, func() {
		base := Defaults()
		merged := base.Merge(nil)

		Convey("Should leave the receiver unchanged", func() {
			So(merged, ShouldEqual, base)
			So(merged.Similarity.High, ShouldEqual, 92)
		})
	})
}

func TestLoad(t *testing.T) {

	Convey("An empty path", t, func() {
		o, err := Load("")
		Convey("Should return the defaults", func() {
			So(err, ShouldBeNil)
			So(o.Similarity.High, ShouldEqual, 92)
		})
	})

	Convey("A path that does not exist", t, func() {
		o, err := Load(filepath.Join(t.TempDir(), "missing.hjson"))
		Convey("Should return the defaults without error", func() {
			So(err, ShouldBeNil)
			So(o.Similarity.High, ShouldEqual, 92)
		})
	})

	Convey("A valid config file overriding one field", t, func() {
		path := filepath.Join(t.TempDir(), "config.hjson")
		err := os.WriteFile(path, []byte(`{"similarity": {"high": 95}, "maxPairs": 500}`), 0o644)
		So(err, ShouldBeNil)

		o, err := Load(path)
		Convey("Should merge the override onto the defaults", func() {
			So(err, ShouldBeNil)
			So(o.Similarity.High, ShouldEqual, 95)
			So(o.MaxPairs, ShouldEqual, 500)
			So(o.Similarity.Medium, ShouldEqual, 84)
		})
	})

	Convey("A malformed config file", t, func() {
		path := filepath.Join(t.TempDir(), "bad.hjson")
		err := os.WriteFile(path, []byte(`{not valid json or hjson:::`), 0o644)
		So(err, ShouldBeNil)

		_, err = Load(path)
		Convey("Should fail", func() {
			So(err, ShouldNotBeNil)
		})
	})
}
