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

package engine

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/crmdedupe/acctdedupe/cnf"
)

func TestMatchAliases(t *testing.T) {

	Convey("A record in one group whose alias candidate matches another group's name", t, func() {
		o := cnf.Defaults()
		cache := newScoreCache()

		source := Normalize(Record{AccountID: "a", AccountName: "Acme Retail (Beta Stores Inc)"})
		target := Normalize(Record{AccountID: "b", AccountName: "Beta Stores Inc"})

		records := []*NormalizedRecord{source, target}
		groups := []*Group{
			{ID: "grp_a", Members: []string{"a"}, PrimaryID: "a"},
			{ID: "grp_b", Members: []string{"b"}, PrimaryID: "b"},
		}

		links := MatchAliases(records, groups, cache, o)

		Convey("Should emit a cross-link to the other group", func() {
			found := false
			for _, l := range links {
				if l.SourceID == "a" && l.TargetGroupID == "grp_b" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})

		Convey("Should never link a record to its own group", func() {
			for _, l := range links {
				So(l.TargetGroupID, ShouldNotEqual, "grp_a")
			}
		})
	})

	Convey("A record whose alias matches a non-primary member of another group", t, func() {
		o := cnf.Defaults()
		cache := newScoreCache()

		source := Normalize(Record{AccountID: "a", AccountName: "Acme Retail (Beta Stores Inc)"})
		primary := Normalize(Record{AccountID: "b", AccountName: "Beta Holdings Inc", Relationship: "customer"})
		other := Normalize(Record{AccountID: "c", AccountName: "Beta Stores Inc", Relationship: "employee"})

		records := []*NormalizedRecord{source, primary, other}
		groups := []*Group{
			{ID: "grp_a", Members: []string{"a"}, PrimaryID: "a"},
			{ID: "grp_b", Members: []string{"b", "c"}, PrimaryID: "b"},
		}

		links := MatchAliases(records, groups, cache, o)

		Convey("Should still emit a cross-link even though the primary's name doesn't match", func() {
			found := false
			for _, l := range links {
				if l.SourceID == "a" && l.TargetGroupID == "grp_b" {
					found = true
				}
			}
			So(found, ShouldBeTrue)
		})
	})

	Convey("A record with no alias candidates", t, func() {
		o := cnf.Defaults()
		cache := newScoreCache()

		a := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		b := Normalize(Record{AccountID: "b", AccountName: "Acme Retail"})

		records := []*NormalizedRecord{a, b}
		groups := []*Group{
			{ID: "grp_a", Members: []string{"a"}, PrimaryID: "a"},
			{ID: "grp_b", Members: []string{"b"}, PrimaryID: "b"},
		}

		links := MatchAliases(records, groups, cache, o)

		Convey("Should emit no cross-links", func() {
			So(links, ShouldBeEmpty)
		})
	})

	Convey("The alias pair cap", t, func() {
		o := cnf.Defaults()
		o.Alias.MaxAliasPairs = 1
		cache := newScoreCache()

		source := Normalize(Record{AccountID: "a", AccountName: "Acme Retail (Beta Stores Inc) (Gamma Stores Inc)"})
		targetB := Normalize(Record{AccountID: "b", AccountName: "Beta Stores Inc"})
		targetC := Normalize(Record{AccountID: "c", AccountName: "Gamma Stores Inc"})

		records := []*NormalizedRecord{source, targetB, targetC}
		groups := []*Group{
			{ID: "grp_a", Members: []string{"a"}, PrimaryID: "a"},
			{ID: "grp_b", Members: []string{"b"}, PrimaryID: "b"},
			{ID: "grp_c", Members: []string{"c"}, PrimaryID: "c"},
		}

		links := MatchAliases(records, groups, cache, o)

		Convey("Should never emit more links than the cap", func() {
			So(len(links), ShouldBeLessThanOrEqualTo, 1)
		})
	})
}
