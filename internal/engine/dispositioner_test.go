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

type fakeBlacklist map[string]bool

func (f fakeBlacklist) IsBlacklisted(id string) bool { return f[id] }

type fakeOverrides map[string]Disposition

func (f fakeOverrides) Override(id string) (Disposition, bool) {
	d, ok := f[id]
	return d, ok
}

func TestDisposeBuiltinBlacklist(t *testing.T) {

	Convey("A record whose name contains a built-in blacklisted term", t, func() {
		o := cnf.Defaults()
		r := Normalize(Record{AccountID: "a", AccountName: "PNC is not sure LLC"})
		results := Dispose([]*NormalizedRecord{r}, nil, nil, NoBlacklist, NoOverrides, o)

		Convey("Should be deleted independent of the manual blacklist", func() {
			So(results[0].Value, ShouldEqual, Delete)
			So(results[0].Reason, ShouldEqual, "blacklisted_builtin_term")
		})
	})

	Convey("A record whose name is exactly 'Test'", t, func() {
		o := cnf.Defaults()
		r := Normalize(Record{AccountID: "a", AccountName: "Test"})
		results := Dispose([]*NormalizedRecord{r}, nil, nil, NoBlacklist, NoOverrides, o)

		Convey("Should be deleted", func() {
			So(results[0].Value, ShouldEqual, Delete)
		})
	})
}

func TestDisposeManualBlacklist(t *testing.T) {

	Convey("A record flagged on the manual blacklist", t, func() {
		o := cnf.Defaults()
		r := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		bl := fakeBlacklist{"a": true}
		results := Dispose([]*NormalizedRecord{r}, nil, nil, bl, NoOverrides, o)

		Convey("Should be deleted with reason blacklisted_manual", func() {
			So(results[0].Value, ShouldEqual, Delete)
			So(results[0].Reason, ShouldEqual, "blacklisted_manual")
		})
	})
}

func TestDisposeCleanSingleton(t *testing.T) {

	Convey("An ungrouped record with no ambiguity signals", t, func() {
		o := cnf.Defaults()
		r := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		results := Dispose([]*NormalizedRecord{r}, nil, nil, NoBlacklist, NoOverrides, o)

		Convey("Should keep as a clean singleton", func() {
			So(results[0].Value, ShouldEqual, Keep)
			So(results[0].Reason, ShouldEqual, "clean_singleton")
		})
	})
}

func TestDisposeGroupPrimaryAndMembers(t *testing.T) {

	Convey("A group with a chosen primary and one other member", t, func() {
		o := cnf.Defaults()
		a := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		b := Normalize(Record{AccountID: "b", AccountName: "Acme Retail"})
		g := &Group{ID: "grp_1", Members: []string{"a", "b"}, PrimaryID: "a", WeakestEdgeToPrimary: 100}

		results := Dispose([]*NormalizedRecord{a, b}, []*Group{g}, nil, NoBlacklist, NoOverrides, o)

		byID := map[string]*DispositionResult{}
		for _, r := range results {
			byID[r.AccountID] = r
		}

		Convey("Should keep the primary", func() {
			So(byID["a"].Value, ShouldEqual, Keep)
			So(byID["a"].Reason, ShouldEqual, "primary")
		})
		Convey("Should update the non-primary member", func() {
			So(byID["b"].Value, ShouldEqual, Update)
			So(byID["b"].Reason, ShouldEqual, "non_primary_member")
		})
	})
}

func TestDisposeVerifySignals(t *testing.T) {

	o := cnf.Defaults()

	Convey("A group whose members disagree on suffix class", t, func() {
		a := Normalize(Record{AccountID: "a", AccountName: "Acme Inc"})
		b := Normalize(Record{AccountID: "b", AccountName: "Acme LLC"})
		g := &Group{ID: "grp_1", Members: []string{"a", "b"}, PrimaryID: "a", WeakestEdgeToPrimary: 100}

		results := Dispose([]*NormalizedRecord{a, b}, []*Group{g}, nil, NoBlacklist, NoOverrides, o)

		Convey("Should flag every member for verification", func() {
			for _, r := range results {
				So(r.Value, ShouldEqual, Verify)
				So(r.Reason, ShouldEqual, "suffix_disagreement")
			}
		})
	})

	Convey("A record with multiple embedded names", t, func() {
		r := Normalize(Record{AccountID: "a", AccountName: "Foo Corp; Bar Corp"})
		results := Dispose([]*NormalizedRecord{r}, nil, nil, NoBlacklist, NoOverrides, o)

		Convey("Should be flagged for verification", func() {
			So(results[0].Value, ShouldEqual, Verify)
			So(results[0].Reason, ShouldEqual, "multi_name_record")
		})
	})

	Convey("A record with an outbound alias cross-link", t, func() {
		r := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		link := &AliasCrossLink{SourceID: "a", TargetGroupID: "grp_2", AliasSource: AliasSemicolon}
		results := Dispose([]*NormalizedRecord{r}, nil, []*AliasCrossLink{link}, NoBlacklist, NoOverrides, o)

		Convey("Should be flagged for verification with the alias-match reason", func() {
			So(results[0].Value, ShouldEqual, Verify)
			So(results[0].Reason, ShouldEqual, "alias_matches_1_groups_via_[semicolon]")
		})
	})

	Convey("A record with outbound alias cross-links into two groups via two sources", t, func() {
		r := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		links := []*AliasCrossLink{
			{SourceID: "a", TargetGroupID: "grp_2", AliasSource: AliasSemicolon},
			{SourceID: "a", TargetGroupID: "grp_3", AliasSource: AliasParenthesis},
		}
		results := Dispose([]*NormalizedRecord{r}, nil, links, NoBlacklist, NoOverrides, o)

		Convey("Should report the distinct group count and sorted source list", func() {
			So(results[0].Value, ShouldEqual, Verify)
			So(results[0].Reason, ShouldEqual, "alias_matches_2_groups_via_[parenthesis,semicolon]")
		})
	})

	Convey("A group member joined only through a canopy-weakened edge", t, func() {
		a := Normalize(Record{AccountID: "a", AccountName: "Acme Retail"})
		b := Normalize(Record{AccountID: "b", AccountName: "Acme Retail"})
		g := &Group{ID: "grp_1", Members: []string{"a", "b"}, PrimaryID: "a", WeakestEdgeToPrimary: o.Similarity.Medium - 1}

		results := Dispose([]*NormalizedRecord{a, b}, []*Group{g}, nil, NoBlacklist, NoOverrides, o)

		Convey("Should flag for verification", func() {
			for _, r := range results {
				So(r.Value, ShouldEqual, Verify)
				So(r.Reason, ShouldEqual, "canopy_weak_edge")
			}
		})
	})
}

func TestDisposeManualOverrideWinsLast(t *testing.T) {

	Convey("A manual override on a record that would otherwise be deleted", t, func() {
		o := cnf.Defaults()
		r := Normalize(Record{AccountID: "a", AccountName: "Test Corp"})
		ov := fakeOverrides{"a": Keep}
		results := Dispose([]*NormalizedRecord{r}, nil, nil, NoBlacklist, ov, o)

		Convey("Should take precedence over the built-in blacklist", func() {
			So(results[0].Value, ShouldEqual, Keep)
			So(results[0].Reason, ShouldEqual, "manual_override")
		})
	})
}
