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

func sp(a, b string, score int, suffixMatch bool) *ScoredPair {
	return &ScoredPair{
		CandidatePair: CandidatePair{IDA: a, IDB: b},
		SuffixMatch:   suffixMatch,
		Score:         score,
	}
}

func TestEdgeGate(t *testing.T) {

	o := cnf.Defaults()
	stop := map[string]bool{}
	a := Normalize(Record{AccountName: "Acme Stores"})
	b := Normalize(Record{AccountName: "Acme Stores"})

	Convey("A pair scoring at or above the high threshold with a suffix match", t, func() {
		pair := sp("a", "b", o.Similarity.High, true)
		Convey("Is eligible", func() {
			ok, reason := edgeGate(pair, a, b, o, stop)
			So(ok, ShouldBeTrue)
			So(reason, ShouldEqual, "edge>=high")
		})
	})

	Convey("A pair scoring below high but at or above medium, sharing a token", t, func() {
		pair := sp("a", "b", o.Similarity.Medium, true)
		Convey("Is eligible via medium+shared_token", func() {
			ok, reason := edgeGate(pair, a, b, o, stop)
			So(ok, ShouldBeTrue)
			So(reason, ShouldEqual, "edge>=medium+shared_token")
		})
	})

	Convey("A pair with a suffix mismatch", t, func() {
		pair := sp("a", "b", 100, false)
		Convey("Is never eligible regardless of score", func() {
			ok, _ := edgeGate(pair, a, b, o, stop)
			So(ok, ShouldBeFalse)
		})
	})

	Convey("A pair at medium score but sharing no token", t, func() {
		x := Normalize(Record{AccountName: "Zephyr Holdings"})
		y := Normalize(Record{AccountName: "Nimbus Traders"})
		pair := sp("a", "b", o.Similarity.Medium, true)
		Convey("Is not eligible", func() {
			ok, _ := edgeGate(pair, x, y, o, stop)
			So(ok, ShouldBeFalse)
		})
	})
}

func TestGroupPartitioning(t *testing.T) {

	Convey("Three records joined by a chain of high-score edges", t, func() {
		o := cnf.Defaults()
		stop := map[string]bool{}

		records := []*NormalizedRecord{
			Normalize(Record{AccountID: "001000000000001AAA", AccountName: "Acme Stores"}),
			Normalize(Record{AccountID: "001000000000002AAA", AccountName: "Acme Stores"}),
			Normalize(Record{AccountID: "001000000000003AAA", AccountName: "Acme Stores"}),
			Normalize(Record{AccountID: "001000000000004AAA", AccountName: "Zephyr Holdings"}),
		}

		scored := []*ScoredPair{
			sp("001000000000001AAA", "001000000000002AAA", 100, true),
			sp("001000000000002AAA", "001000000000003AAA", 100, true),
		}

		groups, rejections, err := Group(records, scored, o, stop)

		Convey("Should produce no error", func() {
			So(err, ShouldBeNil)
		})
		Convey("Should produce no rejections", func() {
			So(rejections, ShouldBeEmpty)
		})
		Convey("Should partition into one 3-member group and one singleton", func() {
			So(groups, ShouldHaveLength, 2)
			sizes := []int{len(groups[0].Members), len(groups[1].Members)}
			So(sizes, ShouldContain, 3)
			So(sizes, ShouldContain, 1)
		})
		Convey("Should accumulate join reasons on the merged component", func() {
			for _, g := range groups {
				if len(g.Members) == 3 {
					So(g.JoinReasons, ShouldContain, "edge>=high")
				}
			}
		})
		Convey("Should assign deterministic group ids", func() {
			groups2, _, _ := Group(records, scored, o, stop)
			So(groups[0].ID, ShouldEqual, groups2[0].ID)
		})
	})

	Convey("An edge that would exceed the canopy bound", t, func() {
		o := cnf.Defaults()
		o.Grouping.MaxGroupSize = 2
		stop := map[string]bool{}

		records := []*NormalizedRecord{
			Normalize(Record{AccountID: "001000000000001AAA", AccountName: "Acme Stores"}),
			Normalize(Record{AccountID: "001000000000002AAA", AccountName: "Acme Stores"}),
			Normalize(Record{AccountID: "001000000000003AAA", AccountName: "Acme Stores"}),
		}

		scored := []*ScoredPair{
			sp("001000000000001AAA", "001000000000002AAA", 100, true),
			sp("001000000000002AAA", "001000000000003AAA", 99, true),
		}

		groups, rejections, err := Group(records, scored, o, stop)

		Convey("Should produce no error", func() {
			So(err, ShouldBeNil)
		})
		Convey("Should reject the edge that would grow the component past the bound", func() {
			So(rejections, ShouldHaveLength, 1)
			So(rejections[0].Reason, ShouldEqual, "canopy_bound_exceeded")
		})
		Convey("Should still produce a 2-member group and a singleton", func() {
			sizes := []int{}
			for _, g := range groups {
				sizes = append(sizes, len(g.Members))
			}
			So(sizes, ShouldContain, 2)
			So(sizes, ShouldContain, 1)
		})
	})
}

func TestGroupJoinEdgesExcludeIneligiblePairs(t *testing.T) {

	Convey("A component joined via two real edges, plus a scored pair between two of its members that never passed edge-gating", t, func() {
		o := cnf.Defaults()
		o.Similarity.Medium = 80 // so the b-c edge below is eligible via medium+shared_token
		stop := map[string]bool{}

		records := []*NormalizedRecord{
			Normalize(Record{AccountID: "a", AccountName: "Acme Retail"}),
			Normalize(Record{AccountID: "b", AccountName: "Acme Retail"}),
			Normalize(Record{AccountID: "c", AccountName: "Acme Retail"}),
		}

		scored := []*ScoredPair{
			sp("a", "b", 100, true),
			sp("b", "c", 80, true),
			sp("a", "c", 95, false), // high score, but suffix mismatch: never eligible
		}

		groups, _, err := Group(records, scored, o, stop)
		So(err, ShouldBeNil)
		So(groups, ShouldHaveLength, 1)
		g := groups[0]

		Convey("Should carry only the two eligible edges as JoinEdges", func() {
			So(g.JoinEdges, ShouldHaveLength, 2)
			for _, e := range g.JoinEdges {
				So(CandidatePair{IDA: e.IDA, IDB: e.IDB}, ShouldNotResemble, CandidatePair{IDA: "a", IDB: "c"})
			}
		})

		Convey("Should compute the true bottleneck through the used edges, not the phantom direct edge", func() {
			got := WeakestEdgeToPrimary(g.Members, "a", g.JoinEdges)
			So(got, ShouldEqual, 80)
		})
	})
}

func TestWeakestEdgeToPrimary(t *testing.T) {

	Convey("A single-member group", t, func() {
		Convey("Scores 100 regardless of edges", func() {
			So(WeakestEdgeToPrimary([]string{"a"}, "a", nil), ShouldEqual, 100)
		})
	})

	Convey("A chain a-b-c where the primary is a", t, func() {
		edges := []*ScoredPair{
			{CandidatePair: CandidatePair{IDA: "a", IDB: "b"}, Score: 95},
			{CandidatePair: CandidatePair{IDA: "b", IDB: "c"}, Score: 80},
		}
		Convey("Should take the maximum-bottleneck path, not the direct edge", func() {
			got := WeakestEdgeToPrimary([]string{"a", "b", "c"}, "a", edges)
			So(got, ShouldEqual, 80)
		})
	})

	Convey("A member reachable by two paths of differing bottleneck", t, func() {
		edges := []*ScoredPair{
			{CandidatePair: CandidatePair{IDA: "a", IDB: "b"}, Score: 90},
			{CandidatePair: CandidatePair{IDA: "b", IDB: "c"}, Score: 70},
			{CandidatePair: CandidatePair{IDA: "a", IDB: "c"}, Score: 85},
		}
		Convey("Should prefer the widest available path", func() {
			got := WeakestEdgeToPrimary([]string{"a", "b", "c"}, "a", edges)
			So(got, ShouldEqual, 85)
		})
	})
}
