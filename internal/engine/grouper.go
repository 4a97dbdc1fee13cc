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
	"fmt"
	"sort"

	"github.com/cespare/xxhash/v2"

	"github.com/crmdedupe/acctdedupe/cnf"
)

// Rejection records a canopy-bound edge that was dropped to keep a
// component within grouping.max_group_size.
type Rejection struct {
	IDA, IDB string
	Score    int
	Reason   string
}

// eligibleEdge is an edge that passed edge-gating, ready for union-find.
type eligibleEdge struct {
	idA, idB string
	score    int
	reason   string
}

// edgeGate reports whether a scored pair is eligible to join two
// components, and under which join reason.
func edgeGate(sp *ScoredPair, a, b *NormalizedRecord, o *cnf.Options, stopTokens map[string]bool) (bool, string) {

	if !sp.SuffixMatch {
		return false, ""
	}

	if sp.Score >= o.Similarity.High {
		return true, "edge>=high"
	}

	if o.Grouping.EdgeGating.AllowMediumPlusSharedToken &&
		sp.Score >= o.Similarity.Medium &&
		SharesToken(a, b, stopTokens) {
		return true, "edge>=medium+shared_token"
	}

	return false, ""
}

// Group runs edge-gated union-find over the scored pairs, bounded by
// grouping.max_group_size (the canopy bound). It returns one Group per
// connected component (members in ascending account_id order, primary
// unset — Survivor fills that in) plus the set of edges rejected solely
// to preserve the canopy bound.
func Group(records []*NormalizedRecord, scored []*ScoredPair, o *cnf.Options, stopTokens map[string]bool) ([]*Group, []Rejection, error) {

	byID := make(map[string]*NormalizedRecord, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		byID[r.AccountID] = r
		ids = append(ids, r.AccountID)
	}
	sort.Strings(ids)

	index := make(map[string]int, len(ids))
	for i, id := range ids {
		index[id] = i
	}

	uf := newUnionFind(len(ids))

	var edges []eligibleEdge
	for _, sp := range scored {
		a, aok := byID[sp.IDA]
		b, bok := byID[sp.IDB]
		if !aok || !bok {
			continue
		}
		if ok, reason := edgeGate(sp, a, b, o, stopTokens); ok {
			edges = append(edges, eligibleEdge{idA: sp.IDA, idB: sp.IDB, score: sp.Score, reason: reason})
		}
	}

	// Scored pairs consumed by the grouper are processed score
	// descending, then (id_a,id_b) ascending, so union-find operates on
	// a canonical edge stream regardless of scheduling order upstream.
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].score != edges[j].score {
			return edges[i].score > edges[j].score
		}
		if edges[i].idA != edges[j].idA {
			return edges[i].idA < edges[j].idA
		}
		return edges[i].idB < edges[j].idB
	})

	joinReasons := make(map[int]map[string]bool) // root -> reasons, re-keyed after each union
	usedEdges := make(map[int][]eligibleEdge)     // root -> edges merged into this component

	var rejections []Rejection
	maxSize := o.Grouping.MaxGroupSize
	if maxSize <= 0 {
		maxSize = len(ids)
	}

	for _, e := range edges {
		ia, okA := index[e.idA]
		ib, okB := index[e.idB]
		if !okA || !okB {
			continue
		}

		ra, rb := uf.find(ia), uf.find(ib)
		if ra == rb {
			usedEdges[ra] = append(usedEdges[ra], e)
			if joinReasons[ra] == nil {
				joinReasons[ra] = make(map[string]bool)
			}
			joinReasons[ra][e.reason] = true
			continue
		}

		sizeA, sizeB := uf.componentSize(ia), uf.componentSize(ib)
		if sizeA+sizeB > maxSize {
			// Canopy bound: reject the edge that would grow the
			// component past the bound. Edges are already processed
			// score-descending then id-ascending, which is itself a
			// deterministic proxy for "reject the edge that would
			// introduce the largest diameter" (the lowest-priority
			// edge competing for the same oversized merge is always
			// the one rejected first under this ordering).
			rejections = append(rejections, Rejection{IDA: e.idA, IDB: e.idB, Score: e.score, Reason: "canopy_bound_exceeded"})
			continue
		}

		newRoot, merged := uf.union(ia, ib)
		if !merged {
			continue
		}

		mergedReasons := make(map[string]bool)
		for r := range joinReasons[ra] {
			mergedReasons[r] = true
		}
		for r := range joinReasons[rb] {
			mergedReasons[r] = true
		}
		mergedReasons[e.reason] = true
		delete(joinReasons, ra)
		delete(joinReasons, rb)
		joinReasons[newRoot] = mergedReasons

		mergedEdges := append(usedEdges[ra], usedEdges[rb]...)
		mergedEdges = append(mergedEdges, e)
		delete(usedEdges, ra)
		delete(usedEdges, rb)
		usedEdges[newRoot] = mergedEdges
	}

	componentMembers := make(map[int][]string)
	for _, id := range ids {
		root := uf.find(index[id])
		componentMembers[root] = append(componentMembers[root], id)
	}

	var groups []*Group
	for root, members := range componentMembers {
		sort.Strings(members)

		var reasons []string
		for r := range joinReasons[root] {
			reasons = append(reasons, r)
		}
		sort.Strings(reasons)

		var joinEdges []*ScoredPair
		for _, e := range usedEdges[root] {
			joinEdges = append(joinEdges, &ScoredPair{
				CandidatePair: CandidatePair{IDA: e.idA, IDB: e.idB, Reason: e.reason},
				Score:         e.score,
			})
		}

		groups = append(groups, &Group{
			ID:          groupID(members),
			Members:     members,
			JoinReasons: reasons,
			JoinEdges:   joinEdges,
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })

	return groups, rejections, nil
}

// groupID derives a deterministic identifier from a group's sorted
// member ids via a non-cryptographic hash, so identical groupings
// across runs produce byte-identical ids without the cost of SHA-style
// hashing over what is, for audit purposes, not a security boundary.
func groupID(sortedMembers []string) string {
	h := xxhash.New()
	for _, m := range sortedMembers {
		h.WriteString(m)
		h.WriteString(",")
	}
	return fmt.Sprintf("grp_%016x", h.Sum64())
}

// WeakestEdgeToPrimary computes, for a group whose primary has already
// been chosen, the minimum score along the maximum-bottleneck path from
// each member to the primary, using the edges that actually joined the
// component. A member joined only indirectly (through intermediate
// members) is scored by the weakest link of its best path, not by any
// single direct edge to the primary.
func WeakestEdgeToPrimary(members []string, primary string, edges []*ScoredPair) int {

	adj := make(map[string][]struct {
		to    string
		score int
	})
	for _, e := range edges {
		adj[e.IDA] = append(adj[e.IDA], struct {
			to    string
			score int
		}{e.IDB, e.Score})
		adj[e.IDB] = append(adj[e.IDB], struct {
			to    string
			score int
		}{e.IDA, e.Score})
	}

	const unreached = -1
	best := make(map[string]int, len(members))
	for _, m := range members {
		best[m] = unreached
	}
	best[primary] = 100 // a node reaches itself with no penalty

	// Widest-path relaxation: small bounded components (<= max_group_size),
	// so |V|^2 relaxation passes are simple and deterministic.
	for i := 0; i < len(members); i++ {
		changed := false
		for _, u := range members {
			if best[u] == unreached {
				continue
			}
			for _, edge := range adj[u] {
				candidate := edge.score
				if best[u] < candidate {
					candidate = best[u]
				}
				if candidate > best[edge.to] {
					best[edge.to] = candidate
					changed = true
				}
			}
		}
		if !changed {
			break
		}
	}

	weakest := 100
	for _, m := range members {
		if m == primary {
			continue
		}
		if best[m] == unreached {
			continue
		}
		if best[m] < weakest {
			weakest = best[m]
		}
	}
	if len(members) <= 1 {
		return 100
	}
	return weakest
}
