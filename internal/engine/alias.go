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
	"sort"

	"github.com/crmdedupe/acctdedupe/cnf"
)

// MatchAliases compares every alias candidate extracted during
// normalization against name_core of every record in every other group,
// emitting one cross-link per group whose best-matching member clears the
// suffix-match and similarity-high bar. Cross-links are audit-only: they
// never alter group membership.
//
// The scoreCache memoizes alias-vs-member scores keyed by source id,
// target id and alias name_core, so a repeated comparison within this
// pass is not rescored. The main scoring pass does not read or fill it.
func MatchAliases(records []*NormalizedRecord, groups []*Group, cache *scoreCache, o *cnf.Options) []*AliasCrossLink {

	groupOf := make(map[string]*Group, len(records))
	for _, g := range groups {
		for _, m := range g.Members {
			groupOf[m] = g
		}
	}

	byID := make(map[string]*NormalizedRecord, len(records))
	for _, r := range records {
		byID[r.AccountID] = r
	}

	maxPairs := o.Alias.MaxAliasPairs
	if maxPairs <= 0 {
		maxPairs = 1 << 30
	}

	cfg := newScorerConfig(o)

	var links []*AliasCrossLink
	emitted := 0

	for _, r := range records {
		ownGroup := groupOf[r.AccountID]

		for _, cand := range r.AliasCandidates {
			if emitted >= maxPairs {
				return links
			}

			aliasNorm := normalizeAliasText(cand.Text)
			if aliasNorm.NameCore == "" {
				continue
			}

			for _, g := range groups {
				if ownGroup != nil && g.ID == ownGroup.ID {
					continue
				}

				var best *ScoredPair
				for _, memberID := range g.Members {
					member, ok := byID[memberID]
					if !ok {
						continue
					}

					sp := scoreAliasPair(r.AccountID, aliasNorm, memberID, member, cache, cfg)
					if !sp.SuffixMatch || sp.Score < o.Similarity.High {
						continue
					}
					if best == nil || sp.Score > best.Score {
						best = sp
					}
				}

				if best == nil {
					continue
				}

				links = append(links, &AliasCrossLink{
					SourceID:      r.AccountID,
					TargetGroupID: g.ID,
					AliasText:     cand.Text,
					AliasSource:   cand.Source,
					Score:         best.Score,
				})
				emitted++

				if emitted >= maxPairs {
					return links
				}
			}
		}
	}

	sort.Slice(links, func(i, j int) bool {
		if links[i].SourceID != links[j].SourceID {
			return links[i].SourceID < links[j].SourceID
		}
		return links[i].TargetGroupID < links[j].TargetGroupID
	})

	return links
}

// normalizeAliasText runs the same name-core pipeline used for full
// records over a bare alias fragment, building just enough of a
// NormalizedRecord to be comparable via scoreWith.
func normalizeAliasText(raw string) *NormalizedRecord {
	return Normalize(Record{AccountName: raw})
}

// scoreAliasPair scores one alias text against one member of another
// group. The cache key folds in both the target member id and the
// alias's own name_core, so two different alias candidates compared
// against the same target member never collide on the same cache entry.
func scoreAliasPair(sourceID string, alias *NormalizedRecord, targetID string, target *NormalizedRecord, cache *scoreCache, cfg scorerConfig) *ScoredPair {
	cacheKey := "alias:" + targetID + ":" + alias.NameCore
	if cached, ok := cache.get(sourceID, cacheKey); ok {
		return cached
	}

	pair := CandidatePair{IDA: sourceID, IDB: targetID, Reason: "alias"}
	sp := scoreWith(pair, alias, target, cfg)
	cache.set(&ScoredPair{CandidatePair: CandidatePair{IDA: sourceID, IDB: cacheKey}, Score: sp.Score, SuffixMatch: sp.SuffixMatch})
	return sp
}
