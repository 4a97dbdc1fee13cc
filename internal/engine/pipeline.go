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
	"context"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/crmdedupe/acctdedupe/cnf"
)

// Run drives every phase of the matching pipeline in order — normalize,
// block, score, group, survive, cross-link aliases, dispose — over one
// batch of ingested records. It is a pure function of its inputs: two
// calls with the same records, options and providers produce byte
// identical Results.
//
// ctx is polled between phases (and every 4096 pairs within the
// scoring phase); a cancelled context discards whatever partial work is
// in flight and returns an *Error of kind Cancelled rather than a
// half-built Result.
func Run(ctx context.Context, records []Record, o *cnf.Options, blacklist BlacklistProvider, overrides OverrideProvider) (*Result, error) {

	if o == nil {
		o = cnf.Defaults()
	}
	if blacklist == nil {
		blacklist = NoBlacklist
	}
	if overrides == nil {
		overrides = NoOverrides
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	normalized := make([]*NormalizedRecord, 0, len(records))
	byID := make(map[string]*NormalizedRecord, len(records))
	var duplicateIDs int
	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		nr := Normalize(rec)
		if seen[nr.AccountID] {
			duplicateIDs++
		}
		seen[nr.AccountID] = true
		normalized = append(normalized, nr)
		byID[nr.AccountID] = nr
	}
	sort.Slice(normalized, func(i, j int) bool { return normalized[i].AccountID < normalized[j].AccountID })

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	pairs, blockStats, err := Block(normalized, o)
	if err != nil {
		return nil, err
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	scored, err := scoreAll(ctx, pairs, byID, o)
	if err != nil {
		return nil, err
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		if scored[i].IDA != scored[j].IDA {
			return scored[i].IDA < scored[j].IDA
		}
		return scored[i].IDB < scored[j].IDB
	})

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	stopTokens := toSet(o.Blocking.StopTokens)
	groups, _, err := Group(normalized, scored, o, stopTokens)
	if err != nil {
		return nil, err
	}

	var mergePreviews []*MergePreview
	for _, g := range groups {
		g.PrimaryID = SelectPrimary(g.Members, byID)
		g.WeakestEdgeToPrimary = WeakestEdgeToPrimary(g.Members, g.PrimaryID, g.JoinEdges)
		mergePreviews = append(mergePreviews, BuildMergePreviews(g, byID)...)
	}

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	cache := newScoreCache()
	aliasLinks := MatchAliases(normalized, groups, cache, o)

	if err := checkCancelled(ctx); err != nil {
		return nil, err
	}

	dispositions := Dispose(normalized, groups, aliasLinks, blacklist, overrides, o)

	return &Result{
		Normalized:    normalized,
		ScoredPairs:   scored,
		Groups:        groups,
		MergePreviews: mergePreviews,
		AliasLinks:    aliasLinks,
		Dispositions:  dispositions,
		BlockStats:    BuildBlockStats(blockStats),
		DuplicateIDs:  duplicateIDs,
	}, nil
}

// scoreAll scores every candidate pair, splitting the work across
// errgroup workers the way the teacher's import pipeline fans work out
// across goroutines, one shard per available core.
func scoreAll(ctx context.Context, pairs []CandidatePair, byID map[string]*NormalizedRecord, o *cnf.Options) ([]*ScoredPair, error) {

	if len(pairs) == 0 {
		return nil, nil
	}

	workers := runtime.GOMAXPROCS(0)
	if workers < 1 {
		workers = 1
	}
	if workers > len(pairs) {
		workers = len(pairs)
	}

	results := make([]*ScoredPair, len(pairs))

	g, gctx := errgroup.WithContext(ctx)
	chunk := (len(pairs) + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if start >= len(pairs) {
			break
		}
		if end > len(pairs) {
			end = len(pairs)
		}

		g.Go(func() error {
			for i := start; i < end; i++ {
				if i%4096 == 0 {
					if err := checkCancelled(gctx); err != nil {
						return err
					}
				}
				pair := pairs[i]
				a, aok := byID[pair.IDA]
				b, bok := byID[pair.IDB]
				if !aok || !bok {
					continue
				}
				results[i] = Score(pair, a, b, o)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := results[:0]
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}

func checkCancelled(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return newError(Cancelled, "run cancelled", nil)
	default:
		return nil
	}
}
