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
	"strings"

	"github.com/crmdedupe/acctdedupe/cnf"
)

// blockerConfig is the subset of cnf.Options the Blocker reads, lifted
// out so the Blocker can be unit tested without a full cnf.Options.
type blockerConfig struct {
	AllowlistTokens        map[string]bool
	AllowlistBigrams       map[string]bool
	DenylistTokens         map[string]bool
	StopTokens             map[string]bool
	MaxShardSize           int
	BlockCap               int
	MaxCandidatesPerRecord int
	LengthWindow           int
	CharBigramGate         float64
	MinTokenOverlap        int
}

func newBlockerConfig(o *cnf.Options) blockerConfig {
	return blockerConfig{
		AllowlistTokens:        toSet(o.Blocking.AllowlistTokens),
		AllowlistBigrams:       toSet(o.Blocking.AllowlistBigrams),
		DenylistTokens:         toSet(o.Blocking.DenylistTokens),
		StopTokens:             toSet(o.Blocking.StopTokens),
		MaxShardSize:           o.Blocking.SoftBan.MaxShardSize,
		BlockCap:               o.Blocking.SoftBan.BlockCap,
		MaxCandidatesPerRecord: o.Blocking.SoftBan.MaxCandidatesPerRecord,
		LengthWindow:           o.Blocking.SoftBan.LengthWindow,
		CharBigramGate:         o.Blocking.SoftBan.CharBigramGate,
		MinTokenOverlap:        o.Blocking.SoftBan.MinTokenOverlap,
	}
}

func toSet(vals []string) map[string]bool {
	out := make(map[string]bool, len(vals))
	for _, v := range vals {
		out[strings.ToLower(v)] = true
	}
	return out
}

// pairSet coalesces candidate pairs, keyed by their canonical (a,b) order.
type pairSet struct {
	seen  map[[2]string]string
	order [][2]string
}

func newPairSet() *pairSet {
	return &pairSet{seen: make(map[[2]string]string)}
}

func (p *pairSet) add(a, b, reason string) {
	if a == b {
		return
	}
	if a > b {
		a, b = b, a
	}
	key := [2]string{a, b}
	if _, ok := p.seen[key]; ok {
		return
	}
	p.seen[key] = reason
	p.order = append(p.order, key)
}

func (p *pairSet) pairs() []CandidatePair {
	out := make([]CandidatePair, 0, len(p.order))
	for _, k := range p.order {
		out = append(out, CandidatePair{IDA: k[0], IDB: k[1], Reason: p.seen[k]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IDA != out[j].IDA {
			return out[i].IDA < out[j].IDA
		}
		return out[i].IDB < out[j].IDB
	})
	return out
}

// Block runs the exact-equals pass followed by soft-ban candidate
// generation, returning deduplicated, deterministically ordered pairs
// plus one diagnostic BlockStat per first-token block.
func Block(records []*NormalizedRecord, o *cnf.Options) ([]CandidatePair, []*BlockStat, error) {

	cfg := newBlockerConfig(o)

	// Sort by account_id ascending up front: every truncation decision
	// downstream operates on this stable order.
	sorted := append([]*NormalizedRecord{}, records...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AccountID < sorted[j].AccountID })

	pairs := newPairSet()

	// Exact-equals pass, independent of any blocking policy.
	byCore := make(map[string][]*NormalizedRecord)
	for _, r := range sorted {
		if r.NameCore == "" {
			continue
		}
		byCore[r.NameCore] = append(byCore[r.NameCore], r)
	}
	for _, group := range byCore {
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				pairs.add(group[i].AccountID, group[j].AccountID, "exact_name_core")
			}
		}
	}

	// Bigram-allowlist prepass: pair every record sharing a matched
	// bigram prefix, regardless of block size.
	if len(cfg.AllowlistBigrams) > 0 {
		byBigram := make(map[string][]*NormalizedRecord)
		for _, r := range sorted {
			toks := tokenize(r.NameCore)
			if len(toks) < 2 {
				continue
			}
			bg := toks[0] + " " + toks[1]
			if cfg.AllowlistBigrams[bg] {
				byBigram[bg] = append(byBigram[bg], r)
			}
		}
		for _, group := range byBigram {
			for i := 0; i < len(group); i++ {
				for j := i + 1; j < len(group); j++ {
					pairs.add(group[i].AccountID, group[j].AccountID, "allowlist_bigram")
				}
			}
		}
	}

	blocks := make(map[string][]*NormalizedRecord)
	for _, r := range sorted {
		key := firstTokenKey(r.NameCore, cfg.StopTokens)
		blocks[key] = append(blocks[key], r)
	}

	keys := make([]string, 0, len(blocks))
	for k := range blocks {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var stats []*BlockStat

	for _, key := range keys {
		group := blocks[key]
		before := len(pairs.order)
		strategy, capped := blockPolicy(key, group, cfg, pairs)
		stats = append(stats, &BlockStat{
			FirstToken:     key,
			Strategy:       strategy,
			RecordCount:    len(group),
			PairsGenerated: len(pairs.order) - before,
			PairsCapped:    capped,
		})
	}

	result := pairs.pairs()
	if o.MaxPairs > 0 && len(result) > o.MaxPairs {
		return nil, stats, newError(PairCapExceeded,
			fmt.Sprintf("blocker produced %d candidate pairs, exceeding max_pairs=%d; tune allowlist/denylist tokens", len(result), o.MaxPairs),
			nil)
	}

	return result, stats, nil
}

// firstTokenKey picks the block key for a record: the first token of
// name_core unless it's a stop token, in which case the second token is
// used — unless every token is a stop token, in which case the first
// token is used anyway.
func firstTokenKey(nameCore string, stopTokens map[string]bool) string {
	toks := tokenize(nameCore)
	if len(toks) == 0 {
		return ""
	}
	if !stopTokens[toks[0]] {
		return toks[0]
	}
	allStop := true
	for _, tok := range toks {
		if !stopTokens[tok] {
			allStop = false
			break
		}
	}
	if allStop {
		return toks[0]
	}
	return toks[1]
}

// blockPolicy applies the allowlist / denylist / other policy for one
// first-token block, adding pairs to pairs, and returns the strategy
// name plus the number of pairs skipped due to a cap.
func blockPolicy(key string, group []*NormalizedRecord, cfg blockerConfig, pairs *pairSet) (string, int) {

	n := len(group)
	if n <= 1 {
		return "singleton", 0
	}

	if cfg.AllowlistTokens[key] {
		pairAll(group, pairs, "allowlist_token")
		return "allowlist_full", 0
	}

	if cfg.DenylistTokens[key] {
		capped := shardAndFilter(group, cfg, pairs, true)
		return "denylist_sharded", capped
	}

	if n <= cfg.BlockCap {
		pairAll(group, pairs, "block")
		return "other_full", 0
	}

	capped := shardAndFilter(group, cfg, pairs, false)
	return "other_sharded", capped
}

func pairAll(group []*NormalizedRecord, pairs *pairSet, reason string) {
	for i := 0; i < len(group); i++ {
		for j := i + 1; j < len(group); j++ {
			pairs.add(group[i].AccountID, group[j].AccountID, reason)
		}
	}
}

// shardAndFilter shards a block by second-token (falling back to a
// 3-char trigram, then third-token initial), applying prefilter gates
// within each shard when gate is true, and respecting per-record and
// per-block caps.
func shardAndFilter(group []*NormalizedRecord, cfg blockerConfig, pairs *pairSet, gate bool) int {

	shards := make(map[string][]*NormalizedRecord)
	for _, r := range group {
		shards[shardKey(r)] = append(shards[shardKey(r)], r)
	}

	shardKeys := make([]string, 0, len(shards))
	for k := range shards {
		shardKeys = append(shardKeys, k)
	}
	sort.Strings(shardKeys)

	totalEmitted := 0
	capped := 0
	perRecord := make(map[string]int)

	for _, sk := range shardKeys {
		shard := shards[sk]
		if len(shard) > cfg.MaxShardSize {
			capped += len(shard) - cfg.MaxShardSize
			shard = shard[:cfg.MaxShardSize]
		}
		for i := 0; i < len(shard); i++ {
			for j := i + 1; j < len(shard); j++ {
				a, b := shard[i], shard[j]

				if totalEmitted >= cfg.BlockCap {
					capped++
					continue
				}
				if perRecord[a.AccountID] >= cfg.MaxCandidatesPerRecord ||
					perRecord[b.AccountID] >= cfg.MaxCandidatesPerRecord {
					capped++
					continue
				}

				if gate && !passesPrefilter(a, b, cfg) {
					continue
				}

				pairs.add(a.AccountID, b.AccountID, "shard")
				perRecord[a.AccountID]++
				perRecord[b.AccountID]++
				totalEmitted++
			}
		}
	}

	return capped
}

// shardKey computes the sharding key for a record: the second token of
// name_core when there is one; otherwise the first-3-char trigram of
// name_core; otherwise name_core itself. The third-token-initial branch
// is never taken, since any name_core with three tokens already has a
// second token.
func shardKey(r *NormalizedRecord) string {
	toks := tokenize(r.NameCore)
	if len(toks) >= 2 {
		return toks[1]
	}
	if len(r.NameCore) >= 3 {
		return r.NameCore[:3]
	}
	if len(toks) >= 3 {
		return string(toks[2][0])
	}
	return r.NameCore
}

// passesPrefilter applies the length window, token-overlap and
// character-bigram Jaccard gates before a shard pair is emitted.
func passesPrefilter(a, b *NormalizedRecord, cfg blockerConfig) bool {

	la, lb := len(a.NameCore), len(b.NameCore)
	diff := la - lb
	if diff < 0 {
		diff = -diff
	}
	if diff > cfg.LengthWindow {
		return false
	}

	if !tokenOverlapAtLeast(a.EnhancedTokens, b.EnhancedTokens, cfg.StopTokens, cfg.MinTokenOverlap) {
		return false
	}

	if charBigramJaccard(a.NameCore, b.NameCore) < cfg.CharBigramGate {
		return false
	}

	return true
}

func tokenOverlapAtLeast(a, b map[string]struct{}, stop map[string]bool, min int) bool {
	count := 0
	for t := range a {
		if stop[t] {
			continue
		}
		if _, ok := b[t]; ok {
			count++
			if count >= min {
				return true
			}
		}
	}
	return min <= 0
}

// charBigramJaccard computes the Jaccard index of the character-bigram
// sets of a and b.
func charBigramJaccard(a, b string) float64 {
	ba := charBigrams(a)
	bb := charBigrams(b)
	if len(ba) == 0 && len(bb) == 0 {
		return 1
	}
	inter := 0
	for k := range ba {
		if bb[k] {
			inter++
		}
	}
	union := len(ba)
	for k := range bb {
		if !ba[k] {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

func charBigrams(s string) map[string]bool {
	r := []rune(s)
	out := make(map[string]bool)
	for i := 0; i+1 < len(r); i++ {
		out[string(r[i:i+2])] = true
	}
	return out
}
