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
	"strings"

	"github.com/crmdedupe/acctdedupe/cnf"
	"github.com/crmdedupe/acctdedupe/util/text"
)

// scorerConfig is the subset of cnf.Options the Scorer reads.
type scorerConfig struct {
	SuffixMismatchPenalty    int
	NumStyleMismatchPenalty  int
	PunctuationMismatchPenalty int
	GateCutoff               int
}

func newScorerConfig(o *cnf.Options) scorerConfig {
	return scorerConfig{
		SuffixMismatchPenalty:      o.Similarity.Penalty.SuffixMismatch,
		NumStyleMismatchPenalty:    o.Similarity.Penalty.NumStyleMismatch,
		PunctuationMismatchPenalty: o.Similarity.Penalty.PunctuationMismatch,
		GateCutoff:                 o.Similarity.GateCutoff,
	}
}

// Score computes the composite ScoredPair for a CandidatePair, given
// the two normalized records it references.
func Score(pair CandidatePair, a, b *NormalizedRecord, o *cnf.Options) *ScoredPair {
	return scoreWith(pair, a, b, newScorerConfig(o))
}

func scoreWith(pair CandidatePair, a, b *NormalizedRecord, cfg scorerConfig) *ScoredPair {

	sp := &ScoredPair{CandidatePair: pair}

	sp.RatioName = text.TokenSortRatio(a.NameCore, b.NameCore)
	sp.RatioSet = text.TokenSetRatio(a.NameCore, b.NameCore)
	sp.Jaccard = jaccard(a.EnhancedTokens, b.EnhancedTokens)
	sp.SuffixMatch = a.SuffixClass == b.SuffixClass
	sp.NumStyleMatch = a.RawNumericStyle == b.RawNumericStyle
	sp.PunctuationMatch = punctuationSignature(a.AccountName) == punctuationSignature(b.AccountName)

	base := 0.45*sp.RatioName + 0.35*sp.RatioSet + 20*sp.Jaccard

	// Pre-penalty gate: an unambiguously low base score can be dropped
	// before computing and applying penalties.
	if cfg.GateCutoff > 0 && base < float64(cfg.GateCutoff) {
		sp.Score = clampScore(int(round(base)))
		return sp
	}

	penalty := 0
	if suffixPenaltyApplies(a.SuffixClass, b.SuffixClass) {
		penalty += cfg.SuffixMismatchPenalty
	}
	if !sp.NumStyleMatch {
		penalty += cfg.NumStyleMismatchPenalty
	}
	if !sp.PunctuationMatch {
		penalty += cfg.PunctuationMismatchPenalty
	}

	sp.Score = clampScore(int(round(base)) - penalty)

	return sp
}

// suffixPenaltyApplies mirrors the spec's suffix-mismatch rule: penalize
// whenever the two classes differ, whether both are named suffixes or
// one side is NONE.
func suffixPenaltyApplies(a, b SuffixClass) bool {
	return a != b
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// punctuationSignature captures whether a raw name carries commas,
// periods or parentheses, for the punctuation_match comparison.
func punctuationSignature(raw string) string {
	var b strings.Builder
	if strings.Contains(raw, ",") {
		b.WriteByte(',')
	}
	if strings.Contains(raw, ".") {
		b.WriteByte('.')
	}
	if strings.ContainsAny(raw, "()") {
		b.WriteByte('(')
	}
	return b.String()
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round(f float64) float64 {
	if f >= 0 {
		return float64(int(f + 0.5))
	}
	return float64(int(f - 0.5))
}

// SharesToken reports whether a and b share at least one enhanced token
// that is not in stopTokens, used by the Grouper's edge-gating rule.
func SharesToken(a, b *NormalizedRecord, stopTokens map[string]bool) bool {
	for t := range a.EnhancedTokens {
		if stopTokens[t] {
			continue
		}
		if _, ok := b.EnhancedTokens[t]; ok {
			return true
		}
	}
	return false
}
