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
	"regexp"
	"strings"
	"unicode"

	"github.com/rainycape/unidecode"
	"golang.org/x/text/unicode/norm"
)

// suffixTable maps every recognized trailing legal-entity token to its
// normalized suffix class.
var suffixTable = map[string]SuffixClass{
	"inc":           SuffixINC,
	"incorporated":  SuffixINC,
	"llc":           SuffixLLC,
	"ltd":           SuffixLTD,
	"limited":       SuffixLTD,
	"corp":          SuffixCORP,
	"corporation":   SuffixCORP,
	"co":            SuffixCO,
	"company":       SuffixCO,
	"plc":           SuffixCORP,
	"lp":            SuffixLLC,
	"llp":           SuffixLLC,
	"gmbh":          SuffixCORP,
	"sa":            SuffixCORP,
}

// pluralSingular is the fixed plural -> singular map applied to every
// enhanced token.
var pluralSingular = map[string]string{
	"stores":   "store",
	"services": "service",
	"brands":   "brand",
	"foods":    "food",
	"holdings": "holding",
	"systems":  "system",
	"partners": "partner",
	"shops":    "shop",
	"groups":   "group",
	"labs":     "lab",
	"industries": "industry",
}

// weakTokens are dropped from the enhanced token set used for Jaccard.
var weakTokens = map[string]bool{
	"only": true, "the": true, "and": true, "of": true,
	"for": true, "a": true, "an": true, "to": true,
}

// parentheticalBlacklist holds phrases that never qualify as aliases
// even when the parenthesis gate would otherwise fire.
var parentheticalBlacklist = map[string]bool{
	"paystub": true, "pay stubs": true, "not sure": true,
	"unsure": true, "unknown": true, "staffing agency": true,
}

var (
	digitRunDashRe  = regexp.MustCompile(`(\d+)\s*-\s*(\d+)`)
	digitRunSlashRe = regexp.MustCompile(`(\d+)\s*/\s*(\d+)`)
	digitRunSpaceRe = regexp.MustCompile(`(\d+)\s+(\d+)`)
	numberedAliasRe = regexp.MustCompile(`\(\s*\d+\s*\)`)
	parenContentRe  = regexp.MustCompile(`\(([^()]*)\)`)
	capitalWordRe   = regexp.MustCompile(`\b[A-Z][a-zA-Z]*\b`)
	digitOnlyRe     = regexp.MustCompile(`^\s*\d+\s*$`)
	whitespaceRe    = regexp.MustCompile(`\s+`)
)

// Normalize produces a NormalizedRecord from a Record, implementing the
// symbol mapping, numeric style unification, suffix extraction,
// enhanced-token derivation and alias extraction rules.
func Normalize(rec Record) *NormalizedRecord {

	raw := rec.AccountName

	nr := &NormalizedRecord{
		Record:         rec,
		EnhancedTokens: make(map[string]struct{}),
	}

	nr.HasSemicolon = strings.Contains(raw, ";")
	nr.HasParentheses = strings.ContainsAny(raw, "()")
	nr.RawNumericStyle = detectNumericStyle(raw)

	nameBase := symbolMap(raw)
	nr.NameBase = nameBase

	nameCore, suffix := extractSuffix(nameBase)
	nr.NameCore = nameCore
	nr.SuffixClass = suffix

	for _, tok := range tokenize(nameCore) {
		tok = singularize(tok)
		if weakTokens[tok] {
			continue
		}
		nr.EnhancedTokens[tok] = struct{}{}
	}

	nr.AliasCandidates = extractAliases(raw)
	nr.HasMultipleNames = len(nr.AliasCandidates) > 0

	return nr
}

// symbolMap applies the fixed set of symbol substitutions, transliterates
// any remaining non-ASCII characters via unidecode (after stripping
// combining diacritics with an NFD decomposition), preserves parentheses
// for display but strips them for matching, and collapses whitespace.
func symbolMap(s string) string {

	s = strings.ToLower(s)

	replacer := strings.NewReplacer(
		"&", " and ",
		"/", " ",
		"-", " ",
		"@", " at ",
		"+", " plus ",
	)
	s = replacer.Replace(s)

	s = strings.ReplaceAll(s, "_", " ")

	// Strip diacritics via NFD decomposition before transliterating
	// whatever non-ASCII runes remain.
	decomposed := norm.NFD.String(s)
	var stripped strings.Builder
	stripped.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		stripped.WriteRune(r)
	}
	s = unidecode.Unidecode(stripped.String())

	// Parentheses are removed for matching purposes (their content is
	// handled separately by the alias extractor).
	s = parenContentRe.ReplaceAllString(s, " ")
	s = strings.NewReplacer("(", " ", ")", " ").Replace(s)

	s = unifyNumericStyle(s)

	s = whitespaceRe.ReplaceAllString(s, " ")

	return strings.TrimSpace(s)
}

// unifyNumericStyle rewrites N-N, N/N and N N digit-run patterns to a
// single "N N" style.
func unifyNumericStyle(s string) string {
	s = digitRunDashRe.ReplaceAllString(s, "$1 $2")
	s = digitRunSlashRe.ReplaceAllString(s, "$1 $2")
	s = digitRunSpaceRe.ReplaceAllString(s, "$1 $2")
	return s
}

// detectNumericStyle reports the raw digit-separator style found in s,
// used later by the Scorer's num_style_match comparison.
func detectNumericStyle(s string) string {
	if digitRunDashRe.MatchString(s) {
		return "-"
	}
	if digitRunSlashRe.MatchString(s) {
		return "/"
	}
	if digitRunSpaceRe.MatchString(s) {
		return " "
	}
	return ""
}

// extractSuffix removes a trailing legal-suffix token from nameBase.
func extractSuffix(nameBase string) (string, SuffixClass) {
	toks := tokenize(nameBase)
	if len(toks) == 0 {
		return nameBase, SuffixNONE
	}
	last := strings.Trim(toks[len(toks)-1], ".,")
	if cls, ok := suffixTable[last]; ok {
		core := strings.Join(toks[:len(toks)-1], " ")
		return strings.TrimSpace(core), cls
	}
	return nameBase, SuffixNONE
}

func tokenize(s string) []string {
	return strings.Fields(s)
}

func singularize(tok string) string {
	if s, ok := pluralSingular[tok]; ok {
		return s
	}
	return tok
}

// extractAliases implements the three alias-extraction rules: semicolon
// splitting, numbered/repeated-"and" markers, and the parenthesis gate.
func extractAliases(raw string) []AliasCandidate {
	var out []AliasCandidate

	if strings.Contains(raw, ";") {
		for _, part := range strings.Split(raw, ";") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, AliasCandidate{Text: part, Source: AliasSemicolon})
			}
		}
	}

	if hasNumberedMarkers(raw) || hasRepeatedAndSeparator(raw) {
		for _, part := range splitNumberedOrAnd(raw) {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, AliasCandidate{Text: part, Source: AliasNumbered})
			}
		}
	}

	for _, m := range parenContentRe.FindAllStringSubmatch(raw, -1) {
		content := strings.TrimSpace(m[1])
		if content == "" {
			continue
		}
		if parenthesisGate(content) {
			out = append(out, AliasCandidate{Text: content, Source: AliasParenthesis})
		}
	}

	return out
}

// hasRepeatedAndSeparator reports whether "and" appears 2+ times as a
// standalone separator word, suggesting a list of distinct names.
func hasRepeatedAndSeparator(raw string) bool {
	count := 0
	for _, tok := range strings.Fields(strings.ToLower(raw)) {
		if strings.Trim(tok, ".,") == "and" {
			count++
		}
	}
	return count >= 2
}

// hasNumberedMarkers reports whether 2+ numbered markers such as "(1)"
// and "(2)" appear, suggesting a list of distinct names.
func hasNumberedMarkers(raw string) bool {
	return len(numberedAliasRe.FindAllString(raw, -1)) >= 2
}

func splitNumberedOrAnd(raw string) []string {
	if hasNumberedMarkers(raw) {
		return numberedAliasRe.Split(raw, -1)
	}
	// Split on every "and" occurrence (case-insensitive, whole word).
	re := regexp.MustCompile(`(?i)\band\b`)
	return re.Split(raw, -1)
}

// parenthesisGate implements the alias-eligibility test for parenthetical
// content: a legal-suffix token, or 2+ capitalized words, and not a
// blacklisted phrase or purely numeric content.
func parenthesisGate(content string) bool {

	lower := strings.ToLower(strings.TrimSpace(content))

	if parentheticalBlacklist[lower] {
		return false
	}
	if digitOnlyRe.MatchString(content) {
		return false
	}

	for _, tok := range tokenize(strings.ToLower(content)) {
		tok = strings.Trim(tok, ".,")
		if _, ok := suffixTable[tok]; ok {
			return true
		}
	}

	if len(capitalWordRe.FindAllString(content, -1)) >= 2 {
		return true
	}

	return false
}
