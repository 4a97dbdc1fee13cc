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

// builtinBlacklistWords are single-token names that force a Delete
// disposition, matched on word boundary, case-insensitive.
var builtinBlacklistWords = map[string]bool{
	"1099":   true,
	"test":   true,
	"sample": true,
}

// builtinBlacklistPhrases are multi-word names that force a Delete
// disposition, matched by case-insensitive substring.
var builtinBlacklistPhrases = []string{
	"pnc is not sure",
}

// matchesBuiltinBlacklist reports whether a normalized name matches the
// built-in blacklist, independent of any manual-blacklist provider.
func matchesBuiltinBlacklist(nameCore string) bool {
	lower := strings.ToLower(nameCore)
	for _, tok := range strings.Fields(lower) {
		if builtinBlacklistWords[strings.Trim(tok, ".,")] {
			return true
		}
	}
	for _, phrase := range builtinBlacklistPhrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}

// Dispose classifies every record into a terminal Keep/Update/Delete/Verify
// disposition, in this precedence order: a manual blacklist entry always
// wins as Delete; ambiguity signals (suffix disagreement inside a group,
// an outbound alias cross-link, a multi-name record, or a canopy-weakened
// join) force Verify, with the reason of the first signal in that order; otherwise the group's primary keeps and every other
// member updates; a manual override, if present, wins unconditionally
// over everything computed above.
func Dispose(records []*NormalizedRecord, groups []*Group, aliasLinks []*AliasCrossLink, blacklist BlacklistProvider, overrides OverrideProvider, o *cnf.Options) []*DispositionResult {

	groupOf := make(map[string]*Group, len(records))
	for _, g := range groups {
		for _, m := range g.Members {
			groupOf[m] = g
		}
	}

	linksBySource := make(map[string][]*AliasCrossLink)
	for _, link := range aliasLinks {
		linksBySource[link.SourceID] = append(linksBySource[link.SourceID], link)
	}
	aliasReason := make(map[string]string, len(linksBySource))
	for sourceID, links := range linksBySource {
		aliasReason[sourceID] = aliasVerifyReason(links)
	}

	byID := make(map[string]*NormalizedRecord, len(records))
	for _, r := range records {
		byID[r.AccountID] = r
	}

	var results []*DispositionResult

	for _, r := range records {
		result := &DispositionResult{AccountID: r.AccountID}

		switch {
		case matchesBuiltinBlacklist(r.NameBase):
			result.Value = Delete
			result.Reason = "blacklisted_builtin_term"
		case blacklist != nil && blacklist.IsBlacklisted(r.AccountID):
			result.Value = Delete
			result.Reason = "blacklisted_manual"
		default:
			g := groupOf[r.AccountID]
			_, hasAlias := aliasReason[r.AccountID]

			switch {
			case g == nil || len(g.Members) <= 1:
				result.Value, result.Reason = dispositionForSingleton(r, aliasReason)
			case groupHasSuffixDisagreement(g, byID):
				result.Value = Verify
				result.Reason = "suffix_disagreement"
			case hasAlias:
				result.Value = Verify
				result.Reason = aliasReason[r.AccountID]
			case r.HasMultipleNames:
				result.Value = Verify
				result.Reason = "multi_name_record"
			case g.WeakestEdgeToPrimary < o.Similarity.Medium:
				result.Value = Verify
				result.Reason = "canopy_weak_edge"
			case r.AccountID == g.PrimaryID:
				result.Value = Keep
				result.Reason = "primary"
			default:
				result.Value = Update
				result.Reason = "non_primary_member"
			}
		}

		if overrides != nil {
			if forced, ok := overrides.Override(r.AccountID); ok {
				result.Value = forced
				result.Reason = "manual_override"
			}
		}

		results = append(results, result)
	}

	sort.Slice(results, func(i, j int) bool { return results[i].AccountID < results[j].AccountID })

	return results
}

func dispositionForSingleton(r *NormalizedRecord, aliasReason map[string]string) (Disposition, string) {
	if reason, ok := aliasReason[r.AccountID]; ok {
		return Verify, reason
	}
	if r.HasMultipleNames {
		return Verify, "multi_name_record"
	}
	return Keep, "clean_singleton"
}

// aliasVerifyReason builds the human-readable, stable Verify reason for a
// record's outbound alias cross-links: the number of distinct groups they
// reach and the sorted set of extraction sources that produced them.
func aliasVerifyReason(links []*AliasCrossLink) string {
	groupSet := make(map[string]bool, len(links))
	sourceSet := make(map[string]bool, len(links))
	for _, link := range links {
		groupSet[link.TargetGroupID] = true
		sourceSet[string(link.AliasSource)] = true
	}

	sources := make([]string, 0, len(sourceSet))
	for s := range sourceSet {
		sources = append(sources, s)
	}
	sort.Strings(sources)

	return fmt.Sprintf("alias_matches_%d_groups_via_[%s]", len(groupSet), strings.Join(sources, ","))
}

func groupHasSuffixDisagreement(g *Group, byID map[string]*NormalizedRecord) bool {
	seen := SuffixNONE
	set := false
	for _, m := range g.Members {
		rec, ok := byID[m]
		if !ok || rec.SuffixClass == SuffixNONE {
			continue
		}
		if !set {
			seen = rec.SuffixClass
			set = true
			continue
		}
		if rec.SuffixClass != seen {
			return true
		}
	}
	return false
}
