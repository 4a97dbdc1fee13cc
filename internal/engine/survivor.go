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
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// SelectPrimary picks the surviving record of a group by the tie-break
// tuple (relationship rank ascending, created_date ascending with a nil
// date sorting last, account_id ascending). It mutates nothing; callers
// assign the result to Group.PrimaryID.
func SelectPrimary(members []string, byID map[string]*NormalizedRecord) string {
	if len(members) == 0 {
		return ""
	}

	best := members[0]
	for _, id := range members[1:] {
		if primaryLess(byID[id], byID[best]) {
			best = id
		}
	}
	return best
}

// primaryLess reports whether a outranks b as a survivorship primary.
func primaryLess(a, b *NormalizedRecord) bool {
	ra, rb := RankOf(a.Relationship), RankOf(b.Relationship)
	if ra != rb {
		return ra < rb
	}

	switch {
	case a.CreatedDate == nil && b.CreatedDate == nil:
		// fall through to account_id
	case a.CreatedDate == nil:
		return false
	case b.CreatedDate == nil:
		return true
	case !a.CreatedDate.Equal(*b.CreatedDate):
		return a.CreatedDate.Before(*b.CreatedDate)
	}

	return a.AccountID < b.AccountID
}

// BuildMergePreviews produces one MergePreview per non-primary member of
// a group, recommending which of the primary's or the non-primary's
// field values should survive a manual merge.
func BuildMergePreviews(g *Group, byID map[string]*NormalizedRecord) []*MergePreview {
	primary, ok := byID[g.PrimaryID]
	if !ok {
		return nil
	}

	dmp := diffmatchpatch.New()

	var previews []*MergePreview
	others := make([]string, 0, len(g.Members))
	for _, m := range g.Members {
		if m != g.PrimaryID {
			others = append(others, m)
		}
	}
	sort.Strings(others)

	for _, id := range others {
		other, ok := byID[id]
		if !ok {
			continue
		}

		preview := &MergePreview{
			GroupID:      g.ID,
			PrimaryID:    g.PrimaryID,
			NonPrimaryID: id,
		}

		preview.Recommendations = append(preview.Recommendations,
			recommendField("account_name", primary.AccountName, other.AccountName, dmp),
			recommendField("relationship", primary.Relationship, other.Relationship, dmp),
			recommendField("created_date", dateString(primary.CreatedDate), dateString(other.CreatedDate), dmp),
			recommendField("account_id_src", primary.AccountIDSrc, other.AccountIDSrc, dmp),
		)

		previews = append(previews, preview)
	}

	return previews
}

func recommendField(field, primaryVal, otherVal string, dmp *diffmatchpatch.DiffMatchPatch) FieldRecommendation {
	fr := FieldRecommendation{
		Field:        field,
		PrimaryValue: primaryVal,
		OtherValue:   otherVal,
	}

	if primaryVal == otherVal {
		fr.Recommendation = "retain primary value"
		return fr
	}

	fr.Recommendation = "surface non-primary value for review"
	diffs := dmp.DiffMain(primaryVal, otherVal, false)
	fr.Diff = dmp.DiffPrettyText(diffs)
	return fr
}

func dateString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
