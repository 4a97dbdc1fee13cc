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

// Package artifact writes the diagnostic and review-ready output files
// a completed run produces. Every writer here is a thin CSV encoder; no
// example in the retrieval pack ships a CSV or tabular-export library,
// so this package is the one place in the module that reaches for the
// standard library's encoding/csv instead of a third-party dependency.
package artifact

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/crmdedupe/acctdedupe/internal/engine"
)

// WriteAll emits every artifact kind the review output calls for into
// dir, creating it if necessary.
func WriteAll(dir string, result *engine.Result) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	if err := writeNormalized(filepath.Join(dir, "normalized_records.csv"), result.Normalized); err != nil {
		return err
	}
	if err := writeScoredPairs(filepath.Join(dir, "scored_pairs.csv"), result.ScoredPairs); err != nil {
		return err
	}
	if err := writeReview(filepath.Join(dir, "review.csv"), result); err != nil {
		return err
	}
	if err := writeBlockStats(filepath.Join(dir, "block_stats.csv"), result.BlockStats); err != nil {
		return err
	}
	if err := writeRunMetadata(filepath.Join(dir, "run_metadata.csv"), result.Metadata); err != nil {
		return err
	}
	return nil
}

func create(path string) (*os.File, *csv.Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "failed to create artifact file %s", path)
	}
	return f, csv.NewWriter(f), nil
}

func writeNormalized(path string, records []*engine.NormalizedRecord) error {
	f, w, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	w.Write([]string{"account_id", "account_id_src", "account_name", "name_core", "suffix_class", "created_date", "relationship", "has_multiple_names"})
	for _, r := range records {
		w.Write([]string{
			r.AccountID,
			r.AccountIDSrc,
			r.AccountName,
			r.NameCore,
			string(r.SuffixClass),
			dateString(r),
			r.Relationship,
			strconv.FormatBool(r.HasMultipleNames),
		})
	}
	return w.Error()
}

func writeScoredPairs(path string, pairs []*engine.ScoredPair) error {
	f, w, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	w.Write([]string{"id_a", "id_b", "score", "ratio_name", "ratio_set", "jaccard", "suffix_match", "num_style_match", "punctuation_match", "reason"})
	for _, p := range pairs {
		w.Write([]string{
			p.IDA,
			p.IDB,
			strconv.Itoa(p.Score),
			strconv.FormatFloat(p.RatioName, 'f', 2, 64),
			strconv.FormatFloat(p.RatioSet, 'f', 2, 64),
			strconv.FormatFloat(p.Jaccard, 'f', 4, 64),
			strconv.FormatBool(p.SuffixMatch),
			strconv.FormatBool(p.NumStyleMatch),
			strconv.FormatBool(p.PunctuationMatch),
			p.Reason,
		})
	}
	return w.Error()
}

func writeReview(path string, result *engine.Result) error {
	f, w, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	groupOf := make(map[string]*engine.Group, len(result.Normalized))
	for _, g := range result.Groups {
		for _, m := range g.Members {
			groupOf[m] = g
		}
	}

	aliasSummary := make(map[string][]string)
	for _, link := range result.AliasLinks {
		aliasSummary[link.SourceID] = append(aliasSummary[link.SourceID], link.TargetGroupID)
	}

	dispositionOf := make(map[string]*engine.DispositionResult, len(result.Dispositions))
	for _, d := range result.Dispositions {
		dispositionOf[d.AccountID] = d
	}

	w.Write([]string{
		"account_id", "account_id_src", "account_name", "relationship", "created_date",
		"group_id", "group_size", "is_primary", "weakest_edge_to_primary",
		"disposition", "disposition_reason", "alias_links",
	})

	for _, r := range result.Normalized {
		g := groupOf[r.AccountID]

		var groupID string
		var groupSize int
		var isPrimary bool
		var weakest int
		if g != nil {
			groupID = g.ID
			groupSize = len(g.Members)
			isPrimary = r.AccountID == g.PrimaryID
			weakest = g.WeakestEdgeToPrimary
		}

		d := dispositionOf[r.AccountID]
		var dispValue, dispReason string
		if d != nil {
			dispValue = string(d.Value)
			dispReason = d.Reason
		}

		w.Write([]string{
			r.AccountID,
			r.AccountIDSrc,
			r.AccountName,
			r.Relationship,
			dateString(r),
			groupID,
			strconv.Itoa(groupSize),
			strconv.FormatBool(isPrimary),
			strconv.Itoa(weakest),
			dispValue,
			dispReason,
			strings.Join(aliasSummary[r.AccountID], ";"),
		})
	}

	return w.Error()
}

func writeBlockStats(path string, stats []*engine.BlockStat) error {
	f, w, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	w.Write([]string{"first_token", "strategy", "record_count", "pairs_generated", "pairs_capped"})
	for _, s := range stats {
		w.Write([]string{
			s.FirstToken,
			s.Strategy,
			strconv.Itoa(s.RecordCount),
			strconv.Itoa(s.PairsGenerated),
			strconv.Itoa(s.PairsCapped),
		})
	}
	return w.Error()
}

func writeRunMetadata(path string, m *engine.RunMetadata) error {
	f, w, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	defer w.Flush()

	if m == nil {
		return nil
	}

	w.Write([]string{"run_id", "started_at", "finished_at", "record_count", "pair_count", "group_count", "high_threshold", "medium_threshold", "duplicate_ids"})
	w.Write([]string{
		m.RunID,
		m.StartedAt.Format("2006-01-02T15:04:05Z07:00"),
		m.FinishedAt.Format("2006-01-02T15:04:05Z07:00"),
		strconv.Itoa(m.RecordCount),
		strconv.Itoa(m.PairCount),
		strconv.Itoa(m.GroupCount),
		strconv.Itoa(m.HighThreshold),
		strconv.Itoa(m.MediumThreshold),
		strconv.Itoa(m.DuplicateIDs),
	})
	return w.Error()
}

func dateString(r *engine.NormalizedRecord) string {
	if r.CreatedDate == nil {
		return ""
	}
	return r.CreatedDate.Format("2006-01-02")
}
