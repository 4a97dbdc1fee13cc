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

	humanize "github.com/dustin/go-humanize"
	"github.com/sirupsen/logrus"

	"github.com/crmdedupe/acctdedupe/cnf"
	"github.com/crmdedupe/acctdedupe/util/uuid"
)

// NewRunMetadata stamps a RunMetadata for a completed run, generating a
// fresh correlation id so artifacts from the same invocation can be
// joined back together after the fact.
func NewRunMetadata(started, finished time.Time, recordCount, pairCount, groupCount, duplicateIDs int, o *cnf.Options) *RunMetadata {
	return &RunMetadata{
		RunID:           uuid.NewV4(),
		StartedAt:       started,
		FinishedAt:      finished,
		RecordCount:     recordCount,
		PairCount:       pairCount,
		GroupCount:      groupCount,
		HighThreshold:   o.Similarity.High,
		MediumThreshold: o.Similarity.Medium,
		DuplicateIDs:    duplicateIDs,
	}
}

// LogSummary emits a single human-readable summary line for a completed
// run, the way the teacher's server startup path logs its own counters.
func LogSummary(log *logrus.Entry, m *RunMetadata) {
	log.WithFields(logrus.Fields{
		"run_id":      m.RunID,
		"records":     humanize.Comma(int64(m.RecordCount)),
		"pairs":       humanize.Comma(int64(m.PairCount)),
		"groups":      humanize.Comma(int64(m.GroupCount)),
		"duplicates":  humanize.Comma(int64(m.DuplicateIDs)),
		"duration":    humanize.RelTime(m.StartedAt, m.FinishedAt, "", ""),
	}).Info("deduplication run complete")
}

// BuildBlockStats converts the Blocker's per-block counters into the
// sorted diagnostic artifact rows described by the block-statistics output.
func BuildBlockStats(stats []*BlockStat) []*BlockStat {
	out := make([]*BlockStat, len(stats))
	copy(out, stats)
	sort.Slice(out, func(i, j int) bool { return out[i].FirstToken < out[j].FirstToken })
	return out
}
