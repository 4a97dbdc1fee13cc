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

// Package engine implements the matching pipeline: normalization,
// blocking, scoring, grouping, survivorship, alias cross-linking and
// disposition classification over a set of CRM account records.
package engine

import "time"

// SuffixClass is a normalized legal-entity suffix.
type SuffixClass string

const (
	SuffixINC   SuffixClass = "INC"
	SuffixLLC   SuffixClass = "LLC"
	SuffixLTD   SuffixClass = "LTD"
	SuffixCORP  SuffixClass = "CORP"
	SuffixCO    SuffixClass = "CO"
	SuffixNONE  SuffixClass = "NONE"
)

// AliasSource tags where an alias candidate was extracted from.
type AliasSource string

const (
	AliasSemicolon   AliasSource = "semicolon"
	AliasNumbered    AliasSource = "numbered"
	AliasParenthesis AliasSource = "parenthesis"
)

// Disposition is the terminal per-record classification.
type Disposition string

const (
	Keep   Disposition = "Keep"
	Update Disposition = "Update"
	Delete Disposition = "Delete"
	Verify Disposition = "Verify"
)

// Record is one ingested row, immutable after creation.
type Record struct {
	AccountID    string // canonical 18-char id; joins always use this
	AccountIDSrc string // preserved original id as read from the source
	AccountName  string
	CreatedDate  *time.Time // nil ("⊥") sorts last in survivorship
	Relationship string
}

// AliasCandidate is a name fragment extracted from a raw account name
// that may refer to a different real-world entity.
type AliasCandidate struct {
	Text   string
	Source AliasSource
}

// NormalizedRecord is a Record plus every field derived by the Normalizer.
type NormalizedRecord struct {
	Record

	NameBase          string
	NameCore          string
	SuffixClass       SuffixClass
	EnhancedTokens    map[string]struct{}
	AliasCandidates   []AliasCandidate
	HasSemicolon      bool
	HasParentheses    bool
	HasMultipleNames  bool
	RawNumericStyle   string // the raw digit-separator style, e.g. "-", "/", " "
}

// CandidatePair is an ordered pair of canonical ids produced by the Blocker.
type CandidatePair struct {
	IDA, IDB string
	Reason   string
}

// ScoredPair is a CandidatePair plus the Scorer's composite result.
type ScoredPair struct {
	CandidatePair
	RatioName         float64
	RatioSet          float64
	Jaccard           float64
	SuffixMatch       bool
	NumStyleMatch     bool
	PunctuationMatch  bool
	Score             int
}

// Group is a converged connected component from the Grouper.
type Group struct {
	ID                   string
	Members              []string // ascending account_id order
	PrimaryID            string
	WeakestEdgeToPrimary int
	JoinReasons          []string
	JoinEdges            []*ScoredPair // edges union-find actually used to merge this component
}

// AliasCrossLink is an audit-only overlay relation, never used for grouping.
type AliasCrossLink struct {
	SourceID      string
	TargetGroupID string
	AliasText     string
	AliasSource   AliasSource
	Score         int
}

// DispositionResult is the terminal per-record output.
type DispositionResult struct {
	AccountID string
	Value     Disposition
	Reason    string
}

// FieldRecommendation is one line of a Survivor merge preview.
type FieldRecommendation struct {
	Field          string
	PrimaryValue   string
	OtherValue     string
	Recommendation string // "retain primary value" | "surface non-primary value for review"
	Diff           string // inline diff text when values differ
}

// MergePreview is the Survivor's per-group, per-non-primary recommendation set.
type MergePreview struct {
	GroupID         string
	PrimaryID       string
	NonPrimaryID    string
	Recommendations []FieldRecommendation
}

// Result is everything engine.Run produces, matching spec.md §6's artifact list.
type Result struct {
	Normalized     []*NormalizedRecord
	ScoredPairs    []*ScoredPair
	Groups         []*Group
	MergePreviews  []*MergePreview
	AliasLinks     []*AliasCrossLink
	Dispositions   []*DispositionResult
	BlockStats     []*BlockStat
	Metadata       *RunMetadata
	DuplicateIDs   int // records whose canonical account_id collided with an earlier record's
}

// BlockStat is one row of the block-statistics diagnostic artifact.
type BlockStat struct {
	FirstToken       string
	Strategy         string
	RecordCount      int
	PairsGenerated   int
	PairsCapped      int
}

// RunMetadata captures the thresholds and counters of a completed run.
type RunMetadata struct {
	RunID           string
	StartedAt       time.Time
	FinishedAt      time.Time
	RecordCount     int
	PairCount       int
	GroupCount      int
	HighThreshold   int
	MediumThreshold int
	DuplicateIDs    int
}
