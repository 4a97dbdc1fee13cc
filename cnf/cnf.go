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

package cnf

// Options defines global configuration options for the deduplication
// pipeline. Zero values are replaced by Defaults() before a run starts.
type Options struct {
	Similarity struct {
		High    int
		Medium  int
		Penalty struct {
			SuffixMismatch      int
			NumStyleMismatch    int
			PunctuationMismatch int
		}
		GateCutoff int
	}

	Blocking struct {
		AllowlistTokens  []string
		AllowlistBigrams []string
		DenylistTokens   []string
		StopTokens       []string
		SoftBan          struct {
			MaxShardSize           int
			BlockCap               int
			MaxCandidatesPerRecord int
			LengthWindow           int
			CharBigramGate         float64
			MinTokenOverlap        int
		}
	}

	Grouping struct {
		MaxGroupSize int
		EdgeGating   struct {
			AllowMediumPlusSharedToken bool
		}
	}

	Alias struct {
		MaxAliasPairs int
	}

	IO struct {
		InputPath  string
		OutputDir  string
		ConfigPath string
	}

	Logging struct {
		Level  string // Stores the configured logging level
		Output string // Stores the configured logging output
		Format string // Stores the configured logging format
	}

	MaxPairs int
}

// Settings holds the active configuration once the CLI has parsed flags
// and configuration files, mirroring the teacher's package-level
// cnf.Settings pointer used throughout its db/ and server/ packages.
var Settings *Options

// defaultDenylistTokens is the built-in stopword list used to decide
// which first-token blocks get sharded rather than fully paired.
var defaultDenylistTokens = []string{
	"the", "and", "of", "a", "an", "for", "to",
}

// Defaults returns an Options populated with every default from the
// configuration table (spec.md §6).
func Defaults() *Options {
	o := &Options{}

	o.Similarity.High = 92
	o.Similarity.Medium = 84
	o.Similarity.Penalty.SuffixMismatch = 25
	o.Similarity.Penalty.NumStyleMismatch = 5
	o.Similarity.Penalty.PunctuationMismatch = 3
	o.Similarity.GateCutoff = 72

	o.Blocking.AllowlistTokens = nil
	o.Blocking.AllowlistBigrams = nil
	o.Blocking.DenylistTokens = append([]string{}, defaultDenylistTokens...)
	o.Blocking.StopTokens = []string{"inc", "llc", "ltd"}
	o.Blocking.SoftBan.MaxShardSize = 200
	o.Blocking.SoftBan.BlockCap = 800
	o.Blocking.SoftBan.MaxCandidatesPerRecord = 50
	o.Blocking.SoftBan.LengthWindow = 10
	o.Blocking.SoftBan.CharBigramGate = 0.1
	o.Blocking.SoftBan.MinTokenOverlap = 1

	o.Grouping.MaxGroupSize = 50
	o.Grouping.EdgeGating.AllowMediumPlusSharedToken = true

	o.Alias.MaxAliasPairs = 100000

	o.MaxPairs = 2000000

	o.Logging.Level = "info"
	o.Logging.Format = "text"
	o.Logging.Output = "stderr"

	return o
}

// Merge overlays non-zero fields of o2 onto o, returning o. Used after
// parsing a config file on top of Defaults().
func (o *Options) Merge(o2 *Options) *Options {
	if o2 == nil {
		return o
	}

	if o2.Similarity.High != 0 {
		o.Similarity.High = o2.Similarity.High
	}
	if o2.Similarity.Medium != 0 {
		o.Similarity.Medium = o2.Similarity.Medium
	}
	if o2.Similarity.Penalty.SuffixMismatch != 0 {
		o.Similarity.Penalty.SuffixMismatch = o2.Similarity.Penalty.SuffixMismatch
	}
	if o2.Similarity.Penalty.NumStyleMismatch != 0 {
		o.Similarity.Penalty.NumStyleMismatch = o2.Similarity.Penalty.NumStyleMismatch
	}
	if o2.Similarity.Penalty.PunctuationMismatch != 0 {
		o.Similarity.Penalty.PunctuationMismatch = o2.Similarity.Penalty.PunctuationMismatch
	}
	if o2.Similarity.GateCutoff != 0 {
		o.Similarity.GateCutoff = o2.Similarity.GateCutoff
	}
	if len(o2.Blocking.AllowlistTokens) > 0 {
		o.Blocking.AllowlistTokens = o2.Blocking.AllowlistTokens
	}
	if len(o2.Blocking.AllowlistBigrams) > 0 {
		o.Blocking.AllowlistBigrams = o2.Blocking.AllowlistBigrams
	}
	if len(o2.Blocking.DenylistTokens) > 0 {
		o.Blocking.DenylistTokens = o2.Blocking.DenylistTokens
	}
	if len(o2.Blocking.StopTokens) > 0 {
		o.Blocking.StopTokens = o2.Blocking.StopTokens
	}
	if o2.Blocking.SoftBan.MaxShardSize != 0 {
		o.Blocking.SoftBan.MaxShardSize = o2.Blocking.SoftBan.MaxShardSize
	}
	if o2.Blocking.SoftBan.BlockCap != 0 {
		o.Blocking.SoftBan.BlockCap = o2.Blocking.SoftBan.BlockCap
	}
	if o2.Blocking.SoftBan.MaxCandidatesPerRecord != 0 {
		o.Blocking.SoftBan.MaxCandidatesPerRecord = o2.Blocking.SoftBan.MaxCandidatesPerRecord
	}
	if o2.Blocking.SoftBan.LengthWindow != 0 {
		o.Blocking.SoftBan.LengthWindow = o2.Blocking.SoftBan.LengthWindow
	}
	if o2.Blocking.SoftBan.CharBigramGate != 0 {
		o.Blocking.SoftBan.CharBigramGate = o2.Blocking.SoftBan.CharBigramGate
	}
	if o2.Blocking.SoftBan.MinTokenOverlap != 0 {
		o.Blocking.SoftBan.MinTokenOverlap = o2.Blocking.SoftBan.MinTokenOverlap
	}
	if o2.Grouping.MaxGroupSize != 0 {
		o.Grouping.MaxGroupSize = o2.Grouping.MaxGroupSize
	}
	if o2.Grouping.EdgeGating.AllowMediumPlusSharedToken {
		o.Grouping.EdgeGating.AllowMediumPlusSharedToken = true
	}
	if o2.Alias.MaxAliasPairs != 0 {
		o.Alias.MaxAliasPairs = o2.Alias.MaxAliasPairs
	}
	if o2.MaxPairs != 0 {
		o.MaxPairs = o2.MaxPairs
	}
	if o2.Logging.Level != "" {
		o.Logging.Level = o2.Logging.Level
	}
	if o2.Logging.Format != "" {
		o.Logging.Format = o2.Logging.Format
	}
	if o2.Logging.Output != "" {
		o.Logging.Output = o2.Logging.Output
	}

	return o
}
