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

// BlacklistProvider reports whether an account id has been manually
// flagged for deletion regardless of anything the matching pipeline
// concludes about it. Implementations are read-only; the pipeline
// never writes back through this interface.
type BlacklistProvider interface {
	IsBlacklisted(accountID string) bool
}

// OverrideProvider reports a manually-forced disposition for an account
// id, taking precedence over every rule the Dispositioner would
// otherwise apply.
type OverrideProvider interface {
	Override(accountID string) (Disposition, bool)
}

// noProvider is the zero-value fallback used when a pipeline run
// supplies neither a blacklist nor an override source.
type noProvider struct{}

func (noProvider) IsBlacklisted(string) bool                    { return false }
func (noProvider) Override(string) (Disposition, bool)          { return "", false }

// NoBlacklist and NoOverrides are shared no-op providers for callers
// that don't have manual curation data to supply.
var (
	NoBlacklist BlacklistProvider = noProvider{}
	NoOverrides OverrideProvider  = noProvider{}
)
