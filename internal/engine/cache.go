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
	"github.com/dgraph-io/ristretto"
)

// scoreCache memoizes ScoredPair results for the alias matcher within a
// single run, so a repeated alias-vs-member comparison is not
// recomputed. The main scoring pass does not use it.
type scoreCache struct {
	c *ristretto.Cache
}

func newScoreCache() *scoreCache {
	c, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1e6,
		MaxCost:     1 << 26,
		BufferItems: 64,
	})
	if err != nil {
		// ristretto only fails on invalid config; our config is
		// constant, so fall back to an always-miss cache rather than
		// ever failing a run over it.
		return &scoreCache{}
	}
	return &scoreCache{c: c}
}

func pairKey(idA, idB string) string {
	if idA > idB {
		idA, idB = idB, idA
	}
	return idA + "|" + idB
}

func (s *scoreCache) get(idA, idB string) (*ScoredPair, bool) {
	if s.c == nil {
		return nil, false
	}
	v, ok := s.c.Get(pairKey(idA, idB))
	if !ok {
		return nil, false
	}
	sp, ok := v.(*ScoredPair)
	return sp, ok
}

func (s *scoreCache) set(sp *ScoredPair) {
	if s.c == nil {
		return
	}
	s.c.Set(pairKey(sp.IDA, sp.IDB), sp, 1)
}
