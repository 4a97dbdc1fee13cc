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

import "strings"

// relationshipRank orders the "relationship" column from most to least
// authoritative for survivorship purposes. Lower is better; a value not
// present in the table sorts after every known relationship.
var relationshipRank = map[string]int{
	"employee":   0,
	"partner":    1,
	"reseller":   2,
	"customer":   3,
	"prospect":   4,
	"competitor": 5,
}

const unknownRelationshipRank = 1 << 30

// RankOf returns the survivorship rank for a relationship value,
// case-insensitively, falling back to unknownRelationshipRank for any
// value the table doesn't recognize.
func RankOf(relationship string) int {
	if r, ok := relationshipRank[strings.ToLower(strings.TrimSpace(relationship))]; ok {
		return r
	}
	return unknownRelationshipRank
}
