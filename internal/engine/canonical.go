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

import "unicode"

// caseAlphabet is the 32-character alphabet used to encode the 5-bit
// uppercase mask of each 5-char identifier chunk into one suffix
// character.
const caseAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ012345"

// Canonicalize converts a 15-character Salesforce-style identifier into
// its 18-character canonical form by appending a 3-character checksum,
// one character per 5-char chunk, where bit i of the chunk's mask is
// set iff the chunk's i-th character is uppercase.
//
// An already-18-character identifier is validated against its own
// checksum and returned unchanged (CANONICALIZE is a fixed point on
// valid input). Anything else is an InvalidIdentifier error.
func Canonicalize(id string) (string, error) {

	switch len(id) {
	case 15:
		return id + checksum(id), nil
	case 18:
		if !isAlphanumeric(id) {
			return "", newError(InvalidIdentifier, "identifier is not alphanumeric", []string{id})
		}
		want := checksum(id[:15])
		if id[15:] != want {
			return "", newError(InvalidIdentifier, "18-char identifier has an invalid checksum suffix", []string{id})
		}
		return id, nil
	default:
		return "", newError(InvalidIdentifier, "identifier must be 15 or 18 characters", []string{id})
	}
}

// checksum computes the 3-character suffix for a 15-character prefix.
func checksum(prefix string) string {
	var out [3]byte
	for chunk := 0; chunk < 3; chunk++ {
		mask := 0
		for i := 0; i < 5; i++ {
			c := prefix[chunk*5+i]
			if c >= 'A' && c <= 'Z' {
				mask |= 1 << uint(i)
			}
		}
		out[chunk] = caseAlphabet[mask]
	}
	return string(out[:])
}

func isAlphanumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// ValidateUnique verifies every record's canonical AccountID is unique,
// returning a DuplicateIdentifier error carrying the first duplicate
// samples if not.
func ValidateUnique(ids []string) error {
	seen := make(map[string]bool, len(ids))
	var dupes []string
	for _, id := range ids {
		if seen[id] {
			if len(dupes) < maxSamples {
				dupes = append(dupes, id)
			}
			continue
		}
		seen[id] = true
	}
	if len(dupes) > 0 {
		return newError(DuplicateIdentifier, "duplicate canonical account_id values found", dupes)
	}
	return nil
}
