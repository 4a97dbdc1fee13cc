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

package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"

	"github.com/crmdedupe/acctdedupe/internal/engine"
	"github.com/crmdedupe/acctdedupe/log"
)

// csvBlacklist is a read-only BlacklistProvider backed by a single-column
// CSV file of account ids manually flagged for deletion.
type csvBlacklist struct {
	ids map[string]bool
}

// ReadBlacklist loads a blacklist CSV (one account_id per row, optional
// header). A missing path returns an empty, always-false provider rather
// than an error, since curation data is optional.
func ReadBlacklist(path string) (engine.BlacklistProvider, error) {
	if path == "" {
		return engine.NoBlacklist, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return engine.NoBlacklist, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open blacklist file")
	}
	defer f.Close()

	ids := make(map[string]bool)
	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithField("path", path).WithError(err).Warn("skipping malformed blacklist row")
			continue
		}
		if len(row) == 0 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" || strings.EqualFold(id, "account_id") {
			continue
		}
		ids[id] = true
	}

	return &csvBlacklist{ids: ids}, nil
}

func (b *csvBlacklist) IsBlacklisted(accountID string) bool {
	return b.ids[accountID]
}

// csvOverrides is a read-only OverrideProvider backed by a two-column
// CSV file of account_id, disposition pairs.
type csvOverrides struct {
	values map[string]engine.Disposition
}

// ReadOverrides loads a manual-override CSV (account_id, disposition per
// row, optional header). A missing path returns an empty provider.
func ReadOverrides(path string) (engine.OverrideProvider, error) {
	if path == "" {
		return engine.NoOverrides, nil
	}

	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return engine.NoOverrides, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to open override file")
	}
	defer f.Close()

	values := make(map[string]engine.Disposition)
	cr := csv.NewReader(f)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.WithField("path", path).WithError(err).Warn("skipping malformed override row")
			continue
		}
		if len(row) < 2 {
			continue
		}
		id := strings.TrimSpace(row[0])
		if id == "" || strings.EqualFold(id, "account_id") {
			continue
		}
		values[id] = engine.Disposition(strings.TrimSpace(row[1]))
	}

	return &csvOverrides{values: values}, nil
}

func (o *csvOverrides) Override(accountID string) (engine.Disposition, bool) {
	v, ok := o.values[accountID]
	return v, ok
}
