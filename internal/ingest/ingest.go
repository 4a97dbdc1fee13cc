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

// Package ingest reads the source CRM export and converts it into the
// typed, immutable Record values the matching engine operates on. All
// column renaming, identifier canonicalization and date parsing happens
// here; nothing downstream ever sees a raw, untyped field again.
package ingest

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/crmdedupe/acctdedupe/internal/engine"
	"github.com/crmdedupe/acctdedupe/log"
)

// columnMap renames the source header row to the canonical snake_case
// field names the rest of the pipeline expects.
var columnMap = map[string]string{
	"account id":    "account_id_src",
	"account name":  "account_name",
	"created date":  "created_date",
	"relationship":  "relationship",
}

var requiredColumns = []string{"account_id_src", "account_name"}

// excelEpoch is the day spreadsheet serial 0 represents, matching the
// common Excel/Google Sheets 1900 date system (including its leap-year bug).
var excelEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ReadCSV opens path and parses every row into a canonical engine.Record,
// canonicalizing identifiers to 18 characters and validating that every
// resulting account_id is unique before returning.
func ReadCSV(path string) ([]engine.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open input file")
	}
	defer f.Close()

	return Read(f)
}

// Read parses CSV rows from r into canonical engine.Record values. It is
// separated from ReadCSV so tests can exercise the parsing logic against
// an in-memory reader without touching the filesystem.
func Read(r io.Reader) ([]engine.Record, error) {

	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, errors.Wrap(err, "failed to read header row")
	}

	fields := make([]string, len(header))
	for i, h := range header {
		canon, ok := columnMap[strings.ToLower(strings.TrimSpace(h))]
		if !ok {
			canon = strings.ToLower(strings.TrimSpace(h))
		}
		fields[i] = canon
	}

	if err := requireColumns(fields); err != nil {
		return nil, err
	}

	index := make(map[string]int, len(fields))
	for i, f := range fields {
		index[f] = i
	}

	var records []engine.Record
	var ids []string

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to read row")
		}

		rec, err := parseRow(row, index)
		if err != nil {
			return nil, err
		}

		records = append(records, rec)
		ids = append(ids, rec.AccountID)
	}

	if err := engine.ValidateUnique(ids); err != nil {
		return nil, err
	}

	return records, nil
}

func requireColumns(fields []string) error {
	have := make(map[string]bool, len(fields))
	for _, f := range fields {
		have[f] = true
	}
	var missing []string
	for _, req := range requiredColumns {
		if !have[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return engine.AsMissingColumn(missing)
	}
	return nil
}

func parseRow(row []string, index map[string]int) (engine.Record, error) {

	srcID := cell(row, index, "account_id_src")
	canonical, err := engine.Canonicalize(srcID)
	if err != nil {
		return engine.Record{}, err
	}

	// A malformed created_date is recoverable at the record level: the
	// record is retained with created_date = nil ("bottom"), which
	// survivorship treats as sorting last, rather than failing the run.
	rawDate := cell(row, index, "created_date")
	created, err := parseDate(rawDate)
	if err != nil {
		log.WithField("account_id", canonical).WithField("created_date", rawDate).Warn("unparseable created_date, treating as missing")
		created = nil
	}

	return engine.Record{
		AccountID:    canonical,
		AccountIDSrc: srcID,
		AccountName:  cell(row, index, "account_name"),
		CreatedDate:  created,
		Relationship: cell(row, index, "relationship"),
	}, nil
}

func cell(row []string, index map[string]int, field string) string {
	i, ok := index[field]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// parseDate accepts an ISO-8601 date/time string or a spreadsheet serial
// integer, returning nil (the bottom value) for an empty cell. Anything
// else is a MalformedDate error.
func parseDate(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}

	if serial, err := strconv.ParseFloat(raw, 64); err == nil {
		t := excelEpoch.Add(time.Duration(serial*24*60*60) * time.Second)
		return &t, nil
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}

	return nil, engine.AsMalformedDate(raw)
}
