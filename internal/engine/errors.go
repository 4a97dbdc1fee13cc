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
	"fmt"

	"github.com/pkg/errors"
)

// Kind identifies one of the fatal or recoverable error categories
// from the error handling design.
type Kind int

const (
	InvalidIdentifier Kind = iota
	DuplicateIdentifier
	MissingColumn
	MalformedDate
	MalformedConfig
	PairCapExceeded
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidIdentifier:
		return "InvalidIdentifier"
	case DuplicateIdentifier:
		return "DuplicateIdentifier"
	case MissingColumn:
		return "MissingColumn"
	case MalformedDate:
		return "MalformedDate"
	case MalformedConfig:
		return "MalformedConfig"
	case PairCapExceeded:
		return "PairCapExceeded"
	case Cancelled:
		return "Cancelled"
	}
	return "Unknown"
}

// Error is the typed, sample-carrying error returned by fatal failures
// in the pipeline. Samples holds the first N offending values so the
// caller can report them without re-scanning the input.
type Error struct {
	Kind    Kind
	Message string
	Samples []string
	cause   error
}

func (e *Error) Error() string {
	if len(e.Samples) == 0 {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (samples: %v)", e.Kind, e.Message, e.Samples)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// maxSamples bounds how many offending values are attached to a fatal error.
const maxSamples = 3

func newError(kind Kind, message string, samples []string) error {
	if len(samples) > maxSamples {
		samples = samples[:maxSamples]
	}
	return errors.WithStack(&Error{
		Kind:    kind,
		Message: message,
		Samples: samples,
	})
}

// AsError unwraps err looking for an *Error and reports whether one was found.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// AsMissingColumn builds a MissingColumn error naming the absent
// required columns, for callers outside this package that validate an
// input schema before constructing Records.
func AsMissingColumn(columns []string) error {
	return newError(MissingColumn, "required column(s) missing from input", columns)
}

// AsMalformedDate builds a MalformedDate error carrying the offending
// raw value, for callers outside this package that parse date cells.
func AsMalformedDate(raw string) error {
	return newError(MalformedDate, "created_date is neither ISO-8601 nor a spreadsheet serial", []string{raw})
}
