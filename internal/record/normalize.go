// SPDX-License-Identifier: Apache-2.0

package record

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// NotAvailable is the sentinel operators type (or spreadsheets carry) for a
// reading that could not be taken. It is matched case-insensitively anywhere
// in the value.
const NotAvailable = "n/f"

// malformedSuffix is appended to a value that is not a number so the form can
// show the operator which entry to fix. It contains NotAvailable, so a second
// pass reports the field as missing instead of malformed.
const malformedSuffix = " (" + NotAvailable + ")"

var (
	ErrMissingField   = errors.New("missing field")
	ErrMalformedField = errors.New("malformed field")
	ErrUnknownField   = errors.New("unknown field")
	ErrIncomplete     = errors.New("incomplete record")
)

// RawRecord maps field names to the text entered for them.
type RawRecord map[string]string

// ValidatedRecord maps every input field name to its rounded value. Values
// only exist for complete records: Normalize never returns a partial one.
type ValidatedRecord map[string]float64

// Reason classifies why a field was rejected.
type Reason string

const (
	ReasonMissing   Reason = "missing"
	ReasonMalformed Reason = "malformed"
)

// FieldIssue is one rejected field.
type FieldIssue struct {
	Field   string `json:"field"`
	Reason  Reason `json:"reason"`
	Raw     string `json:"raw"`
	Display string `json:"display"`
}

// RejectionReport lists every input field that kept a record from being
// validated, in canonical order.
type RejectionReport struct {
	Issues []FieldIssue `json:"issues"`
}

func (r *RejectionReport) Error() string {
	parts := make([]string, 0, 2)
	if names := r.Missing(); len(names) > 0 {
		parts = append(parts, "missing: "+strings.Join(names, ", "))
	}
	if names := r.Malformed(); len(names) > 0 {
		parts = append(parts, "malformed: "+strings.Join(names, ", "))
	}
	return "record rejected (" + strings.Join(parts, "; ") + ")"
}

// Is reports whether the report contains an issue of the target kind.
func (r *RejectionReport) Is(target error) bool {
	switch target {
	case ErrMissingField:
		return len(r.Missing()) > 0
	case ErrMalformedField:
		return len(r.Malformed()) > 0
	}
	return false
}

// Missing returns the names of fields that were empty or not available.
func (r *RejectionReport) Missing() []string {
	return r.names(ReasonMissing)
}

// Malformed returns the names of fields that did not parse as numbers.
func (r *RejectionReport) Malformed() []string {
	return r.names(ReasonMalformed)
}

// Fields returns every rejected field name.
func (r *RejectionReport) Fields() []string {
	names := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		names[i] = issue.Field
	}
	return names
}

func (r *RejectionReport) names(reason Reason) []string {
	var names []string
	for _, issue := range r.Issues {
		if issue.Reason == reason {
			names = append(names, issue.Field)
		}
	}
	return names
}

// Normalize validates the input fields of raw.
//
// The second return value is the record to show back to the operator: valid
// numbers in canonical form, malformed values annotated, missing values and
// derived fields untouched. It is returned on rejection too. Feeding it back
// into Normalize yields the same result.
//
// On rejection the error is a *RejectionReport naming every offending field.
func Normalize(raw RawRecord) (ValidatedRecord, RawRecord, error) {
	display := make(RawRecord, len(raw))
	for name, value := range raw {
		display[name] = value
	}

	values := make(ValidatedRecord, InputCount)
	var report RejectionReport
	for _, f := range fields[:InputCount] {
		value, issue := normalizeValue(f.Name, raw[f.Name])
		if issue != nil {
			if issue.Reason == ReasonMalformed {
				display[f.Name] = issue.Display
			}
			report.Issues = append(report.Issues, *issue)
			continue
		}
		values[f.Name] = value
		display[f.Name] = Format(value)
	}

	if len(report.Issues) > 0 {
		return nil, display, &report
	}
	return values, display, nil
}

func normalizeValue(name, raw string) (float64, *FieldIssue) {
	value := strings.TrimSpace(raw)
	if value == "" || strings.Contains(strings.ToLower(value), NotAvailable) {
		return 0, &FieldIssue{Field: name, Reason: ReasonMissing, Raw: raw, Display: raw}
	}

	parsed, err := strconv.ParseFloat(strings.ReplaceAll(value, ",", "."), 64)
	if err != nil || math.IsNaN(parsed) || math.IsInf(parsed, 0) {
		return 0, &FieldIssue{Field: name, Reason: ReasonMalformed, Raw: raw, Display: value + malformedSuffix}
	}
	return Round(parsed), nil
}

// Strings renders the record with the canonical three-decimal strings.
func (v ValidatedRecord) Strings() RawRecord {
	out := make(RawRecord, len(v))
	for name, value := range v {
		out[name] = Format(value)
	}
	return out
}

// Vector returns the input values in canonical order.
func (v ValidatedRecord) Vector() ([]float64, error) {
	for name := range v {
		if f, ok := Lookup(name); !ok || !f.Editable() {
			return nil, fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
	}
	vec := make([]float64, InputCount)
	for i, f := range fields[:InputCount] {
		value, ok := v[f.Name]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no value", ErrIncomplete, f.Name)
		}
		vec[i] = value
	}
	return vec, nil
}
