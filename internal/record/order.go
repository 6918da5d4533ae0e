// SPDX-License-Identifier: Apache-2.0

package record

import (
	"fmt"
	"sort"
)

// Entry is one named value of a record in canonical order.
type Entry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ToCanonicalOrder lays rec out as the 23-wide canonical sequence used for
// spreadsheet rows and tables. Fields absent from rec come out empty.
// rec must only contain known field names.
func ToCanonicalOrder(rec RawRecord) ([]Entry, error) {
	var unknown []string
	for name := range rec {
		if _, ok := byName[name]; !ok {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, fmt.Errorf("%w: %q", ErrUnknownField, unknown)
	}

	entries := make([]Entry, len(fields))
	for i, f := range fields {
		entries[i] = Entry{Name: f.Name, Value: rec[f.Name]}
	}
	return entries, nil
}

// Values returns the entry values in order.
func Values(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Value
	}
	return out
}

// Reset returns a record with every field, derived ones included, cleared.
func Reset(RawRecord) RawRecord {
	out := make(RawRecord, len(fields))
	for _, f := range fields {
		out[f.Name] = ""
	}
	return out
}
