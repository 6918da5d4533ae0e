// SPDX-License-Identifier: Apache-2.0

// Package form holds the operator's readings form as a plain value. Every
// action takes a State and returns the next one with its status line set;
// nothing is mutated in place.
package form

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/oreflot/flotation-mcp/internal/predict"
	"github.com/oreflot/flotation-mcp/internal/record"
	"github.com/oreflot/flotation-mcp/internal/sheet"
	"github.com/oreflot/flotation-mcp/internal/source"
)

// ErrReadOnly is returned when a derived field is edited by hand.
var ErrReadOnly = errors.New("read-only field")

type State struct {
	Values record.RawRecord `json:"values"`
	Status Status           `json:"status"`
}

// New returns an empty form.
func New() State {
	return State{Values: record.Reset(nil)}
}

// FromRecord returns a form holding rec, entered field by field through
// Set. Unknown and derived field names are refused.
func FromRecord(rec record.RawRecord) (State, error) {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)

	s := New()
	for _, name := range names {
		next, err := s.Set(name, rec[name])
		if err != nil {
			return State{}, err
		}
		s = next
	}
	return s, nil
}

func (s State) clone() State {
	values := make(record.RawRecord, len(s.Values))
	for k, v := range s.Values {
		values[k] = v
	}
	return State{Values: values, Status: s.Status}
}

func (s State) failed(err error) State {
	next := s.clone()
	next.Status = StatusFor(err)
	return next
}

// Entries returns the form in canonical order.
func (s State) Entries() []record.Entry {
	entries := make([]record.Entry, 0, record.FieldCount)
	for _, name := range record.Names() {
		entries = append(entries, record.Entry{Name: name, Value: s.Values[name]})
	}
	return entries
}

// Set edits one input field.
func (s State) Set(name, value string) (State, error) {
	f, ok := record.Lookup(name)
	if !ok {
		err := fmt.Errorf("%w: %q", record.ErrUnknownField, name)
		return s.failed(err), err
	}
	if !f.Editable() {
		err := fmt.Errorf("%w: %q", ErrReadOnly, name)
		return s.failed(err), err
	}
	next := s.clone()
	next.Values[name] = value
	next.Status = Status{}
	return next, nil
}

// Format normalizes the input fields. The returned state shows the
// normalized values, or the annotated ones when the record is rejected.
func (s State) Format() (State, record.ValidatedRecord, error) {
	values, display, err := record.Normalize(s.Values)
	next := State{Values: display}
	if err != nil {
		next.Status = StatusFor(err)
		return next, nil, err
	}
	next.Status = success("Data formatted")
	return next, values, nil
}

// Calculate formats the form and fills the derived fields from p. Derived
// fields keep their previous values when anything fails.
func (s State) Calculate(ctx context.Context, p predict.Predictor) (State, predict.Concentrates, error) {
	formatted, values, err := s.Format()
	if err != nil {
		return formatted, predict.Concentrates{}, err
	}
	c, err := predict.ComputeConcentrates(ctx, p, values)
	if err != nil {
		return formatted.failed(err), predict.Concentrates{}, err
	}
	return State{
		Values: c.Apply(formatted.Values),
		Status: success("Computation complete"),
	}, c, nil
}

// Reset clears every field, derived ones included.
func (s State) Reset() State {
	return State{
		Values: record.Reset(s.Values),
		Status: success("Data reset"),
	}
}

// Import replaces the form with the readings in the file at path. The
// format is guessed from the extension and content.
func (s State) Import(ctx context.Context, pipeline *source.Pipeline, path string) (State, source.RunResult, error) {
	data, err := sheet.ReadFile(path)
	if err != nil {
		return s.failed(err), source.RunResult{}, err
	}
	return s.ImportSource(ctx, pipeline, source.Source{
		Content: data,
		Format:  strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."),
		ID:      path,
	})
}

// ImportSource replaces the form with the readings parsed from src. Only
// input fields are filled; derived fields come back empty.
func (s State) ImportSource(ctx context.Context, pipeline *source.Pipeline, src source.Source) (State, source.RunResult, error) {
	result, err := pipeline.RunWithMeta(ctx, src)
	if err != nil {
		if !errors.Is(err, sheet.ErrFileUnreadable) {
			err = fmt.Errorf("%w: %w", sheet.ErrFileUnreadable, err)
		}
		return s.failed(err), source.RunResult{}, err
	}
	next := New()
	for name, value := range result.Record {
		next.Values[name] = value
	}
	next.Status = success("Data filled from %s file", result.ParserUsed)
	return next, result, nil
}

// Export writes the form as shown, derived fields included, to a
// timestamped workbook in dir.
func (s State) Export(dir string, now time.Time) (State, string, error) {
	path, err := sheet.Export(dir, now, s.Entries())
	if err != nil {
		return s.failed(err), "", err
	}
	next := s.clone()
	next.Status = success("File '%s' downloaded", filepath.Base(path))
	return next, path, nil
}

// Download delivers a reference workbook through lib.
func (s State) Download(ctx context.Context, lib sheet.Library, kind sheet.Kind) (State, string, error) {
	path, err := lib.Fetch(ctx, kind)
	if err != nil {
		return s.failed(err), "", err
	}
	next := s.clone()
	next.Status = success("File '%s' downloaded", kind.FileName())
	return next, path, nil
}
