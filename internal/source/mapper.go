// SPDX-License-Identifier: Apache-2.0

package source

import (
	"github.com/oreflot/flotation-mcp/internal/record"
)

// FieldMapper turns parsed cells into a record of input fields.
//
// Positional cells land on the input field at their column; derived columns
// are dropped since concentrates are only ever computed. Named cells match
// input fields ignoring case and surrounding space. Cells matching nothing
// are reported back by header.
type FieldMapper struct{}

// NewFieldMapper creates a new FieldMapper.
func NewFieldMapper() *FieldMapper {
	return &FieldMapper{}
}

func (m *FieldMapper) Map(cells []Cell) (record.RawRecord, []string) {
	rec := make(record.RawRecord, record.InputCount)
	var ignored []string
	for _, cell := range cells {
		f, ok := m.field(cell)
		switch {
		case !ok:
			ignored = append(ignored, cell.Header)
		case f.Editable():
			rec[f.Name] = cell.Value
		}
	}
	return rec, ignored
}

func (m *FieldMapper) field(cell Cell) (record.FieldSpec, bool) {
	if cell.Position >= 0 {
		return record.At(cell.Position)
	}
	return record.LookupFold(cell.Header)
}
