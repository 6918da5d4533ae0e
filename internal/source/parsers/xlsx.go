// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"bytes"
	"context"
	"strings"

	"github.com/oreflot/flotation-mcp/internal/sheet"
	"github.com/oreflot/flotation-mcp/internal/source"
)

// zipMagic starts every xlsx file.
var zipMagic = []byte("PK\x03\x04")

// XLSXParser reads the two-row readings workbook. Values are taken by
// column; the header row is only echoed back.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Name() string {
	return "xlsx"
}

func (p *XLSXParser) CanHandle(src source.Source) bool {
	if strings.EqualFold(src.Format, "xlsx") {
		return true
	}
	return bytes.HasPrefix(src.Content, zipMagic)
}

func (p *XLSXParser) Parse(_ context.Context, src source.Source) ([]source.Cell, error) {
	rows, err := sheet.ReadRows(bytes.NewReader(src.Content))
	if err != nil {
		return nil, err
	}
	cells := make([]source.Cell, len(rows.Values))
	for i, v := range rows.Values {
		cells[i] = source.Cell{Header: rows.Header[i], Position: i, Value: v}
	}
	return cells, nil
}
