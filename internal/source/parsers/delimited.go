// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/oreflot/flotation-mcp/internal/source"
)

// DelimitedParser reads rows copied out of a spreadsheet: a header line and
// a value line separated by tabs or semicolons. Commas only separate fields
// under the "csv" hint since they are decimal separators in many plant
// exports; such files quote decimal-comma values. A single line is taken as
// values.
type DelimitedParser struct{}

func NewDelimitedParser() *DelimitedParser {
	return &DelimitedParser{}
}

func (p *DelimitedParser) Name() string {
	return "delimited"
}

func (p *DelimitedParser) CanHandle(src source.Source) bool {
	switch strings.ToLower(src.Format) {
	case "tsv", "csv", "delimited":
		return true
	}
	return strings.ContainsAny(firstLine(src.Content), "\t;")
}

func (p *DelimitedParser) Parse(_ context.Context, src source.Source) ([]source.Cell, error) {
	r := csv.NewReader(strings.NewReader(strings.TrimPrefix(string(src.Content), "\ufeff")))
	r.Comma = separator(src)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read delimited rows: %w", err)
	}

	var header, values []string
	switch len(lines) {
	case 0:
		return nil, nil
	case 1:
		values = lines[0]
	default:
		header, values = lines[0], lines[1]
	}

	cells := make([]source.Cell, len(values))
	for i, v := range values {
		cell := source.Cell{Position: i, Value: v}
		if i < len(header) {
			cell.Header = header[i]
		}
		cells[i] = cell
	}
	return cells, nil
}

func separator(src source.Source) rune {
	line := firstLine(src.Content)
	switch {
	case strings.Contains(line, "\t"):
		return '\t'
	case strings.Contains(line, ";"):
		return ';'
	case strings.EqualFold(src.Format, "csv"):
		return ','
	}
	return ';'
}

func firstLine(content []byte) string {
	return strings.SplitN(strings.TrimSpace(string(content)), "\n", 2)[0]
}
