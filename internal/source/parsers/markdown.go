// SPDX-License-Identifier: Apache-2.0

package parsers

import (
	"context"
	"strings"

	"github.com/oreflot/flotation-mcp/internal/source"
)

// MarkdownParser reads readings out of a Markdown shift report. Two shapes
// are recognized anywhere in the document:
//
//	| Field       | Value   |
//	|-------------|---------|
//	| Starch Flow | 3019,53 |
//
//	- Ore Pulp pH: 10.066
//
// Headings and prose are skipped.
type MarkdownParser struct{}

// NewMarkdownParser creates a new MarkdownParser.
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

func (p *MarkdownParser) Name() string {
	return "markdown"
}

// CanHandle returns true for the "markdown" format hint or content holding
// a table row. List-only documents need the hint since YAML looks the same.
func (p *MarkdownParser) CanHandle(src source.Source) bool {
	if strings.EqualFold(src.Format, "markdown") || strings.EqualFold(src.Format, "md") {
		return true
	}
	for _, line := range strings.Split(string(src.Content), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "|") {
			return true
		}
	}
	return false
}

func (p *MarkdownParser) Parse(_ context.Context, src source.Source) ([]source.Cell, error) {
	var cells []source.Cell
	// Index of the cell taken from the previous line when it was a table
	// row, so a following separator can demote it to a header.
	lastRow := -1

	for _, line := range strings.Split(string(src.Content), "\n") {
		line = strings.TrimSpace(line)
		switch {
		case strings.HasPrefix(line, "|"):
			cols := tableColumns(line)
			if isSeparator(cols) {
				if lastRow >= 0 {
					cells = append(cells[:lastRow], cells[lastRow+1:]...)
				}
				lastRow = -1
				continue
			}
			lastRow = -1
			if len(cols) >= 2 {
				lastRow = len(cells)
				cells = append(cells, namedCell(cols[0], cols[1]))
			}
		case strings.HasPrefix(line, "- "), strings.HasPrefix(line, "* "):
			lastRow = -1
			key, value, ok := strings.Cut(line[2:], ":")
			if ok {
				cells = append(cells, namedCell(key, value))
			}
		default:
			lastRow = -1
		}
	}
	return cells, nil
}

func tableColumns(line string) []string {
	line = strings.TrimSuffix(strings.TrimPrefix(line, "|"), "|")
	cols := strings.Split(line, "|")
	for i, c := range cols {
		cols[i] = strings.TrimSpace(c)
	}
	return cols
}

func isSeparator(cols []string) bool {
	for _, c := range cols {
		if strings.Trim(c, ":-") != "" || !strings.Contains(c, "-") {
			return false
		}
	}
	return len(cols) > 0
}

// namedCell strips emphasis and code marks around a key or value.
func namedCell(key, value string) source.Cell {
	return source.Cell{
		Header:   strings.Trim(strings.TrimSpace(key), "*_`"),
		Position: -1,
		Value:    strings.Trim(strings.TrimSpace(value), "*_`"),
	}
}
