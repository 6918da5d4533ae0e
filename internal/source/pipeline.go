// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"

	"github.com/oreflot/flotation-mcp/internal/record"
)

// Pipeline turns one readings file or pasted text into a RawRecord of the
// input fields. The first parser claiming the source splits it into cells;
// the mapper places the cells on the schema.
type Pipeline struct {
	parsers []Parser
	mapper  *FieldMapper
}

// NewPipeline returns a Pipeline trying parsers in the given order.
func NewPipeline(parsers ...Parser) *Pipeline {
	return &Pipeline{
		parsers: parsers,
		mapper:  NewFieldMapper(),
	}
}

// RunResult is the record read from a source and how it was read.
type RunResult struct {
	Record     record.RawRecord
	ParserUsed string
	CellCount  int
	// Ignored lists headers of cells that matched no input field.
	Ignored []string
}

// RunWithMeta reads the input fields from src. Derived columns are dropped
// and cells naming no field are listed in Ignored. It fails when no parser
// recognizes src or the chosen parser cannot read it.
func (p *Pipeline) RunWithMeta(ctx context.Context, src Source) (RunResult, error) {
	parser, err := p.selectParser(src)
	if err != nil {
		return RunResult{}, err
	}

	cells, err := parser.Parse(ctx, src)
	if err != nil {
		return RunResult{}, fmt.Errorf("parser %q failed: %w", parser.Name(), err)
	}

	rec, ignored := p.mapper.Map(cells)
	return RunResult{
		Record:     rec,
		ParserUsed: parser.Name(),
		CellCount:  len(cells),
		Ignored:    ignored,
	}, nil
}

// selectParser returns the first registered parser that can handle the given source.
func (p *Pipeline) selectParser(src Source) (Parser, error) {
	for _, parser := range p.parsers {
		if parser.CanHandle(src) {
			return parser, nil
		}
	}
	return nil, fmt.Errorf("unsupported readings format: no parser found for source %q (format hint: %q)", src.ID, src.Format)
}

// RegisteredParsers lists the parser names in the order they are tried.
func (p *Pipeline) RegisteredParsers() []string {
	names := make([]string, len(p.parsers))
	for i, parser := range p.parsers {
		names[i] = parser.Name()
	}
	return names
}
