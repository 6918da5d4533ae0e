// SPDX-License-Identifier: Apache-2.0

package source

import "context"

// Cell is one value read from an input source. Position is the canonical
// column index for positional sources and -1 for sources that name their
// fields; Header carries the column or key text.
type Cell struct {
	Header   string
	Position int
	Value    string
}

// Source describes the raw input to the readings pipeline.
type Source struct {
	// Content is the raw file or document content.
	Content []byte
	Format  string
	ID      string
}

type Parser interface {
	CanHandle(src Source) bool
	Parse(ctx context.Context, src Source) ([]Cell, error)
	Name() string
}
