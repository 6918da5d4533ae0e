// SPDX-License-Identifier: Apache-2.0

package parsers

import "github.com/oreflot/flotation-mcp/internal/source"

// Default builds a Pipeline with all readings parsers registered.
// Parser order matters: the binary workbook check runs first and the
// delimited and markdown parsers precede YAML so pasted rows and table
// lines are not mistaken for keys.
func Default() *source.Pipeline {
	return source.NewPipeline(
		NewXLSXParser(),
		NewDelimitedParser(),
		NewMarkdownParser(),
		NewYAMLParser(),
	)
}
