// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/form"
	"github.com/oreflot/flotation-mcp/internal/record"
	"github.com/oreflot/flotation-mcp/internal/source"
)

// MetadataImportReadings describes the import_readings tool.
var MetadataImportReadings = &mcp.Tool{
	Name: "import_readings",
	Description: "Replace the server's current readings with readings read from a file. " +
		"Supported formats: xlsx (header row and value row, columns A to W), " +
		"delimited (rows pasted from a spreadsheet, tab or semicolon separated; comma separated with format csv), " +
		"markdown (a shift report with a field/value table or \"- field: value\" list), " +
		"yaml or json (field name to value). " +
		"Pass either a path on the server host or the content itself; binary content such as xlsx must be base64 encoded. " +
		"Only the 21 input readings are imported; the concentrates are always computed.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"path": map[string]interface{}{
				"type":        "string",
				"description": "Path of the readings file on the server host. Takes precedence over content.",
			},
			"content": map[string]interface{}{
				"type":        "string",
				"description": "Raw content of the readings file",
			},
			"encoding": map[string]interface{}{
				"type":        "string",
				"description": "Encoding of content. Defaults to text.",
				"enum":        []string{"text", "base64"},
			},
			"format": map[string]interface{}{
				"type":        "string",
				"description": "Format hint for content. If omitted, auto-detection is used.",
				"enum":        []string{"xlsx", "delimited", "csv", "markdown", "yaml", "json"},
			},
			"source_id": map[string]interface{}{
				"type":        "string",
				"description": "Optional identifier for the content (file name, URL, etc.) used in log messages.",
			},
		},
	},
}

// InputImportReadings is the input for the ImportReadings tool.
type InputImportReadings struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
	Format   string `json:"format"`
	SourceID string `json:"source_id"`
}

// OutputImportReadings is the output for the ImportReadings tool.
type OutputImportReadings struct {
	// Values lists all 23 fields in canonical order.
	Values []record.Entry `json:"values"`
	// Status is the one-line outcome shown to the operator.
	Status string `json:"status"`
	// ParserUsed is the name of the parser that was selected.
	ParserUsed string `json:"parser_used"`
	// TotalCells is the number of cells read before mapping.
	TotalCells int `json:"total_cells"`
	// Ignored lists the headers of cells that matched no field.
	Ignored []string `json:"ignored,omitempty"`
}

func (h *Handlers) ImportReadings(ctx context.Context, _ *mcp.CallToolRequest, input InputImportReadings) (*mcp.CallToolResult, OutputImportReadings, error) {
	log := h.log.With("tool", MetadataImportReadings.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	var (
		next   form.State
		result source.RunResult
		err    error
	)
	if input.Path == "" && input.Content != "" {
		src, decodeErr := sourceFromInput(input)
		if decodeErr != nil {
			return nil, OutputImportReadings{}, decodeErr
		}
		next, result, err = h.state.ImportSource(ctx, h.pipeline, src)
	} else {
		// An empty path fails as a file that was not selected.
		next, result, err = h.state.Import(ctx, h.pipeline, input.Path)
	}
	h.state = next
	if err != nil {
		log.Warn("import failed", "error", err)
		return nil, OutputImportReadings{}, fmt.Errorf("%s: %w", next.Status.Text, err)
	}

	log.Info("readings imported", "parser", result.ParserUsed, "cells", result.CellCount, "ignored", len(result.Ignored))
	return nil, OutputImportReadings{
		Values:     next.Entries(),
		Status:     next.Status.String(),
		ParserUsed: result.ParserUsed,
		TotalCells: result.CellCount,
		Ignored:    result.Ignored,
	}, nil
}

func sourceFromInput(input InputImportReadings) (source.Source, error) {
	sourceID := input.SourceID
	if sourceID == "" {
		sourceID = "unknown"
	}

	content := []byte(input.Content)
	switch input.Encoding {
	case "", "text":
	case "base64":
		decoded, err := base64.StdEncoding.DecodeString(input.Content)
		if err != nil {
			return source.Source{}, fmt.Errorf("failed to decode base64 content: %w", err)
		}
		content = decoded
	default:
		return source.Source{}, fmt.Errorf("unsupported encoding %q", input.Encoding)
	}

	return source.Source{Content: content, Format: input.Format, ID: sourceID}, nil
}
