// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/record"
)

// MetadataExportReadings describes the export_readings tool.
var MetadataExportReadings = &mcp.Tool{
	Name: "export_readings",
	Description: "Save readings as a one-row \"Result\" workbook named result_<DDMMYYYY>_<HHMMSS>.xlsx " +
		"in the server's download directory. All 23 fields are written as shown, computed concentrates included. " +
		"If readings are omitted, the server's current readings are saved.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"readings": readingsSchema,
		},
	},
}

// InputExportReadings is the input for the ExportReadings tool.
type InputExportReadings struct {
	Readings map[string]interface{} `json:"readings,omitempty"`
}

// OutputExportReadings is the output for the ExportReadings tool.
type OutputExportReadings struct {
	// Values lists all 23 fields in canonical order.
	Values []record.Entry `json:"values"`
	// Status is the one-line outcome shown to the operator.
	Status string `json:"status"`
	// Path is where the workbook was written.
	Path string `json:"path"`
}

func (h *Handlers) ExportReadings(_ context.Context, _ *mcp.CallToolRequest, input InputExportReadings) (*mcp.CallToolResult, OutputExportReadings, error) {
	log := h.log.With("tool", MetadataExportReadings.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	current, err := h.stateFor(input.Readings)
	if err != nil {
		return nil, OutputExportReadings{}, err
	}

	next, path, err := current.Export(h.exportDir, h.now())
	h.state = next
	if err != nil {
		log.Error("export failed", "dir", h.exportDir, "error", err)
		return nil, OutputExportReadings{}, fmt.Errorf("%s: %w", next.Status.Text, err)
	}

	log.Info("readings exported", "path", path)
	return nil, OutputExportReadings{Values: next.Entries(), Status: next.Status.String(), Path: path}, nil
}
