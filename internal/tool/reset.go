// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/record"
)

// MetadataResetReadings describes the reset_readings tool.
var MetadataResetReadings = &mcp.Tool{
	Name:        "reset_readings",
	Description: "Clear all 23 fields of the server's current readings, computed concentrates included.",
	InputSchema: map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	},
}

// InputResetReadings is the input for the ResetReadings tool.
type InputResetReadings struct{}

// OutputResetReadings is the output for the ResetReadings tool.
type OutputResetReadings struct {
	Values []record.Entry `json:"values"`
	Status string         `json:"status"`
}

func (h *Handlers) ResetReadings(_ context.Context, _ *mcp.CallToolRequest, _ InputResetReadings) (*mcp.CallToolResult, OutputResetReadings, error) {
	log := h.log.With("tool", MetadataResetReadings.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	h.state = h.state.Reset()
	log.Debug("readings reset")
	return nil, OutputResetReadings{Values: h.state.Entries(), Status: h.state.Status.String()}, nil
}
