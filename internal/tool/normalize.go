// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/record"
)

// MetadataNormalizeReadings describes the normalize_readings tool.
var MetadataNormalizeReadings = &mcp.Tool{
	Name: "normalize_readings",
	Description: "Validate and normalize one set of flotation plant sensor readings. " +
		"Commas are accepted as decimal separators and every value is rounded to 3 decimal places. " +
		"Readings that are missing or contain \"n/f\" are reported as missing; readings that are not numbers " +
		"are reported as malformed and annotated with \" (n/f)\" in the returned values. " +
		"The normalized readings become the server's current readings.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"readings": readingsSchema,
		},
	},
}

// InputNormalizeReadings is the input for the NormalizeReadings tool.
type InputNormalizeReadings struct {
	Readings map[string]interface{} `json:"readings,omitempty"`
}

// OutputNormalizeReadings is the output for the NormalizeReadings tool.
type OutputNormalizeReadings struct {
	// Values lists all 23 fields in canonical order.
	Values []record.Entry `json:"values"`
	// Status is the one-line outcome shown to the operator.
	Status string `json:"status"`
	// Valid reports whether every input field held a finite number.
	Valid bool `json:"valid"`
	// Issues lists the rejected fields in canonical order.
	Issues []record.FieldIssue `json:"issues,omitempty"`
}

// NormalizeReadings formats the readings. A rejected record is a regular
// result carrying the issues, not a tool error.
func (h *Handlers) NormalizeReadings(_ context.Context, _ *mcp.CallToolRequest, input InputNormalizeReadings) (*mcp.CallToolResult, OutputNormalizeReadings, error) {
	log := h.log.With("tool", MetadataNormalizeReadings.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	current, err := h.stateFor(input.Readings)
	if err != nil {
		return nil, OutputNormalizeReadings{}, err
	}

	next, _, err := current.Format()
	h.state = next

	out := OutputNormalizeReadings{Values: next.Entries(), Status: next.Status.String(), Valid: err == nil}
	var report *record.RejectionReport
	if errors.As(err, &report) {
		out.Issues = report.Issues
		log.Info("readings rejected", "fields", report.Fields())
		return nil, out, nil
	}
	if err != nil {
		return nil, OutputNormalizeReadings{}, err
	}
	log.Debug("readings normalized")
	return nil, out, nil
}
