// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/record"
)

// MetadataComputeConcentrates describes the compute_concentrates tool.
var MetadataComputeConcentrates = &mcp.Tool{
	Name: "compute_concentrates",
	Description: "Normalize the readings, then predict \"% Iron Concentrate\" and \"% Silica Concentrate\" " +
		"from the 21 input readings with the plant's prediction model. " +
		"Fails when any input reading is missing or not a number; the failure names the offending fields. " +
		"The readings with the computed concentrates become the server's current readings.",
	InputSchema: map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"readings": readingsSchema,
		},
	},
}

// InputComputeConcentrates is the input for the ComputeConcentrates tool.
type InputComputeConcentrates struct {
	Readings map[string]interface{} `json:"readings,omitempty"`
}

// OutputComputeConcentrates is the output for the ComputeConcentrates tool.
type OutputComputeConcentrates struct {
	// Values lists all 23 fields in canonical order.
	Values []record.Entry `json:"values"`
	// Status is the one-line outcome shown to the operator.
	Status            string  `json:"status"`
	IronConcentrate   float64 `json:"iron_concentrate"`
	SilicaConcentrate float64 `json:"silica_concentrate"`
}

// ComputeConcentrates runs Calculate on the form.
func (h *Handlers) ComputeConcentrates(ctx context.Context, _ *mcp.CallToolRequest, input InputComputeConcentrates) (*mcp.CallToolResult, OutputComputeConcentrates, error) {
	log := h.log.With("tool", MetadataComputeConcentrates.Name)
	h.mu.Lock()
	defer h.mu.Unlock()

	current, err := h.stateFor(input.Readings)
	if err != nil {
		return nil, OutputComputeConcentrates{}, err
	}

	next, c, err := current.Calculate(ctx, h.predictor)
	h.state = next
	if err != nil {
		log.Warn("computation failed", "error", err)
		return nil, OutputComputeConcentrates{}, fmt.Errorf("%s: %w", next.Status.Text, err)
	}

	log.Info("concentrates computed", "iron", c.Iron, "silica", c.Silica)
	return nil, OutputComputeConcentrates{
		Values:            next.Entries(),
		Status:            next.Status.String(),
		IronConcentrate:   c.Iron,
		SilicaConcentrate: c.Silica,
	}, nil
}
