// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/logger"
	"github.com/oreflot/flotation-mcp/internal/sheet"
)

// MetadataDownloadReferenceFile describes the download_reference_file tool.
var MetadataDownloadReferenceFile = &mcp.Tool{
	Name: "download_reference_file",
	Description: "Copy a reference workbook into the server's download directory. " +
		"\"template\" is the empty input sheet with the 23 field names; " +
		"\"example\" also carries one filled-in row of plant readings. " +
		"The current readings are left unchanged.",
	InputSchema: map[string]interface{}{
		"type":     "object",
		"required": []string{"kind"},
		"properties": map[string]interface{}{
			"kind": map[string]interface{}{
				"type":        "string",
				"description": "Which reference workbook to download.",
				"enum":        []string{string(sheet.KindTemplate), string(sheet.KindExample)},
			},
		},
	},
}

// InputDownloadReferenceFile is the input for the DownloadReferenceFile tool.
type InputDownloadReferenceFile struct {
	Kind string `json:"kind"`
}

// OutputDownloadReferenceFile is the output for the DownloadReferenceFile tool.
type OutputDownloadReferenceFile struct {
	// Path is where the workbook was copied.
	Path string `json:"path"`
	// Status is the one-line outcome shown to the operator.
	Status string `json:"status"`
}

func (h *Handlers) DownloadReferenceFile(ctx context.Context, _ *mcp.CallToolRequest, input InputDownloadReferenceFile) (*mcp.CallToolResult, OutputDownloadReferenceFile, error) {
	log := h.log.With("tool", MetadataDownloadReferenceFile.Name)
	kind, err := sheet.ParseKind(input.Kind)
	if err != nil {
		return nil, OutputDownloadReferenceFile{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next, path, err := h.state.Download(logger.ContextWithLogger(ctx, log), h.library, kind)
	h.state = next
	if err != nil {
		log.Error("download failed", "kind", kind, "error", err)
		return nil, OutputDownloadReferenceFile{}, fmt.Errorf("%s: %w", next.Status.Text, err)
	}

	log.Info("reference file downloaded", "kind", kind, "path", path)
	return nil, OutputDownloadReferenceFile{Path: path, Status: next.Status.String()}, nil
}
