// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/oreflot/flotation-mcp/internal/form"
	"github.com/oreflot/flotation-mcp/internal/logger"
	"github.com/oreflot/flotation-mcp/internal/predict"
	"github.com/oreflot/flotation-mcp/internal/record"
	"github.com/oreflot/flotation-mcp/internal/sheet"
	"github.com/oreflot/flotation-mcp/internal/source"
)

// Handlers serves the readings tools over one shared form, the MCP
// counterpart of the operator's window. Calls are serialized.
type Handlers struct {
	predictor predict.Predictor
	pipeline  *source.Pipeline
	library   sheet.Library
	exportDir string
	log       logger.Logger
	now       func() time.Time

	mu    sync.Mutex
	state form.State
}

// Options wires the handlers to their collaborators.
type Options struct {
	Predictor predict.Predictor
	Pipeline  *source.Pipeline
	Library   sheet.Library
	// ExportDir receives result workbooks; usually the download directory.
	ExportDir string
	Logger    logger.Logger
	// Now stamps export file names. Defaults to time.Now.
	Now func() time.Time
}

func NewHandlers(opts Options) *Handlers {
	log := opts.Logger
	if log == nil {
		log = logger.NewLogger(nil)
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Handlers{
		predictor: opts.Predictor,
		pipeline:  opts.Pipeline,
		library:   opts.Library,
		exportDir: opts.ExportDir,
		log:       log,
		now:       now,
		state:     form.New(),
	}
}

// Register adds every readings tool to server.
func Register(server *mcp.Server, h *Handlers) {
	mcp.AddTool(server, MetadataNormalizeReadings, h.NormalizeReadings)
	mcp.AddTool(server, MetadataComputeConcentrates, h.ComputeConcentrates)
	mcp.AddTool(server, MetadataResetReadings, h.ResetReadings)
	mcp.AddTool(server, MetadataImportReadings, h.ImportReadings)
	mcp.AddTool(server, MetadataExportReadings, h.ExportReadings)
	mcp.AddTool(server, MetadataDownloadReferenceFile, h.DownloadReferenceFile)
}

// State returns the current form.
func (h *Handlers) State() form.State {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// readingsSchema describes a field-name to value object. Values may be
// strings or numbers.
var readingsSchema = map[string]interface{}{
	"type": "object",
	"description": "Sensor readings keyed by field name, e.g. {\"% Iron Feed\": \"55.2\", \"Starch Flow\": 3019.53}. " +
		"Use \"n/f\" or an empty string for a reading that is not available. " +
		"If omitted, the readings currently held by the server are used.",
	"additionalProperties": map[string]interface{}{
		"type": []string{"string", "number", "null"},
	},
}

// stateFor returns the form to operate on: the supplied readings, or the
// current form when none are given. Callers hold h.mu.
func (h *Handlers) stateFor(readings map[string]interface{}) (form.State, error) {
	if readings == nil {
		return h.state, nil
	}
	rec := make(record.RawRecord, len(readings))
	for name, v := range readings {
		rec[name] = readingString(v)
	}
	s, err := form.FromRecord(rec)
	if err != nil {
		return form.State{}, fmt.Errorf("invalid readings: %w", err)
	}
	return s, nil
}

func readingString(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
