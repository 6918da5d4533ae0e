// SPDX-License-Identifier: Apache-2.0

package tool

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oreflot/flotation-mcp/internal/form"
	"github.com/oreflot/flotation-mcp/internal/logger"
	"github.com/oreflot/flotation-mcp/internal/predict"
	"github.com/oreflot/flotation-mcp/internal/record"
	"github.com/oreflot/flotation-mcp/internal/sheet"
	"github.com/oreflot/flotation-mcp/internal/source/parsers"
)

var testNow = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func newTestHandlers(t *testing.T, p predict.Predictor) (*Handlers, string) {
	t.Helper()
	root := t.TempDir()
	downloads := filepath.Join(root, "downloads")
	if p == nil {
		p = predict.PredictorFunc(func(context.Context, []float64) ([]float64, error) {
			return []float64{64.5, 2.25}, nil
		})
	}
	h := NewHandlers(Options{
		Predictor: p,
		Pipeline:  parsers.Default(),
		Library:   sheet.Library{DataDir: filepath.Join(root, "data"), DownloadDir: downloads},
		ExportDir: downloads,
		Logger:    logger.NewLogger(logger.TestConfig()),
		Now:       func() time.Time { return testNow },
	})
	return h, downloads
}

func exampleReadings() map[string]interface{} {
	out := make(map[string]interface{})
	for name, value := range record.ExampleInputs() {
		out[name] = value
	}
	return out
}

func valueOf(entries []record.Entry, name string) string {
	for _, e := range entries {
		if e.Name == name {
			return e.Value
		}
	}
	return ""
}

func TestNormalizeReadings(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name           string
		readings       func() map[string]interface{}
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputNormalizeReadings)
	}{
		{
			name:     "example readings are normalized",
			readings: exampleReadings,
			validateOutput: func(t *testing.T, output OutputNormalizeReadings) {
				assert.True(t, output.Valid)
				assert.Empty(t, output.Issues)
				require.Len(t, output.Values, record.FieldCount)
				assert.Equal(t, "10.066", valueOf(output.Values, record.OrePulpPH))
				assert.Equal(t, "SUCCESS: Data formatted.", output.Status)
			},
		},
		{
			name: "numbers and decimal commas are accepted",
			readings: func() map[string]interface{} {
				r := exampleReadings()
				r[record.StarchFlow] = "3019,5349"
				r[record.AminaFlow] = 557.4344
				return r
			},
			validateOutput: func(t *testing.T, output OutputNormalizeReadings) {
				assert.True(t, output.Valid)
				assert.Equal(t, "3019.535", valueOf(output.Values, record.StarchFlow))
				assert.Equal(t, "557.434", valueOf(output.Values, record.AminaFlow))
			},
		},
		{
			name: "rejected readings are reported, not failed",
			readings: func() map[string]interface{} {
				r := exampleReadings()
				r[record.IronFeed] = "n/f"
				r[record.OrePulpFlow] = "abc"
				delete(r, record.SilicaFeed)
				return r
			},
			validateOutput: func(t *testing.T, output OutputNormalizeReadings) {
				assert.False(t, output.Valid)
				require.Len(t, output.Issues, 3)
				assert.Equal(t, record.IronFeed, output.Issues[0].Field)
				assert.Equal(t, record.ReasonMissing, output.Issues[0].Reason)
				assert.Equal(t, record.SilicaFeed, output.Issues[1].Field)
				assert.Equal(t, record.OrePulpFlow, output.Issues[2].Field)
				assert.Equal(t, record.ReasonMalformed, output.Issues[2].Reason)
				assert.Equal(t, "abc (n/f)", valueOf(output.Values, record.OrePulpFlow))
				assert.True(t, strings.HasPrefix(output.Status, "ERROR: Data not formatted or skipped"))
			},
		},
		{
			name: "unknown field returns error",
			readings: func() map[string]interface{} {
				return map[string]interface{}{"Temperature": "20"}
			},
			wantErr:     true,
			errContains: "invalid readings",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t, nil)
			_, output, err := h.NormalizeReadings(ctx, req, InputNormalizeReadings{Readings: tt.readings()})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestNormalizeReadings_UsesCurrentReadings(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t, nil)

	_, first, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{Readings: map[string]interface{}{record.OrePulpFlow: "abc"}})
	require.NoError(t, err)
	require.False(t, first.Valid)

	// The annotated value now counts as missing.
	_, second, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{})
	require.NoError(t, err)
	assert.NotContains(t, (&record.RejectionReport{Issues: second.Issues}).Malformed(), record.OrePulpFlow)
	assert.Contains(t, (&record.RejectionReport{Issues: second.Issues}).Missing(), record.OrePulpFlow)
}

func TestComputeConcentrates(t *testing.T) {
	ctx := context.Background()

	t.Run("fills the concentrates", func(t *testing.T) {
		h, _ := newTestHandlers(t, nil)
		_, output, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
		require.NoError(t, err)
		assert.Equal(t, 64.5, output.IronConcentrate)
		assert.Equal(t, 2.25, output.SilicaConcentrate)
		assert.Equal(t, "64.5", valueOf(output.Values, record.IronConcentrate))
		assert.Equal(t, "2.25", valueOf(output.Values, record.SilicaConcentrate))
		assert.Equal(t, "SUCCESS: Computation complete.", output.Status)
		assert.Equal(t, "64.5", h.State().Values[record.IronConcentrate])
	})

	t.Run("rejection fails without calling the model", func(t *testing.T) {
		calls := 0
		h, _ := newTestHandlers(t, predict.PredictorFunc(func(context.Context, []float64) ([]float64, error) {
			calls++
			return []float64{1, 2}, nil
		}))
		readings := exampleReadings()
		readings["Flotation Column 07 Level"] = ""
		_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: readings})
		require.Error(t, err)
		assert.ErrorIs(t, err, record.ErrMissingField)
		assert.Contains(t, err.Error(), "Flotation Column 07 Level")
		assert.Zero(t, calls)
		assert.True(t, h.State().Status.Err)
	})

	t.Run("invalid model output", func(t *testing.T) {
		h, _ := newTestHandlers(t, predict.PredictorFunc(func(context.Context, []float64) ([]float64, error) {
			return []float64{1}, nil
		}))
		_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
		require.ErrorIs(t, err, predict.ErrInvalidOutput)
		assert.Contains(t, err.Error(), "Got incorrect data")
	})

	t.Run("default model", func(t *testing.T) {
		model, err := predict.DefaultModel()
		require.NoError(t, err)
		h, _ := newTestHandlers(t, model)
		_, output, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
		require.NoError(t, err)
		assert.InDelta(t, 64.732, output.IronConcentrate, 0.001)
		assert.InDelta(t, 2.542, output.SilicaConcentrate, 0.001)
	})
}

func TestResetReadings(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t, nil)

	_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
	require.NoError(t, err)

	_, output, err := h.ResetReadings(ctx, nil, InputResetReadings{})
	require.NoError(t, err)
	require.Len(t, output.Values, record.FieldCount)
	for _, e := range output.Values {
		assert.Empty(t, e.Value, e.Name)
	}
	assert.Equal(t, "SUCCESS: Data reset.", output.Status)

	_, normalized, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{})
	require.NoError(t, err)
	assert.False(t, normalized.Valid)
	assert.Len(t, normalized.Issues, record.InputCount)
}

func TestImportReadings(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	root := t.TempDir()
	lib := sheet.Library{DataDir: filepath.Join(root, "data"), DownloadDir: filepath.Join(root, "dl")}
	examplePath, err := lib.Fetch(ctx, sheet.KindExample)
	require.NoError(t, err)
	exampleBytes, err := os.ReadFile(examplePath)
	require.NoError(t, err)

	tests := []struct {
		name           string
		input          InputImportReadings
		wantErr        bool
		errContains    string
		validateOutput func(t *testing.T, output OutputImportReadings)
	}{
		{
			name:        "nothing to import returns error",
			input:       InputImportReadings{},
			wantErr:     true,
			errContains: "File not selected or corrupted",
		},
		{
			name:  "xlsx file by path",
			input: InputImportReadings{Path: examplePath},
			validateOutput: func(t *testing.T, output OutputImportReadings) {
				assert.Equal(t, "xlsx", output.ParserUsed)
				assert.Equal(t, record.FieldCount, output.TotalCells)
				assert.Equal(t, "55.2", valueOf(output.Values, record.IronFeed))
				assert.Empty(t, valueOf(output.Values, record.IronConcentrate), "concentrates are not imported")
				assert.Equal(t, "SUCCESS: Data filled from xlsx file.", output.Status)
			},
		},
		{
			name: "base64 xlsx content",
			input: InputImportReadings{
				Content:  base64.StdEncoding.EncodeToString(exampleBytes),
				Encoding: "base64",
				SourceID: "example.xlsx",
			},
			validateOutput: func(t *testing.T, output OutputImportReadings) {
				assert.Equal(t, "xlsx", output.ParserUsed)
				assert.Equal(t, "10.0664", valueOf(output.Values, record.OrePulpPH))
			},
		},
		{
			name: "json content",
			input: InputImportReadings{
				Content: `{"Starch Flow": "3019,53", "Amina Flow": 557.434, "Shift": "night"}`,
				Format:  "json",
			},
			validateOutput: func(t *testing.T, output OutputImportReadings) {
				assert.Equal(t, "yaml", output.ParserUsed)
				assert.Equal(t, []string{"Shift"}, output.Ignored)
				assert.Equal(t, "3019,53", valueOf(output.Values, record.StarchFlow))
				assert.Equal(t, "557.434", valueOf(output.Values, record.AminaFlow))
			},
		},
		{
			name: "markdown report",
			input: InputImportReadings{
				Content:  "# Shift 3\n\n| Field | Value |\n|---|---|\n| Ore Pulp pH | 10,07 |\n",
				SourceID: "shift3.md",
			},
			validateOutput: func(t *testing.T, output OutputImportReadings) {
				assert.Equal(t, "markdown", output.ParserUsed)
				assert.Equal(t, 1, output.TotalCells)
				assert.Equal(t, "10,07", valueOf(output.Values, record.OrePulpPH))
			},
		},
		{
			name:        "bad base64 returns error",
			input:       InputImportReadings{Content: "%%%", Encoding: "base64"},
			wantErr:     true,
			errContains: "failed to decode base64 content",
		},
		{
			name:        "unknown encoding returns error",
			input:       InputImportReadings{Content: "a", Encoding: "hex"},
			wantErr:     true,
			errContains: "unsupported encoding",
		},
		{
			name:        "missing file returns error",
			input:       InputImportReadings{Path: filepath.Join(root, "nope.xlsx")},
			wantErr:     true,
			errContains: "File not selected or corrupted",
		},
		{
			name:        "unrecognized content returns error",
			input:       InputImportReadings{Content: "just some words"},
			wantErr:     true,
			errContains: "unsupported readings format",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandlers(t, nil)
			_, output, err := h.ImportReadings(ctx, req, tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			if tt.validateOutput != nil {
				tt.validateOutput(t, output)
			}
		})
	}
}

func TestImportReadings_FailureKeepsReadings(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t, nil)

	_, _, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{Readings: exampleReadings()})
	require.NoError(t, err)

	_, _, err = h.ImportReadings(ctx, nil, InputImportReadings{Path: filepath.Join(t.TempDir(), "missing.xlsx")})
	require.ErrorIs(t, err, sheet.ErrFileUnreadable)

	state := h.State()
	assert.Equal(t, "55.2", state.Values[record.IronFeed])
	assert.Equal(t, "ERROR: File not selected or corrupted.", state.Status.String())
}

func TestImportReadings_NothingSelected(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t, nil)

	_, _, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{Readings: exampleReadings()})
	require.NoError(t, err)

	_, _, err = h.ImportReadings(ctx, nil, InputImportReadings{})
	require.ErrorIs(t, err, sheet.ErrFileNotSelected)

	state := h.State()
	assert.Equal(t, "55.2", state.Values[record.IronFeed])
	assert.Equal(t, "ERROR: File not selected or corrupted.", state.Status.String())
}

func TestReadings_DerivedFieldsAreReadOnly(t *testing.T) {
	ctx := context.Background()

	withConcentrate := func() map[string]interface{} {
		r := exampleReadings()
		r[record.IronConcentrate] = "99.999"
		return r
	}

	t.Run("normalize", func(t *testing.T) {
		h, _ := newTestHandlers(t, nil)
		_, _, err := h.NormalizeReadings(ctx, nil, InputNormalizeReadings{Readings: withConcentrate()})
		require.ErrorIs(t, err, form.ErrReadOnly)
		assert.Empty(t, h.State().Values[record.IronConcentrate])
	})

	t.Run("compute", func(t *testing.T) {
		h, _ := newTestHandlers(t, nil)
		_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: withConcentrate()})
		require.ErrorIs(t, err, form.ErrReadOnly)
		assert.Empty(t, h.State().Values[record.IronConcentrate])
	})

	t.Run("export", func(t *testing.T) {
		h, downloads := newTestHandlers(t, nil)
		_, _, err := h.ExportReadings(ctx, nil, InputExportReadings{
			Readings: map[string]interface{}{record.SilicaConcentrate: 0.5},
		})
		require.ErrorIs(t, err, form.ErrReadOnly)
		assert.NoDirExists(t, downloads, "nothing is written")
	})

	t.Run("computed values still export", func(t *testing.T) {
		h, _ := newTestHandlers(t, nil)
		_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
		require.NoError(t, err)
		_, output, err := h.ExportReadings(ctx, nil, InputExportReadings{})
		require.NoError(t, err)
		assert.Equal(t, "64.5", valueOf(output.Values, record.IronConcentrate))
	})
}

func TestExportReadings(t *testing.T) {
	ctx := context.Background()
	h, downloads := newTestHandlers(t, nil)

	_, _, err := h.ComputeConcentrates(ctx, nil, InputComputeConcentrates{Readings: exampleReadings()})
	require.NoError(t, err)

	_, output, err := h.ExportReadings(ctx, nil, InputExportReadings{})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(downloads, "result_05032024_140709.xlsx"), output.Path)
	assert.Equal(t, "SUCCESS: File 'result_05032024_140709.xlsx' downloaded.", output.Status)

	f, err := os.Open(output.Path)
	require.NoError(t, err)
	defer f.Close()
	rows, err := sheet.ReadRows(f)
	require.NoError(t, err)
	assert.Equal(t, record.Names(), rows.Header)
	assert.Equal(t, "64.5", rows.Values[record.FieldCount-2])
	assert.Equal(t, "2.25", rows.Values[record.FieldCount-1])
}

func TestExportReadings_WriteFailure(t *testing.T) {
	ctx := context.Background()
	h, downloads := newTestHandlers(t, nil)
	// A file where the directory should be.
	require.NoError(t, os.WriteFile(downloads, []byte("x"), 0o644))

	_, _, err := h.ExportReadings(ctx, nil, InputExportReadings{Readings: exampleReadings()})
	require.ErrorIs(t, err, sheet.ErrFileWriteFailure)
	assert.Contains(t, err.Error(), "File could not be saved")
}

func TestDownloadReferenceFile(t *testing.T) {
	ctx := context.Background()
	req := &mcp.CallToolRequest{}

	tests := []struct {
		name        string
		kind        string
		wantErr     bool
		errContains string
		wantFile    string
	}{
		{name: "template", kind: "template", wantFile: "template.xlsx"},
		{name: "example", kind: "example", wantFile: "example.xlsx"},
		{name: "unknown kind returns error", kind: "manual", wantErr: true, errContains: "unknown reference file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, downloads := newTestHandlers(t, nil)
			_, output, err := h.DownloadReferenceFile(ctx, req, InputDownloadReferenceFile{Kind: tt.kind})
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(downloads, tt.wantFile), output.Path)
			assert.FileExists(t, output.Path)
			assert.Equal(t, "SUCCESS: File '"+tt.wantFile+"' downloaded.", output.Status)
		})
	}
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	h, _ := newTestHandlers(t, nil)

	server := mcp.NewServer(&mcp.Implementation{Name: "flotation-mcp", Version: "test"}, nil)
	Register(server, h)

	clientTransport, serverTransport := mcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	defer serverSession.Close()

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "test"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	defer session.Close()

	tools, err := session.ListTools(ctx, &mcp.ListToolsParams{})
	require.NoError(t, err)
	var names []string
	for _, tool := range tools.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{
		"normalize_readings",
		"compute_concentrates",
		"reset_readings",
		"import_readings",
		"export_readings",
		"download_reference_file",
	}, names)

	result, err := session.CallTool(ctx, &mcp.CallToolParams{
		Name:      "compute_concentrates",
		Arguments: map[string]interface{}{"readings": exampleReadings()},
	})
	require.NoError(t, err)
	assert.False(t, result.IsError)
	assert.Equal(t, "64.5", h.State().Values[record.IronConcentrate])
}
