// SPDX-License-Identifier: Apache-2.0

package form

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oreflot/flotation-mcp/internal/predict"
	"github.com/oreflot/flotation-mcp/internal/record"
	"github.com/oreflot/flotation-mcp/internal/sheet"
)

// Status is the single line shown to the operator after every action.
type Status struct {
	Err  bool   `json:"error"`
	Text string `json:"text"`
}

func success(format string, args ...any) Status {
	return Status{Text: fmt.Sprintf(format, args...)}
}

func (s Status) String() string {
	if s.Text == "" {
		return ""
	}
	if s.Err {
		return "ERROR: " + s.Text + "."
	}
	return "SUCCESS: " + s.Text + "."
}

// StatusFor turns any error of the readings workflow into an operator
// message. Rejections name the offending fields.
func StatusFor(err error) Status {
	var report *record.RejectionReport
	switch {
	case errors.As(err, &report):
		var parts []string
		if names := report.Missing(); len(names) > 0 {
			parts = append(parts, "missing "+strings.Join(names, ", "))
		}
		if names := report.Malformed(); len(names) > 0 {
			parts = append(parts, "not a number "+strings.Join(names, ", "))
		}
		return Status{Err: true, Text: "Data not formatted or skipped (" + strings.Join(parts, "; ") + ")"}
	case errors.Is(err, predict.ErrSchemaMismatch), errors.Is(err, predict.ErrInvalidOutput):
		return Status{Err: true, Text: "Got incorrect data"}
	case errors.Is(err, sheet.ErrFileNotSelected), errors.Is(err, sheet.ErrFileUnreadable):
		return Status{Err: true, Text: "File not selected or corrupted"}
	case errors.Is(err, sheet.ErrFileWriteFailure):
		return Status{Err: true, Text: "File could not be saved"}
	case errors.Is(err, ErrReadOnly):
		return Status{Err: true, Text: "Field is computed automatically"}
	case errors.Is(err, record.ErrUnknownField):
		return Status{Err: true, Text: "Unknown field"}
	case err != nil:
		return Status{Err: true, Text: err.Error()}
	}
	return Status{}
}
