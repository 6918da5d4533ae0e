// SPDX-License-Identifier: Apache-2.0

// Package sheet reads and writes the two-row readings workbook: canonical
// headers in row 1, one reading in row 2, columns A through W.
package sheet

import (
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/oreflot/flotation-mcp/internal/record"
)

var (
	ErrFileNotSelected  = errors.New("file not selected")
	ErrFileUnreadable   = errors.New("file unreadable")
	ErrFileWriteFailure = errors.New("file write failure")
)

const (
	headerRow = 1
	valueRow  = 2
	// ResultTitle is the worksheet name of exported results.
	ResultTitle = "Result"
)

// Rows is the content of the first two worksheet rows, always
// record.FieldCount cells wide.
type Rows struct {
	Header []string
	Values []string
}

// ReadFile loads an import file chosen by the operator.
func ReadFile(path string) ([]byte, error) {
	if strings.TrimSpace(path) == "" {
		return nil, ErrFileNotSelected
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	return data, nil
}

// ReadRows reads rows 1 and 2 of the active worksheet. Cells are returned
// as stored, without number formatting.
func ReadRows(r io.Reader) (Rows, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Rows{}, fmt.Errorf("%w: %w", ErrFileUnreadable, err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	rows := Rows{
		Header: make([]string, record.FieldCount),
		Values: make([]string, record.FieldCount),
	}
	for col := 1; col <= record.FieldCount; col++ {
		if rows.Header[col-1], err = cellValue(f, name, col, headerRow); err != nil {
			return Rows{}, err
		}
		if rows.Values[col-1], err = cellValue(f, name, col, valueRow); err != nil {
			return Rows{}, err
		}
	}
	return rows, nil
}

func cellValue(f *excelize.File, sheet string, col, row int) (string, error) {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return "", err
	}
	v, err := f.GetCellValue(sheet, cell, excelize.Options{RawCellValue: true})
	if err != nil {
		return "", fmt.Errorf("%w: cell %s: %w", ErrFileUnreadable, cell, err)
	}
	return v, nil
}

// Write builds a workbook with a header row and an optional value row and
// saves it to path in one step. Empty values leave the cell empty; numbers
// are stored as numeric cells.
func Write(path, title string, header, values []string) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), title); err != nil {
		return fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	if err := setRow(f, title, headerRow, header); err != nil {
		return err
	}
	if err := setRow(f, title, valueRow, values); err != nil {
		return err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	if err := writeAtomic(path, buf.Bytes()); err != nil {
		return fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	return nil
}

func setRow(f *excelize.File, sheet string, row int, values []string) error {
	for i, v := range values {
		if v == "" {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
		}
		var value interface{} = v
		if n, err := strconv.ParseFloat(v, 64); err == nil && !math.IsNaN(n) && !math.IsInf(n, 0) {
			value = n
		}
		if err := f.SetCellValue(sheet, cell, value); err != nil {
			return fmt.Errorf("%w: cell %s: %w", ErrFileWriteFailure, cell, err)
		}
	}
	return nil
}

// ResultFileName names an export, e.g. result_20012024_134218.xlsx.
func ResultFileName(now time.Time) string {
	return "result_" + now.Format("02012006_150405") + ".xlsx"
}

// Export writes entries (headers and current values) to a timestamped file
// in dir and returns its path.
func Export(dir string, now time.Time, entries []record.Entry) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("%w: %w", ErrFileWriteFailure, err)
	}
	header := make([]string, len(entries))
	for i, e := range entries {
		header[i] = e.Name
	}
	path := filepath.Join(dir, ResultFileName(now))
	if err := Write(path, ResultTitle, header, record.Values(entries)); err != nil {
		return "", err
	}
	return path, nil
}

// writeAtomic replaces dest with data through a temp file in the same
// directory, so readers never observe a partial workbook.
func writeAtomic(dest string, data []byte) error {
	dir := filepath.Dir(dest)
	tmp, err := os.CreateTemp(dir, ".tmp-*.xlsx")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, dest); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
