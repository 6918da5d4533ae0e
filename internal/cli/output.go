// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/oreflot/flotation-mcp/internal/form"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")).Bold(true)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
)

// printReadings prints the form as a field/value table followed by its
// status line.
func printReadings(w io.Writer, s form.State) {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("Field", "Value").
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	for _, e := range s.Entries() {
		t.Row(e.Name, e.Value)
	}
	fmt.Fprintln(w, t.Render())
	printStatus(w, s.Status)
}

func printStatus(w io.Writer, status form.Status) {
	if status.Text == "" {
		return
	}
	style := successStyle
	if status.Err {
		style = errorStyle
	}
	fmt.Fprintln(w, style.Render(status.String()))
}
