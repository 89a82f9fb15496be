package utils

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/maxkimambo/taskboard/internal/api"
	"github.com/maxkimambo/taskboard/internal/validation"
)

// TableFormatter helps create formatted tables for CLI output
type TableFormatter struct {
	headers []string
	rows    [][]string
	widths  []int
}

// NewTableFormatter creates a new table formatter with headers
func NewTableFormatter(headers []string) *TableFormatter {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	return &TableFormatter{
		headers: headers,
		widths:  widths,
	}
}

// AddRow adds a row to the table. Rows with the wrong number of cells are ignored.
func (t *TableFormatter) AddRow(row []string) {
	if len(row) != len(t.headers) {
		return
	}
	t.rows = append(t.rows, row)
	for i, cell := range row {
		// Width of what is displayed, ignoring escape sequences
		if w := lipgloss.Width(cell); w > t.widths[i] {
			t.widths[i] = w
		}
	}
}

// Len returns the number of rows.
func (t *TableFormatter) Len() int {
	return len(t.rows)
}

// String returns the formatted table
func (t *TableFormatter) String() string {
	var sb strings.Builder

	t.writeBorder(&sb, "┌", "┬", "┐")
	t.writeRow(&sb, t.headers)
	t.writeBorder(&sb, "├", "┼", "┤")
	for _, row := range t.rows {
		t.writeRow(&sb, row)
	}
	t.writeBorder(&sb, "└", "┴", "┘")

	return sb.String()
}

func (t *TableFormatter) writeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("│")
	for i, cell := range cells {
		sb.WriteString(" ")
		sb.WriteString(cell)
		sb.WriteString(strings.Repeat(" ", t.widths[i]-lipgloss.Width(cell)))
		sb.WriteString(" │")
	}
	sb.WriteString("\n")
}

func (t *TableFormatter) writeBorder(sb *strings.Builder, left, middle, right string) {
	sb.WriteString(left)
	for i, w := range t.widths {
		sb.WriteString(strings.Repeat("─", w+2))
		if i < len(t.widths)-1 {
			sb.WriteString(middle)
		}
	}
	sb.WriteString(right)
	sb.WriteString("\n")
}

// TaskTable lays tasks out with the 1-based numbers the CLI accepts. Tasks
// rejected by filter are left out but keep their numbers.
func TaskTable(tasks []api.Task, filter StatusFilter) *TableFormatter {
	table := NewTableFormatter([]string{"#", "Status", "Title"})
	for i, task := range tasks {
		if !filter.Matches(task) {
			continue
		}
		status := "pending"
		if task.Done {
			status = "done"
		}
		table.AddRow([]string{strconv.Itoa(validation.DisplayNumber(i)), status, task.Title})
	}
	return table
}
