package live

import (
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// tableStyles returns table styles for the UI.
func tableStyles(noColor bool) table.Styles {
	if noColor {
		return table.DefaultStyles()
	}
	styles := table.DefaultStyles()
	styles.Header = styles.Header.Foreground(lipgloss.Color("252"))
	return styles
}

// defaultColumns returns the table columns at a comfortable width.
func defaultColumns() []table.Column {
	return []table.Column{
		{Title: "Technique", Width: 12},
		{Title: "Status", Width: 9},
		{Title: "Progress", Width: 16},
		{Title: "Accuracy", Width: 9},
		{Title: "Failed", Width: 7},
		{Title: "Latency", Width: 9},
		{Title: "Elapsed", Width: 9},
		{Title: "Last", Width: 10},
	}
}

// columnsForWidth drops trailing columns that do not fit the terminal.
func columnsForWidth(width int) []table.Column {
	columns := defaultColumns()
	used := 0
	for i, column := range columns {
		used += column.Width + 2
		if width > 0 && used > width && i > 2 {
			return columns[:i]
		}
	}
	return columns
}

// rowsForState converts UI state into table rows.
func rowsForState(state State, now time.Time, noColor bool) []table.Row {
	rows := make([]table.Row, 0, len(state.Rows))
	for _, row := range state.Rows {
		rows = append(rows, table.Row{
			row.Name,
			stylizeStatus(string(row.Status), row.Status, noColor),
			formatProgress(row),
			formatAccuracy(row),
			formatFailures(row.Failed),
			formatLatency(row),
			formatRowDuration(row, now),
			row.LastItem,
		})
	}
	return rows
}
