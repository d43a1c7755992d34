package live

import (
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// fmtInt converts an int to string.
func fmtInt(value int) string {
	return strconv.Itoa(value)
}

// formatProgress renders done/total with a percentage.
func formatProgress(row TechniqueRow) string {
	if row.Total <= 0 {
		return fmtInt(row.Done)
	}
	return fmt.Sprintf("%d/%d (%d%%)", row.Done, row.Total, row.Done*100/row.Total)
}

// formatAccuracy renders the running or final accuracy.
func formatAccuracy(row TechniqueRow) string {
	if row.Done == 0 && !row.HasAccuracy {
		return ""
	}
	return fmt.Sprintf("%.1f%%", row.RunningAccuracy()*100)
}

// formatLatency renders the mean latency of successful calls.
func formatLatency(row TechniqueRow) string {
	if row.LatencyMs <= 0 {
		return "n/a"
	}
	return formatDuration(time.Duration(row.LatencyMs) * time.Millisecond)
}

// formatRowDuration returns elapsed or total time for a row.
func formatRowDuration(row TechniqueRow, now time.Time) string {
	if row.StartedAt.IsZero() {
		return ""
	}
	if row.Status == StatusDone && !row.FinishedAt.IsZero() {
		return formatDuration(row.FinishedAt.Sub(row.StartedAt))
	}
	return formatDuration(now.Sub(row.StartedAt))
}

// formatFailures renders the failed trial count.
func formatFailures(failed int) string {
	if failed <= 0 {
		return ""
	}
	return fmtInt(failed)
}

// stylizeStatus applies status coloring when enabled.
func stylizeStatus(text string, status TechniqueStatus, noColor bool) string {
	if noColor {
		return text
	}
	return statusStyle(status).Render(text)
}

// statusStyle selects a style for a given status.
func statusStyle(status TechniqueStatus) lipgloss.Style {
	color := lipgloss.Color("246")
	switch status {
	case StatusRunning:
		color = lipgloss.Color("33")
	case StatusDone:
		color = lipgloss.Color("42")
	}
	return lipgloss.NewStyle().Foreground(color)
}
