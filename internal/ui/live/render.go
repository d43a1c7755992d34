package live

import (
	"time"

	"github.com/charmbracelet/lipgloss"
)

// renderHeader renders the run header line.
func renderHeader(state State, now time.Time, noColor bool) string {
	line := "Run " + state.RunID
	if state.Model != "" {
		line += " | Model: " + state.Model
	}
	if !state.StartedAt.IsZero() {
		end := now
		if state.Finished && !state.FinishedAt.IsZero() {
			end = state.FinishedAt
		}
		line += " | Elapsed: " + formatDuration(end.Sub(state.StartedAt))
	}
	return stylize(line, noColor, lipgloss.Color("33"))
}

// renderSummary renders the totals line.
func renderSummary(state State, noColor bool) string {
	done, total, correct, failed := state.Totals()
	line := "Trials: " + fmtInt(done) + "/" + fmtInt(total) +
		" Correct: " + fmtInt(correct) +
		" Failed: " + fmtInt(failed)
	return stylize(line, noColor, lipgloss.Color("242"))
}

// renderFooter renders the last event line.
func renderFooter(state State, noColor bool) string {
	if state.LastEvent == "" {
		return ""
	}
	return stylize("Last event: "+state.LastEvent, noColor, lipgloss.Color("244"))
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
