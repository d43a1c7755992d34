package report

import "fmt"

// formatPassRate returns a percentage string for report output.
func formatPassRate(rate float64) string {
	return fmt.Sprintf("%.2f%%", rate*100)
}

// formatImprovement renders an improvement percentage, "-" for the baseline.
func formatImprovement(pct *float64) string {
	if pct == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *pct)
}

// formatDelta renders an accuracy difference in percentage points.
func formatDelta(delta float64) string {
	return fmt.Sprintf("%+.2fpp", delta*100)
}

func bestOrNone(best string) string {
	if best == "" {
		return "none"
	}
	return best
}
