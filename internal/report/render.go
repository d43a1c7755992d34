package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gradebench/internal/metrics"
)

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// newTable builds a bordered table with the report's styling.
func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...)
}

// RenderSummary writes the comparison summary of run: accuracy per technique
// with improvement over the baseline, then the best technique per category
// and per difficulty.
func RenderSummary(w io.Writer, run Run) error {
	comparison := run.Comparison
	if _, err := fmt.Fprintf(w, "Run %s  model %s  trials %d\n", run.Meta.RunID, run.Meta.Model, run.Meta.Trials); err != nil {
		return err
	}

	techniques := newTable("Technique", "Accuracy", "Std dev", "Trials", "Improvement")
	for _, technique := range comparison.Techniques {
		summary := comparison.ByTechnique[technique]
		techniques.Row(
			technique,
			formatPassRate(summary.Accuracy),
			fmt.Sprintf("%.4f", summary.StdDev),
			strconv.Itoa(summary.Count),
			formatImprovement(summary.ImprovementPct),
		)
	}
	if _, err := fmt.Fprintln(w, techniques.Render()); err != nil {
		return err
	}
	if err := renderSlices(w, "Category", comparison.ByCategory, comparison.Techniques); err != nil {
		return err
	}
	return renderSlices(w, "Difficulty", comparison.ByDifficulty, comparison.Techniques)
}

func renderSlices(w io.Writer, label string, slices map[string]metrics.SliceComparison, techniques []string) error {
	if len(slices) == 0 {
		return nil
	}
	headers := append([]string{label}, techniques...)
	headers = append(headers, "Best")
	t := newTable(headers...)
	for _, key := range sortedSliceKeys(slices) {
		slice := slices[key]
		row := []string{key}
		for _, technique := range techniques {
			accuracy, ok := slice.Accuracy[technique]
			if !ok {
				row = append(row, "-")
				continue
			}
			row = append(row, formatPassRate(accuracy))
		}
		row = append(row, bestOrNone(slice.Best))
		t.Row(row...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// RenderCompare writes the per-technique accuracy delta between two runs.
func RenderCompare(w io.Writer, base, head Run) error {
	if _, err := fmt.Fprintf(w, "Base %s (%s)\nHead %s (%s)\n", base.Meta.RunID, base.Meta.Model, head.Meta.RunID, head.Meta.Model); err != nil {
		return err
	}
	t := newTable("Technique", "Base", "Head", "Delta")
	for _, delta := range Compare(base, head) {
		t.Row(append([]string{delta.Technique}, deltaCells(delta.Base, delta.Head, delta.InBase, delta.InHead)...)...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// sortedSliceKeys orders numeric keys numerically and the rest alphabetically.
func sortedSliceKeys(slices map[string]metrics.SliceComparison) []string {
	keys := make([]string, 0, len(slices))
	for key := range slices {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		if errA == nil && errB == nil {
			return a < b
		}
		return keys[i] < keys[j]
	})
	return keys
}

// RenderSliceCompare writes per-slice accuracy deltas between two runs.
func RenderSliceCompare(w io.Writer, label string, deltas []SliceDelta) error {
	t := newTable("Technique", label, "Base", "Head", "Delta")
	for _, delta := range deltas {
		t.Row(append([]string{delta.Technique, delta.Slice}, deltaCells(delta.Base, delta.Head, delta.InBase, delta.InHead)...)...)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

// deltaCells renders the base, head and delta cells. Absent sides print "-".
func deltaCells(base, head float64, inBase, inHead bool) []string {
	cells := []string{"-", "-", "-"}
	if inBase {
		cells[0] = formatPassRate(base)
	}
	if inHead {
		cells[1] = formatPassRate(head)
	}
	if inBase && inHead {
		cells[2] = formatDelta(head - base)
	}
	return cells
}
