package report

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"gradebench/internal/duckdb"
	"gradebench/internal/metrics"
	"gradebench/internal/runner"
	"gradebench/internal/trial"
)

// writeRun stores a finished run whose techniques score the given verdicts.
func writeRun(t *testing.T, root, runID string, verdicts map[string][]bool) {
	t.Helper()
	techniques := []string{"baseline"}
	for technique := range verdicts {
		if technique != "baseline" {
			techniques = append(techniques, technique)
		}
	}
	result := runner.Result{
		RunID:       runID,
		Model:       "llama3",
		Baseline:    "baseline",
		Techniques:  techniques,
		Repetitions: 1,
		StartedAt:   time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		FinishedAt:  time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC),
		Trials:      map[string][]trial.Trial{},
		Stats:       map[string]metrics.Stats{},
	}
	for technique, outcomes := range verdicts {
		trials := make([]trial.Trial, 0, len(outcomes))
		for i, correct := range outcomes {
			category := "math"
			if i%2 == 1 {
				category = "logic"
			}
			trials = append(trials, trial.Trial{
				ItemID:     string(rune('a' + i)),
				Repetition: 1,
				Technique:  technique,
				Category:   category,
				Difficulty: 1 + i%3,
				Correct:    correct,
				Succeeded:  true,
			})
		}
		result.Trials[technique] = trials
		result.Stats[technique] = metrics.BuildStats(trials)
		result.Cases = len(outcomes)
	}
	result.Comparison = metrics.Compare(result.Stats, "baseline", techniques...)
	if _, err := runner.WriteRunOutputs(result, root); err != nil {
		t.Fatalf("write outputs: %v", err)
	}
}

// TestResolveRunLatestAndByID verifies run resolution by id and by recency.
func TestResolveRunLatestAndByID(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "20260301T120000Z-aaaa", map[string][]bool{"baseline": {true, false}})
	writeRun(t, root, "20260302T120000Z-bbbb", map[string][]bool{"baseline": {true, true}})

	runIDs, err := ListRuns(root)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(runIDs) != 2 || runIDs[0] != "20260301T120000Z-aaaa" {
		t.Fatalf("unexpected runs: %v", runIDs)
	}
	for _, ref := range []string{"", LatestRef} {
		run, err := Resolve(root, ref)
		if err != nil {
			t.Fatalf("resolve %q: %v", ref, err)
		}
		if run.Meta.RunID != "20260302T120000Z-bbbb" {
			t.Fatalf("expected latest run, got %s", run.Meta.RunID)
		}
	}
	run, err := Resolve(root, "20260301T120000Z-aaaa")
	if err != nil {
		t.Fatalf("resolve by id: %v", err)
	}
	if run.Stats["baseline"].Overall.Accuracy != 0.5 {
		t.Fatalf("expected accuracy 0.5, got %v", run.Stats["baseline"].Overall.Accuracy)
	}
	if _, err := ResolveRun(root, "missing"); err == nil {
		t.Fatalf("expected missing run error")
	}
	if _, err := ResolveRun(root, "../escape"); err == nil {
		t.Fatalf("expected invalid run id error")
	}
}

// TestResolveRunEmptyDir verifies an empty output dir has no latest run.
func TestResolveRunEmptyDir(t *testing.T) {
	if _, err := ResolveRun(t.TempDir(), ""); !errors.Is(err, ErrNoRuns) {
		t.Fatalf("expected ErrNoRuns, got %v", err)
	}
}

// TestCompareRuns verifies deltas cover techniques from both runs.
func TestCompareRuns(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run-1", map[string][]bool{"baseline": {true, false}, "cot": {false, false}})
	writeRun(t, root, "run-2", map[string][]bool{"baseline": {true, true}, "role_based": {true, false}})
	base, err := Resolve(root, "run-1")
	if err != nil {
		t.Fatalf("resolve base: %v", err)
	}
	head, err := Resolve(root, "run-2")
	if err != nil {
		t.Fatalf("resolve head: %v", err)
	}
	deltas := Compare(base, head)
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %+v", deltas)
	}
	if deltas[0].Technique != "baseline" || math.Abs(deltas[0].Delta-0.5) > 1e-9 {
		t.Fatalf("unexpected baseline delta: %+v", deltas[0])
	}
	if deltas[1].Technique != "role_based" || deltas[1].InBase {
		t.Fatalf("unexpected head-only delta: %+v", deltas[1])
	}
	if deltas[2].Technique != "cot" || deltas[2].InHead {
		t.Fatalf("unexpected base-only delta: %+v", deltas[2])
	}

	var out bytes.Buffer
	if err := RenderCompare(&out, base, head); err != nil {
		t.Fatalf("render compare: %v", err)
	}
	if !strings.Contains(out.String(), "+50.00pp") {
		t.Fatalf("expected baseline delta in output:\n%s", out.String())
	}
}

// TestRenderSummary verifies the summary lists techniques and slice winners.
func TestRenderSummary(t *testing.T) {
	root := t.TempDir()
	writeRun(t, root, "run-1", map[string][]bool{"baseline": {true, false}, "cot": {true, true}})
	run, err := Resolve(root, "")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	var out bytes.Buffer
	if err := RenderSummary(&out, run); err != nil {
		t.Fatalf("render summary: %v", err)
	}
	text := out.String()
	for _, token := range []string{"run-1", "baseline", "cot", "+100.00%", "Category", "Difficulty", "logic"} {
		if !strings.Contains(text, token) {
			t.Fatalf("expected summary to include %q:\n%s", token, text)
		}
	}
}

// TestCompareSlices verifies slice rows are matched by technique and slice.
func TestCompareSlices(t *testing.T) {
	base := []duckdb.SliceRow{
		{Technique: "baseline", Slice: "math", Trials: 2, Accuracy: 0.5},
		{Technique: "baseline", Slice: "logic", Trials: 2, Accuracy: 1},
	}
	head := []duckdb.SliceRow{
		{Technique: "baseline", Slice: "math", Trials: 2, Accuracy: 1},
		{Technique: "cot", Slice: "math", Trials: 2, Accuracy: 0.5},
	}
	deltas := CompareSlices(base, head)
	if len(deltas) != 3 {
		t.Fatalf("expected 3 deltas, got %+v", deltas)
	}
	if deltas[0].Slice != "logic" || deltas[0].InHead {
		t.Fatalf("unexpected first delta: %+v", deltas[0])
	}
	if deltas[1].Slice != "math" || math.Abs(deltas[1].Delta-0.5) > 1e-9 {
		t.Fatalf("unexpected math delta: %+v", deltas[1])
	}
	if deltas[2].Technique != "cot" || deltas[2].InBase {
		t.Fatalf("unexpected cot delta: %+v", deltas[2])
	}
	var out bytes.Buffer
	if err := RenderSliceCompare(&out, "Category", deltas); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(out.String(), "+50.00pp") {
		t.Fatalf("expected delta in output:\n%s", out.String())
	}
}
