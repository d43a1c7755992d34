package live

import (
	"strings"
	"testing"
	"time"

	"gradebench/internal/metrics"
	"gradebench/internal/runner"
	"gradebench/internal/testutil"
)

// TestReduceTechniqueLifecycle verifies counts and status transitions.
func TestReduceTechniqueLifecycle(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		state := State{}
		state = Reduce(state, Event{Kind: EventRunStart, RunID: "run-1", Model: "llama3.2", Techniques: []string{"baseline", "cot"}, At: start})
		state = Reduce(state, Event{Kind: EventTechniqueStart, Technique: "cot", Total: 3, At: start})
		state = Reduce(state, trialEvent("cot", 1, true, true, ""))
		state = Reduce(state, trialEvent("cot", 2, true, false, ""))
		state = Reduce(state, trialEvent("cot", 3, false, false, "timeout"))

		if len(state.Rows) != 2 || state.Rows[0].Status != StatusPending {
			t.Fatalf("expected baseline pending, got %+v", state.Rows)
		}
		row := state.Rows[1]
		if row.Status != StatusRunning || row.Done != 3 || row.Correct != 1 || row.Incorrect != 1 || row.Failed != 1 {
			t.Fatalf("unexpected cot row: %+v", row)
		}
		if row.LatencyMs != 100 {
			t.Fatalf("expected mean latency over successful calls, got %d", row.LatencyMs)
		}
		if !strings.Contains(state.LastEvent, "timeout") {
			t.Fatalf("expected failure in last event, got %q", state.LastEvent)
		}

		state = Reduce(state, Event{Kind: EventTechniqueEnd, Technique: "cot", Overall: metrics.Metrics{Accuracy: 1.0 / 3}})
		if state.Rows[1].Status != StatusDone || formatAccuracy(state.Rows[1]) != "33.3%" {
			t.Fatalf("unexpected finished row: %+v", state.Rows[1])
		}
		done, total, correct, failed := state.Totals()
		if done != 3 || total != 3 || correct != 1 || failed != 1 {
			t.Fatalf("unexpected totals: %d %d %d %d", done, total, correct, failed)
		}
	})
}

// TestReduceUnknownTechniqueAddsRow verifies late techniques still render.
func TestReduceUnknownTechniqueAddsRow(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		state := Reduce(State{}, trialEvent("few_shot", 1, true, true, ""))
		if len(state.Rows) != 1 || state.Rows[0].Name != "few_shot" || state.Rows[0].Status != StatusRunning {
			t.Fatalf("unexpected rows: %+v", state.Rows)
		}
	})
}

// TestModelViewRendersRows verifies the rendered view lists techniques.
func TestModelViewRendersRows(t *testing.T) {
	runWithTimeout(t, time.Second, func() {
		model := NewModel(nil, Options{NoColor: true})
		model = applyEvent(model, Event{Kind: EventRunStart, RunID: "run-9", Techniques: []string{"baseline"}})
		model = applyEvent(model, trialEvent("baseline", 1, true, true, ""))
		view := model.View()
		for _, want := range []string{"Run run-9", "baseline", "Trials: 1/2"} {
			if !strings.Contains(view, want) {
				t.Fatalf("expected %q in view:\n%s", want, view)
			}
		}
	})
}

func trialEvent(technique string, done int, succeeded, correct bool, errMsg string) Event {
	return Event{
		Kind:      EventTrial,
		Technique: technique,
		Trial: runner.TrialEvent{
			Technique:  technique,
			ItemID:     "1",
			Repetition: done,
			Succeeded:  succeeded,
			Correct:    correct,
			LatencyMs:  100,
			Error:      errMsg,
			Done:       done,
			Total:      2,
		},
	}
}

// runWithTimeout executes a test body with a timeout.
func runWithTimeout(t *testing.T, timeout time.Duration, fn func()) {
	t.Helper()
	ctx := testutil.Context(t, timeout)
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()
	select {
	case <-done:
	case <-ctx.Done():
		t.Fatalf("test timed out")
	}
}
