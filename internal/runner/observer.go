package runner

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gradebench/internal/metrics"
)

// TrialEvent reports one finished trial.
type TrialEvent struct {
	Technique  string
	ItemID     string
	Repetition int
	Category   string
	Correct    bool
	Succeeded  bool
	Confidence float64
	LatencyMs  int64
	Error      string
	// Done counts finished trials of the technique, this one included.
	Done      int
	Total     int
	EmittedAt time.Time
}

// RunObserver receives run lifecycle events for UI or logging. Trial events
// of different techniques may arrive concurrently.
type RunObserver interface {
	// OnRunStart signals the start of a run.
	OnRunStart(runID string, model string, techniques []string)
	// OnTechniqueStart signals that a technique began with total trials.
	OnTechniqueStart(technique string, total int)
	// OnTrialDone delivers a finished trial.
	OnTrialDone(event TrialEvent)
	// OnTechniqueEnd signals technique completion with its overall metrics.
	OnTechniqueEnd(technique string, overall metrics.Metrics)
	// OnRunEnd signals run completion.
	OnRunEnd(result Result)
}

// NopObserver ignores all events.
type NopObserver struct{}

func (NopObserver) OnRunStart(string, string, []string)    {}
func (NopObserver) OnTechniqueStart(string, int)           {}
func (NopObserver) OnTrialDone(TrialEvent)                 {}
func (NopObserver) OnTechniqueEnd(string, metrics.Metrics) {}
func (NopObserver) OnRunEnd(Result)                        {}

// PlainObserver prints one progress line per event. Techniques report
// concurrently, so lines are written under a lock.
type PlainObserver struct {
	mu sync.Mutex
	w  io.Writer
}

// NewPlainObserver returns an observer writing to w.
func NewPlainObserver(w io.Writer) *PlainObserver {
	return &PlainObserver{w: w}
}

func (o *PlainObserver) printf(format string, args ...any) {
	o.mu.Lock()
	defer o.mu.Unlock()
	fmt.Fprintf(o.w, format, args...)
}

func (o *PlainObserver) OnRunStart(runID string, model string, techniques []string) {
	o.printf("run %s: model %s, %d techniques\n", runID, model, len(techniques))
}

func (o *PlainObserver) OnTechniqueStart(technique string, total int) {
	o.printf("[%s] %d trials\n", technique, total)
}

func (o *PlainObserver) OnTrialDone(event TrialEvent) {
	status := "incorrect"
	switch {
	case !event.Succeeded:
		status = "failed: " + event.Error
	case event.Correct:
		status = "correct"
	}
	o.printf("[%s] %d/%d item %s run %d %s (%dms)\n",
		event.Technique, event.Done, event.Total, event.ItemID, event.Repetition, status, event.LatencyMs)
}

func (o *PlainObserver) OnTechniqueEnd(technique string, overall metrics.Metrics) {
	o.printf("[%s] accuracy %.2f%% (std dev %.4f)\n", technique, overall.Accuracy*100, overall.StdDev)
}

func (o *PlainObserver) OnRunEnd(result Result) {
	elapsed := result.FinishedAt.Sub(result.StartedAt).Round(time.Millisecond)
	o.printf("run %s finished in %s, %d trials\n", result.RunID, elapsed, result.TrialCount())
}
