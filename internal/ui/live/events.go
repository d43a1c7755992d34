package live

import (
	"time"

	"gradebench/internal/metrics"
	"gradebench/internal/runner"
)

// EventKind identifies the type of live UI event.
type EventKind int

const (
	// EventRunStart signals the start of a run.
	EventRunStart EventKind = iota
	// EventTechniqueStart signals the start of a technique.
	EventTechniqueStart
	// EventTrial delivers a finished trial.
	EventTrial
	// EventTechniqueEnd signals technique completion.
	EventTechniqueEnd
	// EventRunEnd signals run completion.
	EventRunEnd
)

// Event carries a UI update payload.
type Event struct {
	Kind       EventKind
	RunID      string
	Model      string
	Techniques []string
	Technique  string
	Total      int
	Trial      runner.TrialEvent
	Overall    metrics.Metrics
	At         time.Time
}
