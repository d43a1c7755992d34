package live

import "time"

// TechniqueStatus is the lifecycle stage of a technique.
type TechniqueStatus string

const (
	StatusPending TechniqueStatus = "pending"
	StatusRunning TechniqueStatus = "running"
	StatusDone    TechniqueStatus = "done"
)

// TechniqueRow holds UI state for a single technique.
type TechniqueRow struct {
	Name      string
	Status    TechniqueStatus
	Total     int
	Done      int
	Correct   int
	Incorrect int
	Failed    int
	// Accuracy is the final accuracy once the technique has ended.
	Accuracy     float64
	LatencyMs    int64
	StartedAt    time.Time
	FinishedAt   time.Time
	LastItem     string
	LastError    string
	HasAccuracy  bool
	totalLatency int64
}

// RunningAccuracy is correct trials over finished trials so far.
func (r TechniqueRow) RunningAccuracy() float64 {
	if r.HasAccuracy {
		return r.Accuracy
	}
	if r.Done == 0 {
		return 0
	}
	return float64(r.Correct) / float64(r.Done)
}

// State captures the live UI state for a run.
type State struct {
	RunID     string
	Model     string
	StartedAt time.Time
	Finished   bool
	FinishedAt time.Time
	LastEvent string
	Rows      []TechniqueRow
}

// Totals sums finished and planned trials across techniques.
func (s State) Totals() (done, total, correct, failed int) {
	for _, row := range s.Rows {
		done += row.Done
		total += row.Total
		correct += row.Correct
		failed += row.Failed
	}
	return done, total, correct, failed
}
