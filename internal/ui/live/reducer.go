package live

import (
	"fmt"
	"time"
)

// Reduce applies an event to the UI state.
func Reduce(state State, event Event) State {
	switch event.Kind {
	case EventRunStart:
		state.RunID = event.RunID
		state.Model = event.Model
		state.StartedAt = event.At
		state.Rows = make([]TechniqueRow, 0, len(event.Techniques))
		for _, name := range event.Techniques {
			state.Rows = append(state.Rows, TechniqueRow{Name: name, Status: StatusPending})
		}
	case EventTechniqueStart:
		row, index := rowFor(&state, event.Technique)
		row.Status = StatusRunning
		row.Total = event.Total
		row.StartedAt = event.At
		state.Rows[index] = row
	case EventTrial:
		state = applyTrial(state, event)
	case EventTechniqueEnd:
		row, index := rowFor(&state, event.Technique)
		row.Status = StatusDone
		row.Accuracy = event.Overall.Accuracy
		row.HasAccuracy = true
		state.Rows[index] = row
		state.LastEvent = fmt.Sprintf("%s finished: %.1f%% accuracy", event.Technique, event.Overall.Accuracy*100)
	case EventRunEnd:
		state.Finished = true
		if !event.At.IsZero() {
			state.FinishedAt = event.At
		}
		state.LastEvent = "Run " + state.RunID + " finished"
	}
	return state
}

func applyTrial(state State, event Event) State {
	trial := event.Trial
	row, index := rowFor(&state, trial.Technique)
	if row.Status == StatusPending {
		row.Status = StatusRunning
	}
	if row.Total == 0 && trial.Total > 0 {
		row.Total = trial.Total
	}
	row.Done = max(row.Done, trial.Done)
	switch {
	case !trial.Succeeded:
		row.Failed++
		row.LastError = trial.Error
		state.LastEvent = fmt.Sprintf("%s item %s run %d failed: %s", trial.Technique, trial.ItemID, trial.Repetition, trial.Error)
	case trial.Correct:
		row.Correct++
	default:
		row.Incorrect++
	}
	if trial.Succeeded {
		row.totalLatency += trial.LatencyMs
		if succeeded := row.Correct + row.Incorrect; succeeded > 0 {
			row.LatencyMs = row.totalLatency / int64(succeeded)
		}
	}
	row.LastItem = fmt.Sprintf("%s#%d", trial.ItemID, trial.Repetition)
	if !trial.EmittedAt.IsZero() {
		row.FinishedAt = trial.EmittedAt
	}
	state.Rows[index] = row
	return state
}

// rowFor returns the row of technique, appending one when it is new.
func rowFor(state *State, technique string) (TechniqueRow, int) {
	for i, row := range state.Rows {
		if row.Name == technique {
			return row, i
		}
	}
	state.Rows = append(state.Rows, TechniqueRow{Name: technique, Status: StatusPending})
	return state.Rows[len(state.Rows)-1], len(state.Rows) - 1
}

// formatDuration renders a rounded duration for display.
func formatDuration(duration time.Duration) string {
	if duration <= 0 {
		return "0s"
	}
	return duration.Round(100 * time.Millisecond).String()
}
