package override

import (
	"context"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"gradebench/internal/trial"
)

// Change records one verdict flipped by an override.
type Change struct {
	Override Override
	From     bool
	To       bool
}

// Result is the outcome of reconciling one technique's trials.
type Result struct {
	Technique string
	// Trials is a corrected copy; the input slice is never modified.
	Trials  []trial.Trial
	Changes int
	Applied []Change
	// Skipped overrides reference trials absent from the set.
	Skipped []Override
	// Superseded overrides were replaced by a later line for the same trial.
	Superseded []Override
	// Considered counts the overrides addressed to the technique.
	Considered int
}

// Reconcile applies the overrides addressed to technique. Only trials of
// that technique, or rows without one, are matched. When several
// overrides target the same trial the last one wins, so applying the same
// table again changes nothing.
func Reconcile(trials []trial.Trial, overrides []Override, technique string) Result {
	result := Result{
		Technique: technique,
		Trials:    trial.Clone(trials),
	}
	positions := make(map[trial.Key]int, len(trials))
	for i, t := range result.Trials {
		if t.Technique != "" && t.Technique != technique {
			continue
		}
		if _, ok := positions[t.Key()]; !ok {
			positions[t.Key()] = i
		}
	}

	selected := ForTechnique(overrides, technique)
	result.Considered = len(selected)
	effective, superseded := lastPerTrial(selected)
	result.Superseded = superseded

	for _, o := range effective {
		i, ok := positions[o.Key()]
		if !ok {
			result.Skipped = append(result.Skipped, o)
			continue
		}
		current := &result.Trials[i]
		if current.Correct == o.Corrected {
			continue
		}
		result.Applied = append(result.Applied, Change{Override: o, From: current.Correct, To: o.Corrected})
		current.Correct = o.Corrected
		if o.Corrected {
			current.Confidence = 1.0
		} else {
			current.Confidence = 0.0
		}
		result.Changes++
	}
	return result
}

// lastPerTrial keeps the final override per trial, in table order of those
// survivors, and returns the earlier ones separately.
func lastPerTrial(overrides []Override) ([]Override, []Override) {
	last := make(map[trial.Key]int, len(overrides))
	for i, o := range overrides {
		last[o.Key()] = i
	}
	var effective, superseded []Override
	for i, o := range overrides {
		if last[o.Key()] == i {
			effective = append(effective, o)
		} else {
			superseded = append(superseded, o)
		}
	}
	return effective, superseded
}

// ReconcileAll reconciles every technique concurrently. Trial sets of
// different techniques are disjoint, so each is owned by one goroutine.
func ReconcileAll(ctx context.Context, trialsByTechnique map[string][]trial.Trial, overrides []Override) (map[string]Result, error) {
	techniques := make([]string, 0, len(trialsByTechnique))
	for technique := range trialsByTechnique {
		techniques = append(techniques, technique)
	}
	sort.Strings(techniques)

	var mu sync.Mutex
	results := make(map[string]Result, len(techniques))
	group, ctx := errgroup.WithContext(ctx)
	for _, technique := range techniques {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result := Reconcile(trialsByTechnique[technique], overrides, technique)
			mu.Lock()
			results[technique] = result
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
