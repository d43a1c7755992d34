// Package runner executes every configured prompt technique against the
// test suite and collects the trials.
package runner

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"gradebench/internal/backend"
	"gradebench/internal/evaluate"
	"gradebench/internal/metrics"
	"gradebench/internal/prompt"
	"gradebench/internal/question"
	"gradebench/internal/trial"
)

// RunDependencies are the seams tests replace.
type RunDependencies struct {
	RunID func(now time.Time) (string, error)
	Now   func() time.Time
}

// RunParams describes one run.
type RunParams struct {
	Cases       []question.Case
	Techniques  []string
	Baseline    string
	Repetitions int
	// Workers bounds concurrent backend calls within one technique.
	Workers    int
	Model      string
	Generators prompt.Set
	Backend    backend.Backend
	Evaluator  *evaluate.Evaluator
	Observer   RunObserver
	Metrics    *Metrics
	Logger     *zerolog.Logger
	Deps       RunDependencies
}

// Result is a finished run.
type Result struct {
	RunID       string
	Model       string
	Baseline    string
	Techniques  []string
	Repetitions int
	Cases       int
	StartedAt   time.Time
	FinishedAt  time.Time
	Trials      map[string][]trial.Trial
	Stats       map[string]metrics.Stats
	Comparison  metrics.Comparison
}

// TrialCount returns the number of trials across techniques.
func (r Result) TrialCount() int {
	total := 0
	for _, trials := range r.Trials {
		total += len(trials)
	}
	return total
}

// Run queries the backend for every technique, case, and repetition.
// Techniques run in parallel; trials keep case order, then repetition order.
// Backend failures become failed trials. Cancellation aborts the run.
func Run(ctx context.Context, params RunParams) (Result, error) {
	if err := validateParams(params); err != nil {
		return Result{}, err
	}
	logger := params.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	observer := params.Observer
	if observer == nil {
		observer = NopObserver{}
	}
	now := params.Deps.Now
	if now == nil {
		now = time.Now
	}
	newRunID := params.Deps.RunID
	if newRunID == nil {
		newRunID = NewRunID
	}
	evaluator := params.Evaluator
	if evaluator == nil {
		evaluator = evaluate.New()
	}

	generators := make(map[string]prompt.Generator, len(params.Techniques))
	for _, technique := range params.Techniques {
		generator, err := params.Generators.Lookup(technique)
		if err != nil {
			return Result{}, err
		}
		generators[technique] = generator
	}

	startedAt := now()
	runID, err := newRunID(startedAt)
	if err != nil {
		return Result{}, err
	}
	observer.OnRunStart(runID, params.Model, params.Techniques)
	logger.Info().Str("run_id", runID).Str("model", params.Model).Strs("techniques", params.Techniques).
		Int("cases", len(params.Cases)).Int("runs_per_case", params.Repetitions).Msg("run started")

	var mu sync.Mutex
	trialsByTechnique := make(map[string][]trial.Trial, len(params.Techniques))
	group, groupCtx := errgroup.WithContext(ctx)
	for _, technique := range params.Techniques {
		group.Go(func() error {
			job := techniqueJob{
				technique: technique,
				generator: generators[technique],
				params:    params,
				evaluator: evaluator,
				observer:  observer,
				logger:    logger,
				now:       now,
			}
			trials, err := job.run(groupCtx)
			if err != nil {
				return fmt.Errorf("technique %s: %w", technique, err)
			}
			mu.Lock()
			trialsByTechnique[technique] = trials
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return Result{}, err
	}

	stats := make(map[string]metrics.Stats, len(trialsByTechnique))
	for technique, trials := range trialsByTechnique {
		stats[technique] = metrics.BuildStats(trials)
	}
	comparison := metrics.Compare(stats, params.Baseline, params.Techniques...)
	result := Result{
		RunID:       runID,
		Model:       params.Model,
		Baseline:    params.Baseline,
		Techniques:  append([]string(nil), params.Techniques...),
		Repetitions: params.Repetitions,
		Cases:       len(params.Cases),
		StartedAt:   startedAt,
		FinishedAt:  now(),
		Trials:      trialsByTechnique,
		Stats:       stats,
		Comparison:  comparison,
	}
	observer.OnRunEnd(result)
	logger.Info().Str("run_id", runID).Int("trials", result.TrialCount()).
		Dur("elapsed", result.FinishedAt.Sub(startedAt)).Msg("run finished")
	return result, nil
}

func validateParams(params RunParams) error {
	switch {
	case params.Backend == nil:
		return errors.New("runner: backend is required")
	case len(params.Techniques) == 0:
		return errors.New("runner: at least one technique is required")
	case params.Repetitions < 1:
		return errors.New("runner: repetitions must be >= 1")
	case params.Generators == nil:
		return errors.New("runner: generators are required")
	}
	return nil
}

type techniqueJob struct {
	technique string
	generator prompt.Generator
	params    RunParams
	evaluator *evaluate.Evaluator
	observer  RunObserver
	logger    *zerolog.Logger
	now       func() time.Time
}

func (j techniqueJob) run(ctx context.Context) ([]trial.Trial, error) {
	cases := j.params.Cases
	repetitions := j.params.Repetitions
	total := len(cases) * repetitions
	trials := make([]trial.Trial, total)
	j.observer.OnTechniqueStart(j.technique, total)

	var (
		mu   sync.Mutex
		done int
	)
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(max(j.params.Workers, 1))
	for slot := range trials {
		item := cases[slot/repetitions]
		repetition := slot%repetitions + 1
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			t := j.trial(ctx, item, repetition)
			if err := ctx.Err(); err != nil {
				return err
			}
			trials[slot] = t
			j.params.Metrics.observe(j.technique, t.Succeeded, t.Correct, t.LatencyMs)

			mu.Lock()
			done++
			event := TrialEvent{
				Technique:  j.technique,
				ItemID:     t.ItemID,
				Repetition: t.Repetition,
				Category:   t.Category,
				Correct:    t.Correct,
				Succeeded:  t.Succeeded,
				Confidence: t.Confidence,
				LatencyMs:  t.LatencyMs,
				Error:      t.Error,
				Done:       done,
				Total:      total,
				EmittedAt:  j.now(),
			}
			j.observer.OnTrialDone(event)
			mu.Unlock()
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}

	overall := metrics.BuildStats(trials).Overall
	j.observer.OnTechniqueEnd(j.technique, overall)
	j.logger.Info().Str("technique", j.technique).Float64("accuracy", overall.Accuracy).
		Float64("std_dev", overall.StdDev).Int("trials", overall.Count).Msg("technique finished")
	return trials, nil
}

func (j techniqueJob) trial(ctx context.Context, item question.Case, repetition int) trial.Trial {
	text := j.generator.Generate(item)
	resp := j.params.Backend.Query(ctx, text)
	t := trial.Trial{
		ItemID:     item.ID,
		Repetition: repetition,
		Technique:  j.technique,
		Category:   item.Category,
		Difficulty: item.Difficulty,
		Prompt:     trial.Truncate(text),
		Response:   resp.Text,
		Expected:   item.ExpectedAnswer,
		AnswerType: item.AnswerType,
		LatencyMs:  resp.LatencyMs,
		Succeeded:  resp.Success,
		Error:      resp.Err,
	}
	if !resp.Success {
		j.logger.Warn().Str("technique", j.technique).Str("item", item.ID).Int("run", repetition).
			Str("error", resp.Err).Msg("backend query failed")
		return t
	}
	verdict := j.evaluator.EvaluateContext(ctx, resp.Text, item.ExpectedAnswer, evaluate.ParseAnswerType(item.AnswerType))
	t.Correct = verdict.Correct
	t.Confidence = verdict.Confidence
	return t
}
