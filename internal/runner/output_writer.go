package runner

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gradebench/internal/metrics"
	"gradebench/internal/trial"
)

// RunMeta is the run.json document.
type RunMeta struct {
	RunID       string    `json:"run_id"`
	Model       string    `json:"model"`
	Baseline    string    `json:"baseline"`
	Techniques  []string  `json:"techniques"`
	RunsPerCase int       `json:"runs_per_case"`
	Cases       int       `json:"cases"`
	Trials      int       `json:"trials"`
	StartedAt   time.Time `json:"started_at"`
	FinishedAt  time.Time `json:"finished_at"`
}

// Meta returns the run.json document of r.
func (r Result) Meta() RunMeta {
	return RunMeta{
		RunID:       r.RunID,
		Model:       r.Model,
		Baseline:    r.Baseline,
		Techniques:  r.Techniques,
		RunsPerCase: r.Repetitions,
		Cases:       r.Cases,
		Trials:      r.TrialCount(),
		StartedAt:   r.StartedAt,
		FinishedAt:  r.FinishedAt,
	}
}

// WriteRunOutputs writes the trial tables, statistics, comparison, and run
// metadata of a finished run under outputDir/<run-id>/.
func WriteRunOutputs(result Result, outputDir string) (OutputPaths, error) {
	if outputDir == "" {
		return OutputPaths{}, fmt.Errorf("output directory is required")
	}
	paths, err := NewOutputPaths(outputDir, result.RunID)
	if err != nil {
		return OutputPaths{}, err
	}
	if err := os.MkdirAll(paths.RunDir(), 0o755); err != nil {
		return OutputPaths{}, fmt.Errorf("create output dir: %w", err)
	}
	for _, technique := range result.Techniques {
		if err := trial.Save(paths.ResultsPath(technique), result.Trials[technique]); err != nil {
			return OutputPaths{}, err
		}
		if err := metrics.SaveStats(paths.StatsPath(technique), result.Stats[technique]); err != nil {
			return OutputPaths{}, err
		}
	}
	if err := metrics.SaveComparison(paths.ComparisonPath(), result.Comparison); err != nil {
		return OutputPaths{}, err
	}
	if err := writeJSON(paths.MetaPath(), result.Meta()); err != nil {
		return OutputPaths{}, err
	}
	return paths, nil
}

// LoadRunMeta reads a run.json document.
func LoadRunMeta(path string) (RunMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RunMeta{}, fmt.Errorf("read run metadata: %w", err)
	}
	var meta RunMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return RunMeta{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return meta, nil
}

// writeJSON writes a payload as pretty JSON.
func writeJSON(path string, payload any) error {
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
