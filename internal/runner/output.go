package runner

import (
	"fmt"
	"path/filepath"
	"strings"
)

// OutputPaths describes filesystem locations for run outputs.
type OutputPaths struct {
	Root  string
	RunID string
}

// NewOutputPaths validates and constructs output paths metadata.
func NewOutputPaths(root, runID string) (OutputPaths, error) {
	if strings.TrimSpace(root) == "" {
		return OutputPaths{}, fmt.Errorf("output root is empty")
	}
	if strings.TrimSpace(runID) == "" {
		return OutputPaths{}, fmt.Errorf("run ID is empty")
	}
	if strings.ContainsAny(runID, `/\`) || runID == "." || runID == ".." {
		return OutputPaths{}, fmt.Errorf("invalid run ID %q", runID)
	}
	return OutputPaths{Root: root, RunID: runID}, nil
}

// RunDir returns the directory for a specific run.
func (o OutputPaths) RunDir() string {
	return filepath.Join(o.Root, o.RunID)
}

// ResultsPath returns the trial table of a technique.
func (o OutputPaths) ResultsPath(technique string) string {
	return filepath.Join(o.RunDir(), technique+"_results.csv")
}

// StatsPath returns the statistics document of a technique.
func (o OutputPaths) StatsPath(technique string) string {
	return filepath.Join(o.RunDir(), technique+"_stats.json")
}

// ComparisonPath returns the path to comparison_stats.json.
func (o OutputPaths) ComparisonPath() string {
	return filepath.Join(o.RunDir(), "comparison_stats.json")
}

// MetaPath returns the path to run.json.
func (o OutputPaths) MetaPath() string {
	return filepath.Join(o.RunDir(), "run.json")
}
