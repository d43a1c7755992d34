package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gradebench/internal/metrics"
	"gradebench/internal/runner"
)

// LatestRef selects the newest run in an output directory.
const LatestRef = "latest"

// ErrNoRuns reports an output directory without any finished run.
var ErrNoRuns = errors.New("no runs found")

// Run is one finished run loaded from disk.
type Run struct {
	Dir        string
	Meta       runner.RunMeta
	Comparison metrics.Comparison
	Stats      map[string]metrics.Stats
}

// ListRuns returns the ids of finished runs under outputDir, oldest first.
// A directory counts as a run once its run.json exists.
func ListRuns(outputDir string) ([]string, error) {
	entries, err := os.ReadDir(outputDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	runIDs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		paths := runner.OutputPaths{Root: outputDir, RunID: entry.Name()}
		if info, err := os.Stat(paths.MetaPath()); err == nil && !info.IsDir() {
			runIDs = append(runIDs, entry.Name())
		}
	}
	sort.Strings(runIDs)
	return runIDs, nil
}

// ResolveRun maps a run reference to a run directory. An empty reference or
// "latest" selects the newest run; run ids sort chronologically.
func ResolveRun(outputDir, ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || ref == LatestRef {
		runIDs, err := ListRuns(outputDir)
		if err != nil {
			return "", err
		}
		if len(runIDs) == 0 {
			return "", fmt.Errorf("%w in %s", ErrNoRuns, outputDir)
		}
		return filepath.Join(outputDir, runIDs[len(runIDs)-1]), nil
	}
	paths, err := runner.NewOutputPaths(outputDir, ref)
	if err != nil {
		return "", err
	}
	if info, err := os.Stat(paths.MetaPath()); err != nil || info.IsDir() {
		return "", fmt.Errorf("run %s not found", ref)
	}
	return paths.RunDir(), nil
}

// LoadRun reads the metadata, comparison, and per-technique statistics of
// the run in runDir.
func LoadRun(runDir string) (Run, error) {
	paths := runner.OutputPaths{Root: filepath.Dir(runDir), RunID: filepath.Base(runDir)}
	meta, err := runner.LoadRunMeta(paths.MetaPath())
	if err != nil {
		return Run{}, err
	}
	comparison, err := metrics.LoadComparison(paths.ComparisonPath())
	if err != nil {
		return Run{}, err
	}
	run := Run{
		Dir:        runDir,
		Meta:       meta,
		Comparison: comparison,
		Stats:      make(map[string]metrics.Stats, len(meta.Techniques)),
	}
	for _, technique := range meta.Techniques {
		stats, err := metrics.LoadStats(paths.StatsPath(technique))
		if err != nil {
			return Run{}, fmt.Errorf("technique %s: %w", technique, err)
		}
		run.Stats[technique] = stats
	}
	return run, nil
}

// Resolve resolves ref and loads the run it names.
func Resolve(outputDir, ref string) (Run, error) {
	runDir, err := ResolveRun(outputDir, ref)
	if err != nil {
		return Run{}, err
	}
	return LoadRun(runDir)
}
