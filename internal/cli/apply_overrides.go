package cli

import (
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"gradebench/internal/metrics"
	"gradebench/internal/override"
	"gradebench/internal/report"
	"gradebench/internal/runner"
	"gradebench/internal/trial"
)

// runApplyOverrides builds the handler for the apply-overrides command.
func runApplyOverrides(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .gradebench/config.yml)")
		runRef := fs.String("run", report.LatestRef, "Run id to reconcile")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		cfg, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		runDir, err := report.ResolveRun(cfg.OutputDir, *runRef)
		if err != nil {
			fmt.Fprintf(stderr, "Run not found: %v\n", err)
			return ExitError
		}
		paths := runner.OutputPaths{Root: filepath.Dir(runDir), RunID: filepath.Base(runDir)}
		meta, err := runner.LoadRunMeta(paths.MetaPath())
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load run: %v\n", err)
			return ExitError
		}
		selected, err := selectRunTechniques(meta, fs.Args())
		if err != nil {
			fmt.Fprintf(stderr, "Invalid techniques: %v\n", err)
			return ExitUsage
		}

		trialsByTechnique := make(map[string][]trial.Trial, len(meta.Techniques))
		for _, technique := range meta.Techniques {
			trials, err := trial.Load(paths.ResultsPath(technique))
			if err != nil {
				fmt.Fprintf(stderr, "Failed to load %s results: %v\n", technique, err)
				return ExitError
			}
			trialsByTechnique[technique] = trials
		}
		overrides, err := override.Load(cfg.OverridesFile)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load overrides: %v\n", err)
			return ExitError
		}

		ctx, cancel := commandContext()
		defer cancel()

		targets := make(map[string][]trial.Trial, len(selected))
		for _, technique := range selected {
			targets[technique] = trialsByTechnique[technique]
		}
		results, err := override.ReconcileAll(ctx, targets, overrides)
		if err != nil {
			fmt.Fprintf(stderr, "Reconciliation failed: %v\n", err)
			return ExitError
		}

		stats := make(map[string]metrics.Stats, len(meta.Techniques))
		for _, technique := range selected {
			result := results[technique]
			if result.Changes > 0 {
				if err := trial.Save(paths.ResultsPath(technique), result.Trials); err != nil {
					fmt.Fprintf(stderr, "Failed to save %s results: %v\n", technique, err)
					return ExitError
				}
			}
			trialsByTechnique[technique] = result.Trials
			stats[technique] = metrics.BuildStats(result.Trials)
			if err := metrics.SaveStats(paths.StatsPath(technique), stats[technique]); err != nil {
				fmt.Fprintf(stderr, "Failed to save %s statistics: %v\n", technique, err)
				return ExitError
			}
			printReconciliation(stdout, result, stats[technique])
		}
		for _, technique := range meta.Techniques {
			if _, ok := stats[technique]; !ok {
				stats[technique] = metrics.BuildStats(trialsByTechnique[technique])
			}
		}
		comparison := metrics.Compare(stats, meta.Baseline, meta.Techniques...)
		if err := metrics.SaveComparison(paths.ComparisonPath(), comparison); err != nil {
			fmt.Fprintf(stderr, "Failed to save comparison: %v\n", err)
			return ExitError
		}
		if _, err := ingestRun(ctx, cfg, meta, trialsByTechnique); err != nil {
			fmt.Fprintf(stderr, "Failed to store results: %v\n", err)
			return ExitError
		}

		fmt.Fprintf(stdout, "Updated %s\n", paths.ComparisonPath())
		return ExitOK
	}
}

// selectRunTechniques returns the named techniques, which must belong to the
// run, or all of the run's techniques.
func selectRunTechniques(meta runner.RunMeta, args []string) ([]string, error) {
	if len(args) == 0 {
		return meta.Techniques, nil
	}
	inRun := make(map[string]bool, len(meta.Techniques))
	for _, technique := range meta.Techniques {
		inRun[technique] = true
	}
	seen := map[string]bool{}
	var selected []string
	for _, arg := range args {
		name := strings.ToLower(strings.TrimSpace(arg))
		if !inRun[name] {
			return nil, fmt.Errorf("technique %q is not part of run %s (ran: %s)", arg, meta.RunID, strings.Join(meta.Techniques, ", "))
		}
		if !seen[name] {
			seen[name] = true
			selected = append(selected, name)
		}
	}
	return selected, nil
}

// printReconciliation writes the applied changes and refreshed statistics of
// one technique.
func printReconciliation(w io.Writer, result override.Result, stats metrics.Stats) {
	fmt.Fprintf(w, "%s: %d overrides, %d changes\n", result.Technique, result.Considered, result.Changes)
	for _, change := range result.Applied {
		fmt.Fprintf(w, "  Override: id=%s, run=%d: %t -> %t\n", change.Override.ItemID, change.Override.Repetition, change.From, change.To)
		fmt.Fprintf(w, "    Reason: %s\n", change.Override.Reason)
	}
	for _, skipped := range result.Skipped {
		fmt.Fprintf(w, "  Skipped: id=%s, run=%d has no trial\n", skipped.ItemID, skipped.Repetition)
	}
	overall := stats.Overall
	fmt.Fprintf(w, "  Accuracy: %.2f%%\n", overall.Accuracy*100)
	fmt.Fprintf(w, "  Variance: %.4f\n", overall.Variance)
	fmt.Fprintf(w, "  Std Dev:  %.4f\n", overall.StdDev)
	categories := make([]string, 0, len(stats.ByCategory))
	for category := range stats.ByCategory {
		categories = append(categories, category)
	}
	sort.Strings(categories)
	for _, category := range categories {
		m := stats.ByCategory[category]
		fmt.Fprintf(w, "  %-20s: %.2f%% (n=%d)\n", category, m.Accuracy*100, m.Count)
	}
}
