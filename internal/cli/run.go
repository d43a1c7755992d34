package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"gradebench/internal/evaluate"
	"gradebench/internal/logging"
	"gradebench/internal/prompt"
	"gradebench/internal/question"
	"gradebench/internal/report"
	"gradebench/internal/runner"
	"gradebench/internal/spec"
)

// runRun builds the handler for the run command.
func runRun(cmd *Command) func(args []string, stdout, stderr io.Writer) int {
	return func(args []string, stdout, stderr io.Writer) int {
		if wantsHelp(args) {
			printCommandUsage(cmd, stdout)
			return ExitOK
		}
		fs := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
		fs.SetOutput(stderr)
		specPath := fs.String("spec", "", "Path to config file (default: search for .gradebench/config.yml)")
		uiMode := fs.String("ui", uiAuto, "Progress display: auto|live|plain")
		verbose := fs.Bool("verbose", false, "Log every trial at debug level")
		metricsAddr := fs.String("metrics-addr", "", "Serve Prometheus metrics on this address while running")
		if code, ok := parseFlags(cmd, fs, args, stdout, stderr); !ok {
			return code
		}

		cfg, err := loadConfig(*specPath)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load config: %v\n", err)
			return ExitError
		}
		techniques, err := selectTechniques(cfg, fs.Args())
		if err != nil {
			fmt.Fprintf(stderr, "Invalid techniques: %v\n", err)
			return ExitUsage
		}
		decision, err := resolveUIMode(*uiMode, *verbose, stdout)
		if err != nil {
			fmt.Fprintf(stderr, "%v\n", err)
			return ExitUsage
		}
		if decision.warning != "" {
			fmt.Fprintln(stderr, decision.warning)
		}

		cases, err := question.LoadSpec(cfg.CasesFile)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to load test cases: %v\n", err)
			return ExitError
		}
		var examples map[string][]prompt.Example
		if cfg.FewShotExamples != "" {
			if examples, err = prompt.LoadExamples(cfg.FewShotExamples); err != nil {
				fmt.Fprintf(stderr, "Failed to load few-shot examples: %v\n", err)
				return ExitError
			}
		}

		logger := runLogger(cfg, *verbose, decision.useLive, stderr)
		ctx, cancel := commandContext()
		defer cancel()

		model := newBackend(cfg.Backend, &logger)
		if ok, err := model.HasModel(ctx); err != nil {
			logger.Warn().Err(err).Msg("could not list backend models")
		} else if !ok {
			logger.Warn().Str("model", cfg.Backend.Model).Msg("model not reported by backend")
		}

		registry := prometheus.NewRegistry()
		if *metricsAddr != "" {
			shutdown := serveMetrics(*metricsAddr, registry, &logger)
			defer shutdown()
		}

		var observer runner.RunObserver = runner.NewPlainObserver(stdout)
		var ui liveUI
		if decision.useLive {
			ui = startLiveUI(stdout)
			observer = ui
		}

		result, err := runner.Run(ctx, runner.RunParams{
			Cases:       cases.Cases,
			Techniques:  techniques,
			Baseline:    cfg.Baseline,
			Repetitions: cfg.RunsPerCase,
			Workers:     cfg.Workers,
			Model:       cfg.Backend.Model,
			Generators:  prompt.NewSet(examples),
			Backend:     model,
			Evaluator:   newEvaluator(cfg),
			Observer:    observer,
			Metrics:     runner.NewMetrics(registry),
			Logger:      &logger,
			Deps:        runDeps,
		})
		if ui != nil {
			ui.Close()
			ui.Wait()
		}
		if err != nil {
			fmt.Fprintf(stderr, "Run failed: %v\n", err)
			return ExitError
		}

		paths, err := runner.WriteRunOutputs(result, cfg.OutputDir)
		if err != nil {
			fmt.Fprintf(stderr, "Failed to write outputs: %v\n", err)
			return ExitError
		}
		if count, err := ingestRun(ctx, cfg, result.Meta(), result.Trials); err != nil {
			fmt.Fprintf(stderr, "Failed to store results: %v\n", err)
			return ExitError
		} else if count > 0 {
			logger.Info().Int("trials", count).Str("path", cfg.Store.DuckDBPath).Msg("results stored")
		}

		fmt.Fprintf(stdout, "\nRun %s completed\n", result.RunID)
		fmt.Fprintf(stdout, "Results: %s\n\n", paths.RunDir())
		summary := report.Run{Dir: paths.RunDir(), Meta: result.Meta(), Comparison: result.Comparison, Stats: result.Stats}
		if err := report.RenderSummary(stdout, summary); err != nil {
			fmt.Fprintf(stderr, "Failed to render summary: %v\n", err)
			return ExitError
		}
		return ExitOK
	}
}

// selectTechniques returns the techniques named on the command line, or the
// configured ones. The baseline is always run first so improvements can be
// computed.
func selectTechniques(cfg spec.Config, args []string) ([]string, error) {
	if len(args) == 0 {
		return cfg.Techniques, nil
	}
	seen := map[string]bool{}
	selected := make([]string, 0, len(args)+1)
	for _, arg := range args {
		name := strings.ToLower(strings.TrimSpace(arg))
		if !prompt.Known(name) {
			return nil, fmt.Errorf("unknown technique %q (available: %s)", arg, strings.Join(prompt.Names(), ", "))
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		selected = append(selected, name)
	}
	if !seen[cfg.Baseline] {
		selected = append([]string{cfg.Baseline}, selected...)
	}
	return selected, nil
}

// newEvaluator builds the answer evaluator, with embeddings when semantic
// grading is enabled.
func newEvaluator(cfg spec.Config) *evaluate.Evaluator {
	opts := []evaluate.Option{evaluate.WithSemanticThreshold(cfg.Evaluator.SemanticThreshold)}
	if cfg.Evaluator.Semantic {
		opts = append(opts, evaluate.WithEmbedder(newEmbedder(cfg.Backend)))
	}
	return evaluate.New(opts...)
}

// runLogger builds the run logger. The live table owns the terminal, so only
// errors are logged while it is shown.
func runLogger(cfg spec.Config, verbose, live bool, stderr io.Writer) zerolog.Logger {
	level := cfg.LogLevel
	if verbose {
		level = zerolog.DebugLevel.String()
	}
	logger := logging.New(level, cfg.AppEnv, stderr)
	if live && logger.GetLevel() < zerolog.ErrorLevel {
		logger = logger.Level(zerolog.ErrorLevel)
	}
	return logger
}

// serveMetrics exposes registry on addr until the returned func is called.
func serveMetrics(addr string, registry *prometheus.Registry, logger *zerolog.Logger) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	logger.Info().Str("addr", addr).Msg("serving metrics")
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(ctx)
	}
}
