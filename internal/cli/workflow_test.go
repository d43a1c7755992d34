package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"gradebench/internal/backend"
	"gradebench/internal/config"
	"gradebench/internal/metrics"
	"gradebench/internal/runner"
	"gradebench/internal/spec"
	"gradebench/internal/testutil"
)

// expertBackend answers the scaffolded sample cases correctly.
type expertBackend struct {
	calls int
}

func (b *expertBackend) Query(_ context.Context, prompt string) backend.Response {
	b.calls++
	answers := map[string]string{
		"loved":  "positive",
		"15%":    "The answer is 12.",
		"roses":  "no",
		"winter": "Spring comes next.",
	}
	for marker, answer := range answers {
		if strings.Contains(prompt, marker) {
			return backend.Response{Text: answer, LatencyMs: 10, Success: true}
		}
	}
	return backend.Response{Text: "unsure", LatencyMs: 10, Success: true}
}

func (b *expertBackend) HasModel(context.Context) (bool, error) {
	return true, nil
}

// useFakeBackend swaps the backend seam and numbers run ids sequentially.
func useFakeBackend(t *testing.T) *expertBackend {
	t.Helper()
	fake := &expertBackend{}
	originalBackend, originalDeps := newBackend, runDeps
	t.Cleanup(func() {
		newBackend = originalBackend
		runDeps = originalDeps
	})
	newBackend = func(spec.BackendConfig, *zerolog.Logger) modelBackend { return fake }
	next := 0
	clock := testutil.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	runDeps = runner.RunDependencies{
		RunID: func(now time.Time) (string, error) {
			next++
			clock.Advance(time.Minute)
			return runner.FormatRunID(now, fmt.Sprintf("%04d", next)), nil
		},
		Now: clock.Now,
	}
	return fake
}

// scaffold initializes a project and returns its config path.
func scaffold(t *testing.T) (string, string) {
	t.Helper()
	root := t.TempDir()
	var out, errOut bytes.Buffer
	if code := Run([]string{"init", "--dir", root}, &out, &errOut); code != ExitOK {
		t.Fatalf("init: exit %d: %s", code, errOut.String())
	}
	return root, config.ConfigPath(root)
}

func runCommand(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := Run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

// TestInitRefusesExistingConfig verifies init never overwrites a config.
func TestInitRefusesExistingConfig(t *testing.T) {
	root, _ := scaffold(t)
	code, _, stderr := runCommand(t, "init", "--dir", root)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "already exists") {
		t.Fatalf("expected existing config error, got %q", stderr)
	}
}

// TestValidateCommand verifies a scaffolded project validates.
func TestValidateCommand(t *testing.T) {
	_, configPath := scaffold(t)
	code, stdout, stderr := runCommand(t, "validate", "--spec", configPath)
	if code != ExitOK {
		t.Fatalf("expected exit %d, got %d: %s", ExitOK, code, stderr)
	}
	if !strings.Contains(stdout, "Config OK (4 cases, 0 overrides)") {
		t.Fatalf("unexpected output: %q", stdout)
	}
}

// TestValidateCommandReportsBrokenOverrides verifies malformed tables fail.
func TestValidateCommandReportsBrokenOverrides(t *testing.T) {
	root, configPath := scaffold(t)
	broken := "id,run,technique,correct_override,reason\n1,zero,baseline,1,typo\n"
	if err := os.WriteFile(filepath.Join(root, config.DefaultOverridesFile), []byte(broken), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	code, _, stderr := runCommand(t, "validate", "--spec", configPath)
	if code != ExitError {
		t.Fatalf("expected exit %d, got %d", ExitError, code)
	}
	if !strings.Contains(stderr, "malformed override table") {
		t.Fatalf("expected malformed table error, got %q", stderr)
	}
}

// TestRunRejectsUnknownTechnique verifies technique arguments are checked.
func TestRunRejectsUnknownTechnique(t *testing.T) {
	fake := useFakeBackend(t)
	_, configPath := scaffold(t)
	code, _, stderr := runCommand(t, "run", "--spec", configPath, "--ui", "plain", "telepathy")
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(stderr, "unknown technique") {
		t.Fatalf("expected unknown technique error, got %q", stderr)
	}
	if fake.calls != 0 {
		t.Fatalf("expected no backend calls, got %d", fake.calls)
	}
}

// TestRunOverridesReportCompare drives a run through reconciliation,
// reporting, and comparison against a second run.
func TestRunOverridesReportCompare(t *testing.T) {
	fake := useFakeBackend(t)
	root, configPath := scaffold(t)

	code, stdout, stderr := runCommand(t, "run", "--spec", configPath, "--ui", "plain", "cot")
	if code != ExitOK {
		t.Fatalf("run: exit %d: %s", code, stderr)
	}
	if fake.calls != 16 {
		t.Fatalf("expected 16 backend calls, got %d", fake.calls)
	}
	runs, err := os.ReadDir(filepath.Join(root, config.DefaultOutputDir))
	if err != nil || len(runs) != 1 {
		t.Fatalf("expected one run dir, got %v (%v)", runs, err)
	}
	firstRun := runs[0].Name()
	if !strings.Contains(stdout, "Run "+firstRun+" completed") {
		t.Fatalf("expected completion line, got %q", stdout)
	}
	paths := runner.OutputPaths{Root: filepath.Join(root, config.DefaultOutputDir), RunID: firstRun}
	for _, path := range []string{paths.ResultsPath("baseline"), paths.ResultsPath("cot"), paths.StatsPath("cot"), paths.ComparisonPath(), paths.MetaPath()} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected output %s: %v", path, err)
		}
	}

	overrides := "id,run,technique,correct_override,reason\n2,1,baseline,0,wrong unit\n9,1,baseline,1,removed item\n"
	if err := os.WriteFile(filepath.Join(root, config.DefaultOverridesFile), []byte(overrides), 0o644); err != nil {
		t.Fatalf("write overrides: %v", err)
	}
	code, stdout, stderr = runCommand(t, "apply-overrides", "--spec", configPath, "baseline")
	if code != ExitOK {
		t.Fatalf("apply-overrides: exit %d: %s", code, stderr)
	}
	for _, token := range []string{"baseline: 2 overrides, 1 changes", "Override: id=2, run=1: true -> false", "Reason: wrong unit", "Skipped: id=9", "Accuracy: 87.50%"} {
		if !strings.Contains(stdout, token) {
			t.Fatalf("expected %q in output:\n%s", token, stdout)
		}
	}
	stats, err := metrics.LoadStats(paths.StatsPath("baseline"))
	if err != nil {
		t.Fatalf("load stats: %v", err)
	}
	if stats.Overall.Accuracy != 0.875 {
		t.Fatalf("expected accuracy 0.875, got %v", stats.Overall.Accuracy)
	}
	comparison, err := metrics.LoadComparison(paths.ComparisonPath())
	if err != nil {
		t.Fatalf("load comparison: %v", err)
	}
	if got := *comparison.ByTechnique["cot"].ImprovementPct; got != 14.29 {
		t.Fatalf("expected cot improvement 14.29, got %v", got)
	}

	code, stdout, _ = runCommand(t, "apply-overrides", "--spec", configPath, "--run", firstRun)
	if code != ExitOK || !strings.Contains(stdout, "baseline: 2 overrides, 0 changes") {
		t.Fatalf("expected idempotent second pass, got exit %d:\n%s", code, stdout)
	}

	code, stdout, stderr = runCommand(t, "report", "--spec", configPath)
	if code != ExitOK {
		t.Fatalf("report: exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, firstRun) || !strings.Contains(stdout, "87.50%") {
		t.Fatalf("unexpected report:\n%s", stdout)
	}

	if code, _, stderr = runCommand(t, "run", "--spec", configPath, "--ui", "plain", "cot"); code != ExitOK {
		t.Fatalf("second run: exit %d: %s", code, stderr)
	}
	code, stdout, stderr = runCommand(t, "compare", "--spec", configPath, "--base", firstRun)
	if code != ExitOK {
		t.Fatalf("compare: exit %d: %s", code, stderr)
	}
	if !strings.Contains(stdout, "+12.50pp") {
		t.Fatalf("expected baseline delta in comparison:\n%s", stdout)
	}
}

// TestCompareRequiresBase verifies compare fails without --base.
func TestCompareRequiresBase(t *testing.T) {
	_, configPath := scaffold(t)
	code, _, stderr := runCommand(t, "compare", "--spec", configPath)
	if code != ExitUsage {
		t.Fatalf("expected exit %d, got %d", ExitUsage, code)
	}
	if !strings.Contains(stderr, "Missing --base") {
		t.Fatalf("expected missing base error, got %q", stderr)
	}
}

// TestSelectTechniquesAddsBaseline verifies the baseline always runs first.
func TestSelectTechniquesAddsBaseline(t *testing.T) {
	cfg := spec.Config{Baseline: "baseline", Techniques: []string{"baseline", "cot"}}
	got, err := selectTechniques(cfg, []string{"Role_Based", "cot", "cot"})
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	want := []string{"baseline", "role_based", "cot"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

// TestServeMetricsExposesRunCounters verifies the metrics endpoint serves
// the run registry.
func TestServeMetricsExposesRunCounters(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("reserve port: %v", err)
	}
	addr := listener.Addr().String()
	_ = listener.Close()

	registry := prometheus.NewRegistry()
	m := runner.NewMetrics(registry)
	m.Trials.WithLabelValues("baseline", runner.OutcomeCorrect).Inc()
	logger := zerolog.Nop()
	shutdown := serveMetrics(addr, registry, &logger)
	defer shutdown()

	var body string
	testutil.Eventually(t, 2*time.Second, func() error {
		resp, err := http.Get("http://" + addr + "/metrics")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("status %d", resp.StatusCode)
		}
		data, err := io.ReadAll(resp.Body)
		body = string(data)
		return err
	})
	if !strings.Contains(body, `gradebench_trials_total{outcome="correct",technique="baseline"} 1`) {
		t.Fatalf("expected trial counter in metrics:\n%s", body)
	}
}
