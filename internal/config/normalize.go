package config

import (
	"strings"
	"time"

	"gradebench/internal/evaluate"
	"gradebench/internal/prompt"
	"gradebench/internal/spec"
)

// Defaults applied by Normalize.
const (
	DefaultCasesFile      = "data/test_cases.csv"
	DefaultOverridesFile  = "data/manual_overrides.csv"
	DefaultRunsPerCase    = 2
	DefaultMaxRetries     = 3
	DefaultRetryDelay     = 2 * time.Second
	DefaultRateBackoff    = 15 * time.Second
	DefaultMaxBackoff     = 120 * time.Second
	DefaultTimeout        = 120 * time.Second
	DefaultProvider       = "ollama"
	DefaultOllamaBaseURL  = "http://localhost:11434/v1"
	DefaultLogLevel       = "info"
	DefaultAppEnvironment = "local"
)

// Normalize fills unset fields with defaults and canonicalizes names.
func Normalize(cfg *spec.Config) {
	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}
	if cfg.CasesFile == "" {
		cfg.CasesFile = DefaultCasesFile
	}
	if cfg.OverridesFile == "" {
		cfg.OverridesFile = DefaultOverridesFile
	}
	cfg.Baseline = strings.TrimSpace(cfg.Baseline)
	if cfg.Baseline == "" {
		cfg.Baseline = prompt.Baseline
	}
	for i, name := range cfg.Techniques {
		cfg.Techniques[i] = strings.ToLower(strings.TrimSpace(name))
	}
	if len(cfg.Techniques) == 0 {
		cfg.Techniques = prompt.Names()
	}
	if cfg.RunsPerCase == 0 {
		cfg.RunsPerCase = DefaultRunsPerCase
	}
	if cfg.Workers == 0 {
		cfg.Workers = 1
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}
	if cfg.AppEnv == "" {
		cfg.AppEnv = DefaultAppEnvironment
	}
	normalizeBackend(&cfg.Backend)
	if cfg.Evaluator.SemanticThreshold == 0 {
		cfg.Evaluator.SemanticThreshold = evaluate.DefaultSemanticThreshold
	}
}

func normalizeBackend(backend *spec.BackendConfig) {
	backend.Provider = strings.ToLower(strings.TrimSpace(backend.Provider))
	if backend.Provider == "" {
		backend.Provider = DefaultProvider
	}
	if backend.BaseURL == "" && backend.Provider == "ollama" {
		backend.BaseURL = DefaultOllamaBaseURL
	}
	if backend.MaxRetries == 0 {
		backend.MaxRetries = DefaultMaxRetries
	}
	if backend.RetryDelay == 0 {
		backend.RetryDelay = DefaultRetryDelay
	}
	if backend.RateLimitBackoff == 0 {
		backend.RateLimitBackoff = DefaultRateBackoff
	}
	if backend.MaxBackoff == 0 {
		backend.MaxBackoff = DefaultMaxBackoff
	}
	if backend.Timeout == 0 {
		backend.Timeout = DefaultTimeout
	}
}
