package config

import (
	"fmt"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"gradebench/internal/spec"
)

// envOverrides holds settings that may come from the environment.
type envOverrides struct {
	APIKey         string `env:"GRADEBENCH_API_KEY"`
	FallbackAPIKey string `env:"LLM_API_KEY"`
	Model          string `env:"GRADEBENCH_MODEL"`
	BaseURL        string `env:"GRADEBENCH_BASE_URL"`
	RunsPerCase    int    `env:"GRADEBENCH_RUNS_PER_CASE"`
	MaxRetries     int    `env:"GRADEBENCH_MAX_RETRIES"`
	LogLevel       string `env:"GRADEBENCH_LOG_LEVEL"`
	AppEnv         string `env:"APP_ENV" envDefault:"local"`
}

// ApplyEnv loads root/.env when present and overlays environment
// variables onto cfg. Variables already set in the process win over .env.
func ApplyEnv(cfg *spec.Config, root string) error {
	_ = godotenv.Load(filepath.Join(root, ".env"))

	var overrides envOverrides
	if err := env.Parse(&overrides); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	cfg.Backend.APIKey = overrides.APIKey
	if cfg.Backend.APIKey == "" {
		cfg.Backend.APIKey = overrides.FallbackAPIKey
	}
	if overrides.Model != "" {
		cfg.Backend.Model = overrides.Model
	}
	if overrides.BaseURL != "" {
		cfg.Backend.BaseURL = overrides.BaseURL
	}
	if overrides.RunsPerCase != 0 {
		cfg.RunsPerCase = overrides.RunsPerCase
	}
	if overrides.MaxRetries != 0 {
		cfg.Backend.MaxRetries = overrides.MaxRetries
	}
	if overrides.LogLevel != "" {
		cfg.LogLevel = overrides.LogLevel
	}
	cfg.AppEnv = overrides.AppEnv
	return nil
}
