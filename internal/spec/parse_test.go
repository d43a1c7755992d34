package spec

import (
	"errors"
	"testing"
	"time"
)

// TestParseConfigValid verifies valid config parsing succeeds.
func TestParseConfigValid(t *testing.T) {
	data := []byte(`version: 1
output_dir: "./results"
cases_file: "data/test_cases.csv"
techniques: [baseline, cot]
backend:
  provider: ollama
  model: llama3.2
  retry_delay: 2s
  timeout: 2m
evaluator:
  semantic_threshold: 0.75
`)
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("expected parse to succeed, got %v", err)
	}
	if cfg.Backend.RetryDelay != 2*time.Second || cfg.Backend.Timeout != 2*time.Minute {
		t.Fatalf("unexpected durations: %+v", cfg.Backend)
	}
	if len(cfg.Techniques) != 2 || cfg.Evaluator.SemanticThreshold != 0.75 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

// TestParseConfigUnknownField verifies unknown fields are rejected.
func TestParseConfigUnknownField(t *testing.T) {
	data := []byte(`version: 1
output_dir: "./out"
unknown: true
`)
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for unknown field")
	}
}

// TestParseConfigRejectsMultipleDocs verifies multiple YAML docs are rejected.
func TestParseConfigRejectsMultipleDocs(t *testing.T) {
	data := []byte("version: 1\n---\nversion: 1\n")
	if _, err := ParseConfig(data); err == nil {
		t.Fatalf("expected parse error for multiple documents")
	}
}

// TestParseConfigEmpty verifies an empty file is reported as such.
func TestParseConfigEmpty(t *testing.T) {
	for _, data := range []string{"", "# only a comment\n"} {
		if _, err := ParseConfig([]byte(data)); !errors.Is(err, ErrEmptyConfig) {
			t.Fatalf("expected ErrEmptyConfig for %q, got %v", data, err)
		}
	}
}
