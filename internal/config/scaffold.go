package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const defaultConfig = `version: 1
output_dir: "results"
cases_file: "data/test_cases.csv"
overrides_file: "data/manual_overrides.csv"
baseline: "baseline"
techniques:
  - baseline
  - improved
  - few_shot
  - cot
  - role_based
runs_per_case: 2
workers: 1
log_level: "info"

backend:
  provider: "ollama"
  base_url: "http://localhost:11434/v1"
  model: "llama3.2"
  max_retries: 3
  retry_delay: 2s
  request_delay: 1500ms
  rate_limit_backoff: 15s
  max_backoff: 2m
  timeout: 2m

evaluator:
  semantic: false
  semantic_threshold: 0.8
`

const defaultCases = `id,question,category,difficulty,expected_answer,answer_type
1,"Classify the sentiment: ""I absolutely loved this movie!""",sentiment,1,positive,exact
2,What is 15% of 80?,math,2,12,numeric
3,"All roses are flowers. Some flowers fade quickly. Can we conclude that some roses fade quickly?",logic,3,no,exact
4,What season comes after winter?,commonsense,1,spring,contains
`

const defaultOverrides = `# Manual corrections for automatic verdicts.
# run is 1-based; correct_override accepts 1/0, true/false, yes/no.
id,run,technique,correct_override,reason
`

// Scaffold writes a starter config and sample data files under root.
// Existing data files are left untouched; an existing config is an error.
func Scaffold(root string) error {
	if root == "" {
		return fmt.Errorf("root is required")
	}
	configPath := ConfigPath(root)
	if info, err := os.Stat(configPath); err == nil {
		if info.IsDir() {
			return fmt.Errorf("config path %q is a directory", configPath)
		}
		return fmt.Errorf("config file already exists at %q", configPath)
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat config file: %w", err)
	}

	files := []struct {
		path    string
		content string
	}{
		{filepath.Join(root, DefaultCasesFile), defaultCases},
		{filepath.Join(root, DefaultOverridesFile), defaultOverrides},
	}
	for _, file := range files {
		if err := writeIfMissing(file.path, file.content); err != nil {
			return err
		}
	}
	if err := os.MkdirAll(ConfigDir(root), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
