package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"gradebench/internal/prompt"
	"gradebench/internal/spec"
)

// Validate checks a normalized config and the files it references,
// resolving relative paths against baseDir.
func Validate(cfg *spec.Config, baseDir string) error {
	if baseDir == "" {
		baseDir = "."
	}
	issues := &issueCollector{}

	if cfg.Version == 0 {
		issues.add("version", "is required")
	} else if cfg.Version != 1 {
		issues.add("version", fmt.Sprintf("unsupported version %d", cfg.Version))
	}
	if strings.TrimSpace(cfg.OutputDir) == "" {
		issues.add("output_dir", "is required")
	}
	validateFile(issues, "cases_file", baseDir, cfg.CasesFile, true)
	validateFile(issues, "few_shot_examples", baseDir, cfg.FewShotExamples, false)
	validateTechniques(issues, cfg)

	if cfg.RunsPerCase < 1 {
		issues.add("runs_per_case", "must be >= 1")
	}
	if cfg.Workers < 1 {
		issues.add("workers", "must be >= 1")
	}
	if _, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		issues.add("log_level", fmt.Sprintf("unknown level %q", cfg.LogLevel))
	}

	validateBackend(issues, cfg.Backend)
	validateEvaluator(issues, cfg)
	return issues.result()
}

func validateFile(issues *issueCollector, field, baseDir, path string, required bool) {
	if strings.TrimSpace(path) == "" {
		if required {
			issues.add(field, "is required")
		}
		return
	}
	info, err := os.Stat(ResolvePath(baseDir, path))
	if err != nil {
		issues.add(field, fmt.Sprintf("file not found: %s", path))
		return
	}
	if info.IsDir() {
		issues.add(field, fmt.Sprintf("%s is a directory", path))
	}
}

func validateTechniques(issues *issueCollector, cfg *spec.Config) {
	seen := map[string]struct{}{}
	for i, name := range cfg.Techniques {
		field := fmt.Sprintf("techniques[%d]", i)
		if name == "" {
			issues.add(field, "is required")
			continue
		}
		if !prompt.Known(name) {
			issues.add(field, fmt.Sprintf("unknown technique %q", name))
		}
		if _, exists := seen[name]; exists {
			issues.add("techniques", fmt.Sprintf("duplicate technique %q", name))
		}
		seen[name] = struct{}{}
	}
	if _, ok := seen[cfg.Baseline]; !ok {
		issues.add("baseline", fmt.Sprintf("technique %q is not in techniques", cfg.Baseline))
	}
}
