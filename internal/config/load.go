package config

import (
	"fmt"
	"os"

	"gradebench/internal/spec"
)

// Load reads, parses, applies environment overrides, normalizes, and
// validates a config file. Relative paths in the result are resolved
// against the project root.
func Load(path string) (spec.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return spec.Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := spec.ParseConfig(data)
	if err != nil {
		return spec.Config{}, err
	}
	root := RootFromConfigPath(path)
	if err := ApplyEnv(&cfg, root); err != nil {
		return spec.Config{}, err
	}
	Normalize(&cfg)
	if err := Validate(&cfg, root); err != nil {
		return spec.Config{}, err
	}
	Resolve(&cfg, root)
	return cfg, nil
}

// InMemoryDuckDB is the store path of a throwaway in-memory database.
const InMemoryDuckDB = ":memory:"

// Resolve anchors every file path in cfg at root.
func Resolve(cfg *spec.Config, root string) {
	cfg.OutputDir = ResolvePath(root, cfg.OutputDir)
	cfg.CasesFile = ResolvePath(root, cfg.CasesFile)
	cfg.OverridesFile = ResolvePath(root, cfg.OverridesFile)
	cfg.FewShotExamples = ResolvePath(root, cfg.FewShotExamples)
	if cfg.Store.DuckDBPath != InMemoryDuckDB {
		cfg.Store.DuckDBPath = ResolvePath(root, cfg.Store.DuckDBPath)
	}
}
