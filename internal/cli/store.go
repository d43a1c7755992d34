package cli

import (
	"context"
	"fmt"

	"gradebench/internal/duckdb"
	"gradebench/internal/runner"
	"gradebench/internal/spec"
	"gradebench/internal/trial"
)

// ingestRun writes a run into the results database when one is configured.
// It reports the number of trial rows written.
func ingestRun(ctx context.Context, cfg spec.Config, meta runner.RunMeta, trialsByTechnique map[string][]trial.Trial) (int, error) {
	if cfg.Store.DuckDBPath == "" {
		return 0, nil
	}
	fingerprint, err := configFingerprint(cfg)
	if err != nil {
		return 0, err
	}
	db, err := duckdb.Open(ctx, cfg.Store.DuckDBPath)
	if err != nil {
		return 0, err
	}
	defer db.Close()
	count, err := duckdb.IngestRun(ctx, db, duckdb.Run{
		RunID:             meta.RunID,
		StartedAt:         meta.StartedAt,
		FinishedAt:        meta.FinishedAt,
		Model:             meta.Model,
		Techniques:        meta.Techniques,
		ConfigFingerprint: fingerprint,
	}, trialsByTechnique)
	if err != nil {
		return 0, fmt.Errorf("ingest run %s: %w", meta.RunID, err)
	}
	return count, nil
}

// configFingerprint hashes the config without its credentials.
func configFingerprint(cfg spec.Config) (string, error) {
	cfg.Backend.APIKey = ""
	return duckdb.FingerprintJSON(cfg)
}
