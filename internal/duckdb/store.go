package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"github.com/google/uuid"

	"gradebench/internal/trial"
)

// Run describes one benchmark run stored alongside its trials.
type Run struct {
	RunID             string
	StartedAt         time.Time
	FinishedAt        time.Time
	Model             string
	Techniques        []string
	ConfigFingerprint string
}

// Dimension selects how SliceAccuracy groups trials.
type Dimension string

// Supported slice dimensions.
const (
	Overall      Dimension = "overall"
	ByCategory   Dimension = "category"
	ByDifficulty Dimension = "difficulty"
)

var sliceColumns = map[Dimension]string{
	Overall:      "''",
	ByCategory:   "category",
	ByDifficulty: "CAST(difficulty AS VARCHAR)",
}

// SliceRow is the accuracy of one technique within one slice.
type SliceRow struct {
	Technique string
	Slice     string
	Trials    int
	Accuracy  float64
}

var now = time.Now

// Open opens the database at path and applies the schema.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping duckdb: %w", err)
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// IngestRun upserts a run and its trials in one transaction. Trials are
// keyed by (run, technique, item, repetition), so ingesting a corrected
// trial set replaces the earlier rows.
func IngestRun(ctx context.Context, db *sql.DB, run Run, trialsByTechnique map[string][]trial.Trial) (int, error) {
	if db == nil {
		return 0, errors.New("duckdb: db is nil")
	}
	if strings.TrimSpace(run.RunID) == "" {
		return 0, errors.New("duckdb: run id is required")
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin ingest: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	ingestedAt := now().UTC()
	if err := upsertRun(ctx, tx, run, ingestedAt); err != nil {
		return 0, err
	}

	techniques := make([]string, 0, len(trialsByTechnique))
	for technique := range trialsByTechnique {
		techniques = append(techniques, technique)
	}
	sort.Strings(techniques)

	count := 0
	for _, technique := range techniques {
		for _, t := range trialsByTechnique[technique] {
			if err := upsertTrial(ctx, tx, run.RunID, technique, t, ingestedAt); err != nil {
				return 0, err
			}
			count++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit ingest: %w", err)
	}
	return count, nil
}

func upsertRun(ctx context.Context, tx *sql.Tx, run Run, ingestedAt time.Time) error {
	var finished any
	if !run.FinishedAt.IsZero() {
		finished = run.FinishedAt.UTC()
	}
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO runs (run_id, run_key, started_at, finished_at, model, techniques, config_fingerprint, ingested_at)
		 VALUES (?, CAST(? AS UUID), ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id) DO UPDATE SET
		   finished_at = excluded.finished_at,
		   model = excluded.model,
		   techniques = excluded.techniques,
		   config_fingerprint = excluded.config_fingerprint,
		   ingested_at = excluded.ingested_at`,
		run.RunID,
		uuid.NewString(),
		run.StartedAt.UTC(),
		finished,
		run.Model,
		strings.Join(run.Techniques, ","),
		run.ConfigFingerprint,
		ingestedAt,
	); err != nil {
		return fmt.Errorf("upsert run: %w", err)
	}
	return nil
}

func upsertTrial(ctx context.Context, tx *sql.Tx, runID, technique string, t trial.Trial, ingestedAt time.Time) error {
	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO trials (
		   trial_id, run_id, technique, item_id, repetition, category, difficulty,
		   prompt, response, expected, answer_type, correct, confidence,
		   latency_ms, succeeded, error, ingested_at
		 ) VALUES (CAST(? AS UUID), ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (run_id, technique, item_id, repetition) DO UPDATE SET
		   correct = excluded.correct,
		   confidence = excluded.confidence,
		   response = excluded.response,
		   succeeded = excluded.succeeded,
		   error = excluded.error,
		   ingested_at = excluded.ingested_at`,
		uuid.NewString(),
		runID,
		technique,
		t.ItemID,
		t.Repetition,
		t.Category,
		t.Difficulty,
		t.Prompt,
		t.Response,
		t.Expected,
		t.AnswerType,
		t.Correct,
		t.Confidence,
		t.LatencyMs,
		t.Succeeded,
		t.Error,
		ingestedAt,
	); err != nil {
		return fmt.Errorf("upsert trial %s/%s run %d: %w", technique, t.ItemID, t.Repetition, err)
	}
	return nil
}

// SliceAccuracy returns per-technique accuracy of a run grouped by dimension,
// ordered by technique then slice.
func SliceAccuracy(ctx context.Context, db *sql.DB, runID string, dimension Dimension) ([]SliceRow, error) {
	column, ok := sliceColumns[dimension]
	if !ok {
		return nil, fmt.Errorf("duckdb: unknown dimension %q", dimension)
	}
	query := fmt.Sprintf(
		`SELECT technique, %s AS slice, count(*) AS trials,
		        CAST(avg(CASE WHEN correct THEN 1 ELSE 0 END) AS DOUBLE) AS accuracy
		 FROM trials
		 WHERE run_id = ?
		 GROUP BY technique, slice
		 ORDER BY technique, slice`,
		column,
	)
	rows, err := db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("slice accuracy: %w", err)
	}
	defer rows.Close()

	var out []SliceRow
	for rows.Next() {
		var row SliceRow
		if err := rows.Scan(&row.Technique, &row.Slice, &row.Trials, &row.Accuracy); err != nil {
			return nil, fmt.Errorf("scan slice accuracy: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("slice accuracy rows: %w", err)
	}
	return out, nil
}

// RunIDs returns stored run ids, oldest first.
func RunIDs(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT run_id FROM runs ORDER BY started_at, run_id`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
