package duckdb

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

// schemaDDL creates the runs and trials tables. Every statement is
// idempotent, so it is applied on each open.
//
//go:embed schema.sql
var schemaDDL string

// EnsureSchema creates any missing tables.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return errors.New("duckdb: db is nil")
	}
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return fmt.Errorf("duckdb: apply schema: %w", err)
	}
	return nil
}
