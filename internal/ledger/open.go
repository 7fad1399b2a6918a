// Package ledger persists the status of every staged file and every remote
// call attempt in an embedded SQLite database. It is the only package that
// holds SQL; everything else talks to the Repository interface.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"

	"github.com/dkarademir/docstage/internal/ledger/migrations"
)

// Open opens (creating if necessary) the ledger database at dsn, applies the
// embedded migrations and the additive column pass, and returns the handle.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger db: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate ledger db: %w", err)
	}

	if err := ensureColumns(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure ledger columns: %w", err)
	}

	return db, nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// ensureColumns non-destructively adds columns that older databases lack.
// Migration is additive only: columns are never dropped or renamed, so a
// ledger written by any earlier release stays readable.
func ensureColumns(ctx context.Context, db *sql.DB) error {
	columns := []struct {
		name string
		def  string
	}{
		{"file_extension", "TEXT DEFAULT ''"},
		{"upload_start_time", "TIMESTAMP NULL"},
		{"upload_end_time", "TIMESTAMP NULL"},
		{"upload_duration_seconds", "REAL NULL"},
		{"processing_start_time", "TIMESTAMP NULL"},
		{"processing_end_time", "TIMESTAMP NULL"},
		{"processing_duration_seconds", "REAL NULL"},
		{"upload_error_message", "TEXT NULL"},
		{"processing_error_message", "TEXT NULL"},
		{"retry_count", "INTEGER DEFAULT 0"},
		{"last_retry_time", "TIMESTAMP NULL"},
		{"overwrite_count", "INTEGER DEFAULT 0"},
		{"last_duplicate_time", "TIMESTAMP NULL"},
		// SQLite rejects ADD COLUMN with a non-constant default, so the audit
		// columns are added as NULL here and filled on the next write.
		{"created_at", "TIMESTAMP NULL"},
		{"updated_at", "TIMESTAMP NULL"},
	}

	for _, c := range columns {
		q := fmt.Sprintf("ALTER TABLE upload_logs ADD COLUMN %s %s", c.name, c.def)
		if _, err := db.ExecContext(ctx, q); err != nil {
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("add column %s: %w", c.name, err)
		}
	}

	return nil
}
