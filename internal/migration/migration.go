package migration

import (
	"context"
	"fmt"

	"bookingsdash/internal/errors"

	"github.com/jmoiron/sqlx"
)

// MigrationRunner handles database schema migrations
type MigrationRunner struct {
	version string
}

// NewRunner creates a new migration runner
func NewRunner() *MigrationRunner {
	return &MigrationRunner{
		version: "1.0.0",
	}
}

// Version returns the migration version
func (r *MigrationRunner) Version() string {
	return r.version
}

// Run executes all database migrations in the correct order. The DDL is
// kept to types both PostgreSQL and SQLite accept.
func (r *MigrationRunner) Run(ctx context.Context, db *sqlx.DB) error {
	if err := r.createSnapshotsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bookings_snapshots table")
	}

	if err := r.createTablesTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bookings_tables table")
	}

	if err := r.createRowsTable(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create bookings_rows table")
	}

	if err := r.createIndexes(ctx, db); err != nil {
		return errors.Wrap(err, "failed to create indexes")
	}

	return nil
}

func (r *MigrationRunner) createSnapshotsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS bookings_snapshots (
			run_id TEXT PRIMARY KEY,
			created_at TEXT NOT NULL
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createTablesTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS bookings_tables (
			run_id TEXT NOT NULL REFERENCES bookings_snapshots(run_id) ON DELETE CASCADE,
			period TEXT NOT NULL,
			fingerprint TEXT NOT NULL,
			row_count INTEGER NOT NULL,
			PRIMARY KEY (run_id, period)
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createRowsTable(ctx context.Context, db *sqlx.DB) error {
	query := `
		CREATE TABLE IF NOT EXISTS bookings_rows (
			run_id TEXT NOT NULL REFERENCES bookings_snapshots(run_id) ON DELETE CASCADE,
			period TEXT NOT NULL,
			position INTEGER NOT NULL,
			brand TEXT NOT NULL,
			category TEXT NOT NULL,
			bookings_budget DOUBLE PRECISION NOT NULL,
			bookings_forecast DOUBLE PRECISION NOT NULL,
			final_bookings_actual DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (run_id, period, position)
		)`
	_, err := db.ExecContext(ctx, query)
	return err
}

func (r *MigrationRunner) createIndexes(ctx context.Context, db *sqlx.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON bookings_snapshots(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_rows_brand ON bookings_rows(run_id, period, brand)",
	}

	for _, idx := range indexes {
		if _, err := db.ExecContext(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	return nil
}
