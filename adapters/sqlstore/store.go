// Package sqlstore persists snapshots in PostgreSQL or SQLite through sqlx.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	"bookingsdash/domain/bookings"
	"bookingsdash/domain/core"
	"bookingsdash/internal/errors"
	"bookingsdash/internal/migration"
	"bookingsdash/ports"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Driver names registered by the imported database drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// timestampLayout is fixed width so created_at sorts as text in time order
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open connects to the database and applies the schema migrations
func Open(ctx context.Context, driver, dsn string) (*sqlx.DB, error) {
	if dsn == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.ConnectContext(ctx, driver, dsn)
	if err != nil {
		return nil, errors.DatabaseError("failed to connect to database", err)
	}
	if driver == DriverSQLite {
		// A single connection keeps in-memory databases shared and
		// serializes writers.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
			db.Close()
			return nil, errors.DatabaseError("failed to enable foreign keys", err)
		}
	}

	if err := migration.NewRunner().Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

// snapshotRepository implements ports.SnapshotRepository
type snapshotRepository struct {
	db *sqlx.DB
}

// NewSnapshotRepository creates a snapshot repository on db
func NewSnapshotRepository(db *sqlx.DB) ports.SnapshotRepository {
	return &snapshotRepository{db: db}
}

type snapshotRecord struct {
	RunID     string `db:"run_id"`
	CreatedAt string `db:"created_at"`
}

type rowRecord struct {
	Period string `db:"period"`
	bookings.NormalizedRow
}

// Save writes the snapshot and all of its rows in one transaction
func (r *snapshotRepository) Save(ctx context.Context, snapshot *bookings.Snapshot) error {
	for _, layout := range bookings.Layouts() {
		if _, ok := snapshot.Tables[layout.Period]; !ok {
			return errors.InvalidInput(fmt.Sprintf("snapshot has no %s table", layout.DisplayName))
		}
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.DatabaseError("failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		tx.Rebind(`INSERT INTO bookings_snapshots (run_id, created_at) VALUES (?, ?)`),
		snapshot.RunID.String(), snapshot.CreatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		return errors.DatabaseError("failed to insert snapshot", err)
	}

	tableQuery := tx.Rebind(`INSERT INTO bookings_tables (run_id, period, fingerprint, row_count) VALUES (?, ?, ?, ?)`)
	rowQuery := tx.Rebind(`INSERT INTO bookings_rows (
		run_id, period, position, brand, category,
		bookings_budget, bookings_forecast, final_bookings_actual
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)

	for _, layout := range bookings.Layouts() {
		rows := snapshot.Tables[layout.Period]
		if _, err := tx.ExecContext(ctx, tableQuery,
			snapshot.RunID.String(), string(layout.Period), snapshot.Fingerprints[layout.Period].String(), len(rows),
		); err != nil {
			return errors.DatabaseError(fmt.Sprintf("failed to insert %s table", layout.DisplayName), err)
		}
		for i, row := range rows {
			if _, err := tx.ExecContext(ctx, rowQuery,
				snapshot.RunID.String(), string(layout.Period), i, row.Brand, string(row.Category),
				row.Budget, row.Forecast, row.Actual,
			); err != nil {
				return errors.DatabaseError(fmt.Sprintf("failed to insert %s row %d", layout.DisplayName, i), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.DatabaseError("failed to commit snapshot", err)
	}

	log.Printf("[SQLStore] Saved snapshot %s (jan %s, feb %s, ytd %s)", snapshot.RunID,
		snapshot.Fingerprints[bookings.PeriodJan].Short(),
		snapshot.Fingerprints[bookings.PeriodFeb].Short(),
		snapshot.Fingerprints[bookings.PeriodYTD].Short())
	return nil
}

// Load returns the most recently saved snapshot
func (r *snapshotRepository) Load(ctx context.Context) (*bookings.Snapshot, error) {
	var rec snapshotRecord
	err := r.db.GetContext(ctx, &rec,
		`SELECT run_id, created_at FROM bookings_snapshots ORDER BY created_at DESC, run_id DESC LIMIT 1`)
	if err == sql.ErrNoRows {
		return nil, errors.NotFound("snapshot")
	}
	if err != nil {
		return nil, errors.DatabaseError("failed to query latest snapshot", err)
	}

	runID, err := core.ParseID(rec.RunID)
	if err != nil {
		return nil, errors.DatabaseError("invalid snapshot run id", err)
	}
	createdAt, err := time.Parse(timestampLayout, rec.CreatedAt)
	if err != nil {
		return nil, errors.DatabaseError("invalid snapshot timestamp", err)
	}

	var records []rowRecord
	err = r.db.SelectContext(ctx, &records, r.db.Rebind(`SELECT
		period, brand, category, bookings_budget, bookings_forecast, final_bookings_actual
	FROM bookings_rows WHERE run_id = ? ORDER BY period, position`), rec.RunID)
	if err != nil {
		return nil, errors.DatabaseError("failed to query snapshot rows", err)
	}

	snapshot := &bookings.Snapshot{
		RunID:        runID,
		CreatedAt:    createdAt,
		Tables:       make(map[bookings.Period][]bookings.NormalizedRow),
		Fingerprints: make(map[bookings.Period]core.Hash),
	}
	for _, layout := range bookings.Layouts() {
		snapshot.Tables[layout.Period] = []bookings.NormalizedRow{}
	}
	for _, rec := range records {
		period := bookings.Period(rec.Period)
		snapshot.Tables[period] = append(snapshot.Tables[period], rec.NormalizedRow)
	}
	for period, rows := range snapshot.Tables {
		fp, err := bookings.Fingerprint(rows)
		if err != nil {
			return nil, errors.Wrapf(err, "failed to fingerprint %s", period)
		}
		snapshot.Fingerprints[period] = fp
	}

	return snapshot, nil
}
