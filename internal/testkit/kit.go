// Package testkit holds shared test fixtures: a sample workbook and an
// in-memory snapshot store.
package testkit

import (
	"context"
	"sync"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"
	"bookingsdash/internal/sample"
)

// SampleSheets is a small three-period workbook covering the reshaping
// rules: forward fill, Other exclusion, the MQLs* alias, duplicate brand
// blocks, and the January-only brands.
func SampleSheets() []sample.Sheet {
	jan := sample.PeriodSheet(bookings.PeriodJan,
		[]interface{}{"Acme"},
		[]interface{}{"MQLs*", 40, 38, 45},
		[]interface{}{"Units", 10, 9, 12},
		[]interface{}{"Dollars", 100, 80, 90},
		[]interface{}{"Procentive"},
		[]interface{}{"Dollars", 50, 50, 50},
		[]interface{}{"Other"},
		[]interface{}{nil, 999, 999, 999},
		[]interface{}{"Globex"},
		[]interface{}{"Dollars", 0, 20, 30},
		[]interface{}{"Acme"},
		[]interface{}{"Dollars", 5, 5, 5},
	)
	feb := sample.PeriodSheet(bookings.PeriodFeb,
		[]interface{}{"Acme"},
		[]interface{}{"Dollars", 120, 110, 100},
		[]interface{}{"Procentive"},
		[]interface{}{"Dollars", 60, 55, 70},
		[]interface{}{"Units", 6, 6, 7},
	)
	ytd := sample.PeriodSheet(bookings.PeriodYTD,
		[]interface{}{"Acme"},
		[]interface{}{"Dollars", 220, 190, 195},
		[]interface{}{"Globex"},
		[]interface{}{"Dollars", 10, 20, 30},
		[]interface{}{"MQLs", 1, 1, 2},
	)
	return []sample.Sheet{jan, feb, ytd}
}

// MemoryRepository is an in-memory ports.SnapshotRepository
type MemoryRepository struct {
	mu        sync.RWMutex
	snapshots []*bookings.Snapshot
	// FailSave makes Save return this error without storing anything
	FailSave error
}

// NewMemoryRepository creates an empty repository
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

// Save stores snapshot as the latest
func (m *MemoryRepository) Save(ctx context.Context, snapshot *bookings.Snapshot) error {
	if m.FailSave != nil {
		return m.FailSave
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots = append(m.snapshots, snapshot)
	return nil
}

// Load returns the latest snapshot
func (m *MemoryRepository) Load(ctx context.Context) (*bookings.Snapshot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.snapshots) == 0 {
		return nil, errors.NotFound("snapshot")
	}
	return m.snapshots[len(m.snapshots)-1], nil
}

// Count returns how many snapshots were saved
func (m *MemoryRepository) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.snapshots)
}
