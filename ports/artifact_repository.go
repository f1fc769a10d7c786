package ports

import (
	"context"

	"bookingsdash/domain/bookings"
)

// SnapshotRepository persists the normalized tables produced by a pipeline
// run. Save is all-or-nothing: a failed Save leaves the previous snapshot
// readable.
type SnapshotRepository interface {
	Save(ctx context.Context, snapshot *bookings.Snapshot) error
	// Load returns the most recently saved snapshot, or NOT_FOUND
	Load(ctx context.Context) (*bookings.Snapshot, error)
}
