package app

import (
	"context"
	"sync"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal"
	"bookingsdash/ports"

	"golang.org/x/sync/singleflight"
)

// SnapshotLoader loads the latest snapshot once and shares a presenter over
// it. Concurrent first callers share one load; failures are not cached so a
// later call can retry.
type SnapshotLoader struct {
	repo   ports.SnapshotRepository
	logger *internal.Logger

	group     singleflight.Group
	mu        sync.RWMutex
	presenter *PresenterService
}

// NewSnapshotLoader creates a loader reading from repo
func NewSnapshotLoader(repo ports.SnapshotRepository, logger *internal.Logger) *SnapshotLoader {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &SnapshotLoader{repo: repo, logger: logger.With("SnapshotLoader")}
}

// Presenter returns the presenter over the cached snapshot, loading it on
// first use.
func (l *SnapshotLoader) Presenter(ctx context.Context) (*PresenterService, error) {
	if p := l.cached(); p != nil {
		return p, nil
	}

	v, err, _ := l.group.Do("snapshot", func() (interface{}, error) {
		if p := l.cached(); p != nil {
			return p, nil
		}

		snapshot, err := l.repo.Load(ctx)
		if err != nil {
			return nil, err
		}
		p := NewPresenterService(snapshot)

		l.mu.Lock()
		l.presenter = p
		l.mu.Unlock()
		l.logger.Info("Loaded snapshot %s", snapshot.RunID)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*PresenterService), nil
}

func (l *SnapshotLoader) cached() *PresenterService {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.presenter
}

// Reload drops the cached snapshot so the next call reads the store again
func (l *SnapshotLoader) Reload() {
	l.mu.Lock()
	l.presenter = nil
	l.mu.Unlock()
}

// Set installs snapshot directly, skipping the store
func (l *SnapshotLoader) Set(snapshot *bookings.Snapshot) {
	l.mu.Lock()
	l.presenter = NewPresenterService(snapshot)
	l.mu.Unlock()
}
