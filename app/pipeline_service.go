package app

import (
	"context"
	"fmt"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal"
	"bookingsdash/internal/errors"
	"bookingsdash/ports"
)

// PipelineService turns the source workbook into a persisted snapshot
type PipelineService struct {
	opener   ports.WorkbookOpener
	reshaper *bookings.Reshaper
	repo     ports.SnapshotRepository
	logger   *internal.Logger
}

// NewPipelineService creates a pipeline service
func NewPipelineService(opener ports.WorkbookOpener, reshaper *bookings.Reshaper, repo ports.SnapshotRepository, logger *internal.Logger) *PipelineService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &PipelineService{
		opener:   opener,
		reshaper: reshaper,
		repo:     repo,
		logger:   logger.With("Pipeline"),
	}
}

// Run cleans all three period sheets and saves them as one snapshot.
// Nothing is saved unless every period succeeds.
func (s *PipelineService) Run(ctx context.Context, workbookPath string) (*bookings.Snapshot, error) {
	reader, err := s.opener.Open(ctx, workbookPath)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	tables := make(map[bookings.Period][]bookings.NormalizedRow, len(bookings.Layouts()))
	for _, layout := range bookings.Layouts() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rows, err := s.cleanSheet(ctx, reader, layout, layout.Sheet)
		if err != nil {
			return nil, err
		}
		tables[layout.Period] = rows
	}

	snapshot, err := bookings.NewSnapshot(tables)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build snapshot")
	}
	if err := s.repo.Save(ctx, snapshot); err != nil {
		return nil, errors.Wrap(err, "failed to save snapshot")
	}

	for _, layout := range bookings.Layouts() {
		s.logger.Info("%s: %d rows, fingerprint %s", layout.DisplayName,
			len(snapshot.Tables[layout.Period]), snapshot.Fingerprints[layout.Period].Short())
	}
	s.logger.Info("Saved snapshot %s", snapshot.RunID)
	return snapshot, nil
}

// CleanPeriod cleans a single period without saving. A CSV source is read
// as that period's sheet.
func (s *PipelineService) CleanPeriod(ctx context.Context, path string, period bookings.Period) ([]bookings.NormalizedRow, error) {
	layout, ok := bookings.LayoutFor(period)
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("period %s", period))
	}

	reader, err := s.opener.Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	return s.cleanSheet(ctx, reader, layout, layout.Sheet)
}

func (s *PipelineService) cleanSheet(ctx context.Context, reader ports.WorkbookReader, layout bookings.PeriodLayout, sheet string) ([]bookings.NormalizedRow, error) {
	raw, err := reader.ReadSheet(ctx, sheet)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read %s", layout.DisplayName)
	}
	s.logger.Debug("Read %d rows from %q", len(raw.Rows), sheet)

	reshaped, err := s.reshaper.Reshape(raw, layout)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to reshape %s", layout.DisplayName)
	}

	rows := bookings.Aggregate(bookings.ApplyPeriodFixups(layout, reshaped))
	if err := bookings.Validate(rows); err != nil {
		return nil, errors.Wrapf(err, "invalid %s table", layout.DisplayName)
	}

	s.logger.Info("%s: %d reshaped rows, %d after aggregation", layout.DisplayName, len(reshaped), len(rows))
	return rows, nil
}
