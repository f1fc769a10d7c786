package ports

import (
	"context"

	"bookingsdash/domain/bookings"
)

// WorkbookReader provides read-only access to the sheets of a source workbook
type WorkbookReader interface {
	// ReadSheet returns the header row and data rows of a named sheet.
	// A sheet that does not exist yields a MISSING_SHEET error.
	ReadSheet(ctx context.Context, sheet string) (bookings.RawTable, error)
	// ListSheets returns sheet names in workbook order
	ListSheets(ctx context.Context) ([]string, error)
	Close() error
}

// WorkbookOpener opens a workbook by path
type WorkbookOpener interface {
	Open(ctx context.Context, path string) (WorkbookReader, error)
}
