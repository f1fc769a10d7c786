// Package bookings holds the normalized bookings model and the reshaping
// rules that turn a brand-grouped period sheet into one row per
// (brand, category).
package bookings

import (
	"fmt"
	"strings"
	"time"

	"bookingsdash/domain/core"
)

// Category is the metric type a bookings figure is reported in
type Category string

const (
	CategoryMQLs    Category = "MQLs"
	CategoryUnits   Category = "Units"
	CategoryDollars Category = "Dollars"
)

// Categories lists the category tokens in slot order.
var Categories = []Category{CategoryMQLs, CategoryUnits, CategoryDollars}

const categoryCount = 3

func (c Category) String() string { return string(c) }

// index returns the slot of c in Categories, or -1.
func (c Category) index() int {
	for i, known := range Categories {
		if c == known {
			return i
		}
	}
	return -1
}

// ParseCategory matches a category name case-insensitively
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories {
		if strings.EqualFold(strings.TrimSpace(s), string(c)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("unknown category %q (want MQLs, Units or Dollars)", s)
}

// IsCategoryToken reports whether a brand cell is exactly one of the
// category tokens. Only exact tokens continue the current block.
func IsCategoryToken(brand string) bool {
	return Category(brand).index() >= 0
}

// CategoryOf classifies a brand cell by substring, checking MQLs, then
// Units, then Dollars.
func CategoryOf(brand string) (Category, bool) {
	for _, c := range Categories {
		if strings.Contains(brand, string(c)) {
			return c, true
		}
	}
	return "", false
}

// Canonical column names of the normalized table
const (
	ColumnBrand    = "Brand"
	ColumnCategory = "Category"
	ColumnBudget   = "Bookings Budget"
	ColumnForecast = "Bookings Forecast"
	ColumnActual   = "Final Bookings Actual"
)

const (
	// BrandOther rows are dropped before reshaping.
	BrandOther = "Other"
	// BrandMQLsAlias is the legacy spelling rewritten to "MQLs".
	BrandMQLsAlias = "MQLs*"
	// MaxDataRows bounds the sheet body; rows past it are footer totals.
	MaxDataRows = 227
)

// Columns is the column order of the persisted normalized table.
var Columns = []string{ColumnBrand, ColumnCategory, ColumnBudget, ColumnForecast, ColumnActual}

// Figures are the three numbers tracked per (brand, category)
type Figures struct {
	Budget   float64 `json:"bookings_budget" db:"bookings_budget"`
	Forecast float64 `json:"bookings_forecast" db:"bookings_forecast"`
	Actual   float64 `json:"final_bookings_actual" db:"final_bookings_actual"`
}

// Add returns the element-wise sum of f and o
func (f Figures) Add(o Figures) Figures {
	return Figures{
		Budget:   f.Budget + o.Budget,
		Forecast: f.Forecast + o.Forecast,
		Actual:   f.Actual + o.Actual,
	}
}

// IsZero reports whether all three figures are zero
func (f Figures) IsZero() bool {
	return f.Budget == 0 && f.Forecast == 0 && f.Actual == 0
}

// NormalizedRow is one (brand, category) line of a cleaned period table
type NormalizedRow struct {
	Brand    string   `json:"brand" db:"brand"`
	Category Category `json:"category" db:"category"`
	Figures
}

// RawTable is one sheet as read from the workbook: a header row and the
// data rows beneath it. Rows may be shorter than Headers.
type RawTable struct {
	Sheet   string
	Headers []string
	Rows    [][]string
}

// Cell returns the cell at row/col, or "" past the end of a short row.
func (t RawTable) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return ""
	}
	return t.Rows[row][col]
}

// ColumnIndex returns the position of the first header equal to name.
func (t RawTable) ColumnIndex(name string) (int, bool) {
	for i, h := range t.Headers {
		if strings.TrimSpace(h) == name {
			return i, true
		}
	}
	return -1, false
}

// Snapshot is the set of normalized tables produced by one pipeline run.
// Tables are not modified after construction.
type Snapshot struct {
	RunID        core.ID
	CreatedAt    time.Time
	Tables       map[Period][]NormalizedRow
	Fingerprints map[Period]core.Hash
}

// NewSnapshot stamps a fresh run id on tables and fingerprints each one
func NewSnapshot(tables map[Period][]NormalizedRow) (*Snapshot, error) {
	s := &Snapshot{
		RunID:        core.NewID(),
		CreatedAt:    time.Now().UTC(),
		Tables:       make(map[Period][]NormalizedRow, len(tables)),
		Fingerprints: make(map[Period]core.Hash, len(tables)),
	}
	for period, rows := range tables {
		fp, err := Fingerprint(rows)
		if err != nil {
			return nil, fmt.Errorf("fingerprint %s: %w", period, err)
		}
		s.Tables[period] = rows
		s.Fingerprints[period] = fp
	}
	return s, nil
}

// Table returns a copy of the rows for period
func (s *Snapshot) Table(period Period) ([]NormalizedRow, bool) {
	rows, ok := s.Tables[period]
	if !ok {
		return nil, false
	}
	out := make([]NormalizedRow, len(rows))
	copy(out, rows)
	return out, true
}
