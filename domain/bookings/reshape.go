package bookings

import (
	"fmt"
	"strings"

	"bookingsdash/internal/errors"
)

// FigureParser converts a raw figure cell into a number
type FigureParser func(raw string) (float64, error)

// Reshaper turns a raw period sheet into normalized rows
type Reshaper struct {
	parse FigureParser
}

// NewReshaper creates a reshaper that reads figures with parse
func NewReshaper(parse FigureParser) *Reshaper {
	return &Reshaper{parse: parse}
}

// projectedRow is a sheet row reduced to brand plus the three figure cells.
// Line is the 1-based sheet row, for error messages.
type projectedRow struct {
	Line     int
	Brand    string
	Budget   string
	Forecast string
	Actual   string
}

// Prepare truncates raw to MaxDataRows data rows and drops columns that are
// blank in every remaining row.
func Prepare(raw RawTable) RawTable {
	rows := raw.Rows
	if len(rows) > MaxDataRows {
		rows = rows[:MaxDataRows]
	}
	truncated := RawTable{Sheet: raw.Sheet, Headers: raw.Headers, Rows: rows}

	var keep []int
	for col := range raw.Headers {
		for row := range rows {
			if strings.TrimSpace(truncated.Cell(row, col)) != "" {
				keep = append(keep, col)
				break
			}
		}
	}

	out := RawTable{
		Sheet:   raw.Sheet,
		Headers: make([]string, len(keep)),
		Rows:    make([][]string, len(rows)),
	}
	for i, col := range keep {
		out.Headers[i] = raw.Headers[col]
	}
	for row := range rows {
		cells := make([]string, len(keep))
		for i, col := range keep {
			cells[i] = truncated.Cell(row, col)
		}
		out.Rows[row] = cells
	}
	return out
}

// Reshape converts one period sheet into normalized rows in brand-block
// order, three rows per block.
func (r *Reshaper) Reshape(raw RawTable, layout PeriodLayout) ([]NormalizedRow, error) {
	// Headers are checked before anything is dropped so a header-only sheet
	// with the wrong columns still fails.
	if _, _, err := layoutColumns(raw, layout); err != nil {
		return nil, err
	}
	prepared := Prepare(raw)
	if len(prepared.Rows) == 0 {
		return nil, nil
	}
	projected, err := project(prepared, layout)
	if err != nil {
		return nil, err
	}
	return r.fold(projected, raw.Sheet)
}

// project applies brand forward-fill, the Other exclusion and the MQLs*
// alias, then keeps brand and the three layout columns.
func project(t RawTable, layout PeriodLayout) ([]projectedRow, error) {
	brandCol, figureCols, err := layoutColumns(t, layout)
	if err != nil {
		return nil, err
	}

	out := make([]projectedRow, 0, len(t.Rows))
	carried := ""
	for row := range t.Rows {
		brand := strings.TrimSpace(t.Cell(row, brandCol))
		if brand == "" {
			brand = carried
		} else {
			carried = brand
		}

		if brand == BrandOther {
			continue
		}
		if brand == BrandMQLsAlias {
			brand = string(CategoryMQLs)
		}

		out = append(out, projectedRow{
			Line:     row + 2,
			Brand:    brand,
			Budget:   t.Cell(row, figureCols[0]),
			Forecast: t.Cell(row, figureCols[1]),
			Actual:   t.Cell(row, figureCols[2]),
		})
	}
	return out, nil
}

// layoutColumns locates the brand column and the budget, forecast and actual
// columns of layout in t.
func layoutColumns(t RawTable, layout PeriodLayout) (int, [3]int, error) {
	var figureCols [3]int
	sheet := t.Sheet
	if sheet == "" {
		sheet = layout.Sheet
	}

	brandCol, ok := t.ColumnIndex(ColumnBrand)
	if !ok {
		return 0, figureCols, errors.MissingColumn(sheet, ColumnBrand)
	}
	for i, name := range []string{layout.BudgetColumn, layout.ForecastColumn, layout.ActualColumn} {
		idx, ok := t.ColumnIndex(name)
		if !ok {
			return 0, figureCols, errors.MissingColumn(sheet, name)
		}
		figureCols[i] = idx
	}
	return brandCol, figureCols, nil
}

// blockState is the fold accumulator: the brand owning the current block
// and the category slots filled so far.
type blockState struct {
	brand  string
	open   bool
	filled [categoryCount]bool
	slots  [categoryCount]Figures
}

func (s blockState) with(c Category, f Figures) blockState {
	i := c.index()
	s.filled[i] = true
	s.slots[i] = f
	return s
}

// flush appends the block's three rows to out, zero rows for empty slots.
func (s blockState) flush(out []NormalizedRow) []NormalizedRow {
	if !s.open {
		return out
	}
	for i, c := range Categories {
		row := NormalizedRow{Brand: s.brand, Category: c}
		if s.filled[i] {
			row.Figures = s.slots[i]
		}
		out = append(out, row)
	}
	return out
}

func (r *Reshaper) fold(rows []projectedRow, sheet string) ([]NormalizedRow, error) {
	var out []NormalizedRow
	state := blockState{}

	for _, row := range rows {
		// Leading rows with no brand to inherit belong to no block.
		if row.Brand == "" {
			continue
		}
		if !IsCategoryToken(row.Brand) {
			out = state.flush(out)
			state = blockState{brand: row.Brand, open: true}
		}

		category, ok := CategoryOf(row.Brand)
		if !ok || !state.open {
			continue
		}
		figures, err := r.figures(row, sheet)
		if err != nil {
			return nil, err
		}
		state = state.with(category, figures)
	}

	return state.flush(out), nil
}

func (r *Reshaper) figures(row projectedRow, sheet string) (Figures, error) {
	var f Figures
	targets := []struct {
		column string
		raw    string
		dst    *float64
	}{
		{ColumnBudget, row.Budget, &f.Budget},
		{ColumnForecast, row.Forecast, &f.Forecast},
		{ColumnActual, row.Actual, &f.Actual},
	}
	for _, t := range targets {
		v, err := r.parse(t.raw)
		if err != nil {
			return Figures{}, errors.Wrap(err, fmt.Sprintf("sheet %q row %d column %q", sheet, row.Line, t.column))
		}
		*t.dst = v
	}
	return f, nil
}
