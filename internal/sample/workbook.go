// Package sample writes bookings workbooks in the three-sheet layout, either
// from hand-built sheets or from a seeded generator.
package sample

import (
	"fmt"

	"bookingsdash/domain/bookings"

	"github.com/xuri/excelize/v2"
)

// Sheet is a named grid of cells; the first row is the header
type Sheet struct {
	Name  string
	Cells [][]interface{}
}

// WriteWorkbook saves sheets, in order, as an .xlsx file at path
func WriteWorkbook(path string, sheets ...Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("workbook needs at least one sheet")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet.Name); err != nil {
				return fmt.Errorf("rename first sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.Name); err != nil {
			return fmt.Errorf("create sheet %q: %w", sheet.Name, err)
		}

		for r, row := range sheet.Cells {
			cell, err := excelize.CoordinatesToCellName(1, r+1)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(sheet.Name, cell, &values); err != nil {
				return fmt.Errorf("write %s!%s: %w", sheet.Name, cell, err)
			}
		}
	}

	return f.SaveAs(path)
}

// PeriodSheet builds a sheet in the layout of period with body rows below
// the header. Each body row is brand followed by budget, forecast, actual.
func PeriodSheet(period bookings.Period, body ...[]interface{}) Sheet {
	layout, ok := bookings.LayoutFor(period)
	if !ok {
		panic(fmt.Sprintf("sample: unknown period %q", period))
	}
	cells := [][]interface{}{
		{bookings.ColumnBrand, "Notes", layout.BudgetColumn, layout.ForecastColumn, layout.ActualColumn},
	}
	for _, row := range body {
		// Notes stays empty so the reshaper has a blank column to drop.
		withNotes := append([]interface{}{row[0], nil}, row[1:]...)
		cells = append(cells, withNotes)
	}
	return Sheet{Name: layout.Sheet, Cells: cells}
}
