package excel

import (
	"context"
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"
	"bookingsdash/ports"

	"github.com/xuri/excelize/v2"
)

// Opener opens .xlsx workbooks with excelize and .csv files as a single sheet
type Opener struct {
	config ExcelConfig
}

// NewOpener creates an opener with the given config
func NewOpener(config ExcelConfig) *Opener {
	return &Opener{config: config}
}

// Open implements ports.WorkbookOpener
func (o *Opener) Open(ctx context.Context, path string) (ports.WorkbookReader, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("workbook %s", path))
	}

	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return &CSVReader{filePath: path, comma: o.config.CSVComma}, nil
	}

	startTime := time.Now()
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to open workbook %s", path)
	}
	log.Printf("[ExcelReader] Workbook %s opened in %.2fms", path, float64(time.Since(startTime).Nanoseconds())/1e6)

	return &ExcelReader{file: f, filePath: path, raw: o.config.RawCellValues}, nil
}

// ExcelReader reads sheets of an opened .xlsx workbook
type ExcelReader struct {
	file     *excelize.File
	filePath string
	raw      bool
}

// ListSheets returns sheet names in workbook order
func (r *ExcelReader) ListSheets(ctx context.Context) ([]string, error) {
	return r.file.GetSheetList(), nil
}

// ReadSheet reads a named sheet; the first row is the header
func (r *ExcelReader) ReadSheet(ctx context.Context, sheet string) (bookings.RawTable, error) {
	idx, err := r.file.GetSheetIndex(sheet)
	if err != nil || idx < 0 {
		return bookings.RawTable{}, errors.MissingSheet(sheet)
	}

	readStart := time.Now()
	rows, err := r.file.GetRows(sheet, excelize.Options{RawCellValue: r.raw})
	if err != nil {
		return bookings.RawTable{}, errors.Wrapf(err, "failed to read sheet %q", sheet)
	}
	log.Printf("[ExcelReader] Sheet %q read in %.2fms (%d rows)", sheet, float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	return processRows(sheet, rows)
}

// Close releases the workbook
func (r *ExcelReader) Close() error {
	return r.file.Close()
}

// CSVReader exposes a single CSV file as a one-sheet workbook. Any sheet name
// resolves to the file's contents.
type CSVReader struct {
	filePath string
	comma    rune
}

// ListSheets returns the file's base name as the only sheet
func (r *CSVReader) ListSheets(ctx context.Context) ([]string, error) {
	base := filepath.Base(r.filePath)
	return []string{strings.TrimSuffix(base, filepath.Ext(base))}, nil
}

// ReadSheet reads the whole CSV file
func (r *CSVReader) ReadSheet(ctx context.Context, sheet string) (bookings.RawTable, error) {
	file, err := os.Open(r.filePath)
	if err != nil {
		return bookings.RawTable{}, errors.Wrapf(err, "failed to open CSV file %s", r.filePath)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	if r.comma != 0 {
		reader.Comma = r.comma
	}
	rows, err := reader.ReadAll()
	if err != nil {
		return bookings.RawTable{}, errors.Wrapf(errors.InvalidInput(err.Error()), "failed to read CSV file %s", r.filePath)
	}
	log.Printf("[CSVReader] %s read (%d rows)", r.filePath, len(rows))

	return processRows(sheet, rows)
}

// Close is a no-op; the file is opened per read
func (r *CSVReader) Close() error { return nil }

// processRows splits the header from the data rows and trims every cell
func processRows(sheet string, rows [][]string) (bookings.RawTable, error) {
	if len(rows) == 0 {
		return bookings.RawTable{}, errors.InvalidInput(fmt.Sprintf("sheet %q has no header row", sheet))
	}

	headers := make([]string, len(rows[0]))
	for i, header := range rows[0] {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		cells := make([]string, len(row))
		for j, cell := range row {
			cells[j] = strings.TrimSpace(cell)
		}
		dataRows = append(dataRows, cells)
	}

	return bookings.RawTable{Sheet: sheet, Headers: headers, Rows: dataRows}, nil
}
