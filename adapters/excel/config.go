package excel

// ExcelConfig holds configuration for reading the bookings workbook
type ExcelConfig struct {
	// RawCellValues reads stored values instead of display-formatted text,
	// so "$1,200" formatting on a cell holding 1200 does not reach the coercer.
	RawCellValues bool `json:"raw_cell_values"`
	// CSVComma is the field separator used for .csv inputs
	CSVComma rune `json:"csv_comma"`
}

// DefaultExcelConfig returns sensible defaults for workbook reading
func DefaultExcelConfig() ExcelConfig {
	return ExcelConfig{
		RawCellValues: true,
		CSVComma:      ',',
	}
}
