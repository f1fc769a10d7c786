package bookings

import (
	"fmt"
	"testing"

	"bookingsdash/adapters/coercer"
	"bookingsdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var janLayout, _ = LayoutFor(PeriodJan)

var janHeaders = []string{"Brand", "Jan Bookings Budget", "Jan Bookings Forecast", "Jan Final Bookings Actual"}

func sheet(rows ...[]string) RawTable {
	return RawTable{Sheet: janLayout.Sheet, Headers: janHeaders, Rows: rows}
}

func newTestReshaper() *Reshaper {
	return NewReshaper(coercer.ParseFigure)
}

// find returns the row for brand/category, failing the test when absent.
func find(t *testing.T, rows []NormalizedRow, brand string, c Category) NormalizedRow {
	t.Helper()
	for _, r := range rows {
		if r.Brand == brand && r.Category == c {
			return r
		}
	}
	t.Fatalf("no row for (%s, %s) in %v", brand, c, rows)
	return NormalizedRow{}
}

func TestReshapeBrandBlock(t *testing.T) {
	// Acme has Dollars and Units rows but no MQLs row.
	raw := sheet(
		[]string{"Acme", "", "", ""},
		[]string{"Dollars", "100", "95", "90"},
		[]string{"Units", "10", "11", "12"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, Figures{Budget: 100, Forecast: 95, Actual: 90}, find(t, rows, "Acme", CategoryDollars).Figures)
	assert.Equal(t, Figures{Budget: 10, Forecast: 11, Actual: 12}, find(t, rows, "Acme", CategoryUnits).Figures)
	assert.True(t, find(t, rows, "Acme", CategoryMQLs).IsZero(), "missing category is synthesized as zeros")
}

func TestReshapeEmitsThreeRowsPerBlock(t *testing.T) {
	raw := sheet(
		[]string{"Acme"},
		[]string{"MQLs", "1", "2", "3"},
		[]string{"Globex"},
		[]string{"Initech"},
		[]string{"Dollars", "5", "5", "5"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 9)

	brands := []string{"Acme", "Globex", "Initech"}
	for i, brand := range brands {
		for j, c := range Categories {
			assert.Equal(t, brand, rows[i*3+j].Brand)
			assert.Equal(t, c, rows[i*3+j].Category)
		}
	}
	assert.True(t, find(t, rows, "Globex", CategoryDollars).IsZero())
	assert.Equal(t, 5.0, find(t, rows, "Initech", CategoryDollars).Actual)
}

func TestReshapeForwardFillsBrand(t *testing.T) {
	// Blank brand cells inherit "Acme"; each filled row is a fresh Acme block.
	raw := sheet(
		[]string{"Acme", "10", "0", "0"},
		[]string{"", "5", "0", "0"},
		[]string{"", "0", "3", "0"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 9)
	for _, r := range rows {
		assert.Equal(t, "Acme", r.Brand)
		assert.True(t, r.IsZero(), "brand rows carry no category figures")
	}
}

func TestReshapeExcludesOther(t *testing.T) {
	raw := sheet(
		[]string{"Other", "1", "1", "1"},
		[]string{"", "1", "1", "1"},
		[]string{"Acme"},
		[]string{"Dollars", "7", "7", "7"},
		[]string{"Other"},
		[]string{"Units", "9", "9", "9"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	for _, r := range rows {
		assert.NotEqual(t, BrandOther, r.Brand)
	}
	require.Len(t, rows, 3)
	// The Units row belongs to the Acme block once Other is removed.
	assert.Equal(t, 9.0, find(t, rows, "Acme", CategoryUnits).Budget)
}

func TestReshapeAliasJoinsPrecedingBrand(t *testing.T) {
	// "MQLs*" is rewritten to "MQLs" and then acts as a category row.
	raw := sheet(
		[]string{"Acme"},
		[]string{"MQLs*", "40", "41", "42"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Figures{Budget: 40, Forecast: 41, Actual: 42}, find(t, rows, "Acme", CategoryMQLs).Figures)
	for _, r := range rows {
		assert.NotEqual(t, BrandMQLsAlias, r.Brand)
	}
}

func TestReshapeSubstringCategoryMatch(t *testing.T) {
	raw := sheet(
		[]string{"Acme"},
		[]string{"MQLs", "1", "1", "1"},
		[]string{"MQLs", "2", "2", "2"},
		// Not an exact token: starts a new block and also fills its own Units slot.
		[]string{"Net Units", "3", "3", "3"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, 2.0, find(t, rows, "Acme", CategoryMQLs).Budget, "later row overwrites the slot")
	assert.Equal(t, 3.0, find(t, rows, "Net Units", CategoryUnits).Actual)
}

func TestReshapeTrimsBrandCells(t *testing.T) {
	// Padding around a category token does not start a new brand block.
	raw := sheet(
		[]string{"  Acme "},
		[]string{" Dollars ", "100", "80", "90"},
		[]string{"Units\t", "10", "9", "12"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, 100.0, find(t, rows, "Acme", CategoryDollars).Budget)
	assert.Equal(t, 12.0, find(t, rows, "Acme", CategoryUnits).Actual)
}

func TestReshapeEmptyInput(t *testing.T) {
	tests := []struct {
		name string
		raw  RawTable
	}{
		{name: "no rows", raw: sheet()},
		{name: "only category rows", raw: sheet([]string{"MQLs", "1", "2", "3"}, []string{"Units", "4", "5", "6"})},
		{name: "leading blank brand", raw: sheet([]string{"", "1", "2", "3"}, []string{"MQLs", "1", "2", "3"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := newTestReshaper().Reshape(tt.raw, janLayout)
			require.NoError(t, err)
			assert.Empty(t, rows)
		})
	}
}

func TestReshapeHeaderOnlySheetChecksColumns(t *testing.T) {
	tests := []struct {
		name    string
		headers []string
		missing string
	}{
		{name: "unrelated headers", headers: []string{"Product", "Something Else"}, missing: ColumnBrand},
		{name: "wrong period columns", headers: []string{"Brand", "Feb Bookings Budget", "Feb Bookings Forecast", "Feb MM Bookings Actual"}, missing: "Jan Bookings Budget"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := RawTable{Sheet: janLayout.Sheet, Headers: tt.headers}

			rows, err := newTestReshaper().Reshape(raw, janLayout)
			require.Error(t, err)
			assert.Nil(t, rows)
			assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestReshapeMissingColumn(t *testing.T) {
	raw := RawTable{
		Sheet:   janLayout.Sheet,
		Headers: []string{"Brand", "Jan Bookings Budget", "Jan Bookings Forecast"},
		Rows:    [][]string{{"Acme", "1", "2"}},
	}

	_, err := newTestReshaper().Reshape(raw, janLayout)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Jan Final Bookings Actual")
}

func TestReshapeAllEmptyColumnIsMissing(t *testing.T) {
	// A figure column with no values is dropped before projection.
	raw := sheet(
		[]string{"Acme", "1", "2", ""},
		[]string{"Dollars", "1", "2", ""},
	)

	_, err := newTestReshaper().Reshape(raw, janLayout)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
}

func TestReshapeNonNumericFigureFails(t *testing.T) {
	raw := sheet(
		[]string{"Acme"},
		[]string{"Dollars", "100", "TBD", "90"},
	)

	_, err := newTestReshaper().Reshape(raw, janLayout)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "row 3")
	assert.Contains(t, err.Error(), ColumnForecast)
}

func TestReshapeIgnoresFiguresOnBrandRows(t *testing.T) {
	raw := sheet(
		[]string{"Acme", "subtotal", "x", "y"},
		[]string{"Dollars", "1", "1", "1"},
	)

	rows, err := newTestReshaper().Reshape(raw, janLayout)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

func TestPrepareTruncatesFooter(t *testing.T) {
	var body [][]string
	for i := 0; i < MaxDataRows; i++ {
		body = append(body, []string{fmt.Sprintf("Brand %d", i), "1", "1", "1"})
	}
	body = append(body, []string{"Grand Total", "999", "999", "999"})

	prepared := Prepare(sheet(body...))
	assert.Len(t, prepared.Rows, MaxDataRows)
	assert.Equal(t, "Brand 226", prepared.Rows[MaxDataRows-1][0])
}

func TestPrepareDropsEmptyColumns(t *testing.T) {
	raw := RawTable{
		Headers: []string{"Brand", "Notes", "Jan Bookings Budget", "Trailing"},
		Rows: [][]string{
			{"Acme", "", "1"},
			{"Dollars", " ", "2"},
		},
	}

	prepared := Prepare(raw)
	assert.Equal(t, []string{"Brand", "Jan Bookings Budget"}, prepared.Headers)
	assert.Equal(t, [][]string{{"Acme", "1"}, {"Dollars", "2"}}, prepared.Rows)
}
