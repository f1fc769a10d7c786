package excel

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"
	"bookingsdash/internal/sample"
	"bookingsdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSample(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	require.NoError(t, sample.WriteWorkbook(path, testkit.SampleSheets()...))
	return path
}

func TestReadSheet(t *testing.T) {
	ctx := context.Background()
	reader, err := NewOpener(DefaultExcelConfig()).Open(ctx, writeSample(t))
	require.NoError(t, err)
	defer reader.Close()

	sheets, err := reader.ListSheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Jan Final by Product", "Feb Final by Product", "Con YTD Final by Prod DET"}, sheets)

	table, err := reader.ReadSheet(ctx, "Jan Final by Product")
	require.NoError(t, err)
	assert.Equal(t, "Jan Final by Product", table.Sheet)
	assert.Equal(t, []string{"Brand", "Notes", "Jan Bookings Budget", "Jan Bookings Forecast", "Jan Final Bookings Actual"}, table.Headers)
	require.NotEmpty(t, table.Rows)
	assert.Equal(t, "Acme", table.Cell(0, 0))
	assert.Equal(t, "MQLs*", table.Cell(1, 0))
	assert.Equal(t, "40", table.Cell(1, 2))
}

func TestReadSheetMissing(t *testing.T) {
	ctx := context.Background()
	reader, err := NewOpener(DefaultExcelConfig()).Open(ctx, writeSample(t))
	require.NoError(t, err)
	defer reader.Close()

	_, err = reader.ReadSheet(ctx, "Mar Final by Product")
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingSheet, errors.GetCode(err))
}

func TestOpenMissingFile(t *testing.T) {
	_, err := NewOpener(DefaultExcelConfig()).Open(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestReadCSVAsSingleSheet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feb.csv")
	content := "Brand , Feb Bookings Budget,Feb Bookings Forecast,Feb MM Bookings Actual\nAcme,,,\nDollars, 1 ,2,3\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ctx := context.Background()
	reader, err := NewOpener(DefaultExcelConfig()).Open(ctx, path)
	require.NoError(t, err)
	defer reader.Close()

	sheets, err := reader.ListSheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"feb"}, sheets)

	table, err := reader.ReadSheet(ctx, "Feb Final by Product")
	require.NoError(t, err)
	assert.Equal(t, "Brand", table.Headers[0])
	assert.Equal(t, "1", table.Cell(1, 1))

	layout, _ := bookings.LayoutFor(bookings.PeriodFeb)
	_, ok := table.ColumnIndex(layout.ActualColumn)
	assert.True(t, ok)
}

func TestProcessRowsRequiresHeader(t *testing.T) {
	_, err := processRows("Empty", nil)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}
