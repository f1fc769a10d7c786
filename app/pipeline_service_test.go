package app

import (
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"bookingsdash/adapters/coercer"
	"bookingsdash/adapters/excel"
	"bookingsdash/domain/bookings"
	"bookingsdash/internal"
	"bookingsdash/internal/errors"
	"bookingsdash/internal/sample"
	"bookingsdash/internal/testkit"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPipeline(repo *testkit.MemoryRepository) *PipelineService {
	return NewPipelineService(
		excel.NewOpener(excel.DefaultExcelConfig()),
		bookings.NewReshaper(coercer.ParseFigure),
		repo,
		internal.NewLogger(internal.LogLevelError),
	)
}

func writeSample(t *testing.T, sheets ...sample.Sheet) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bookings.xlsx")
	require.NoError(t, sample.WriteWorkbook(path, sheets...))
	return path
}

func figures(b, f, a float64) bookings.Figures {
	return bookings.Figures{Budget: b, Forecast: f, Actual: a}
}

func TestPipelineRun(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	path := writeSample(t, testkit.SampleSheets()...)

	snapshot, err := newTestPipeline(repo).Run(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.Count())

	jan := snapshot.Tables[bookings.PeriodJan]
	assert.Equal(t, []bookings.NormalizedRow{
		{Brand: "Acme", Category: bookings.CategoryDollars, Figures: figures(105, 85, 95)},
		{Brand: "Acme", Category: bookings.CategoryMQLs, Figures: figures(40, 38, 45)},
		{Brand: "Acme", Category: bookings.CategoryUnits, Figures: figures(10, 9, 12)},
		{Brand: "Globex", Category: bookings.CategoryDollars, Figures: figures(0, 20, 30)},
		{Brand: "Globex", Category: bookings.CategoryMQLs},
		{Brand: "Globex", Category: bookings.CategoryUnits},
	}, jan)

	feb := snapshot.Tables[bookings.PeriodFeb]
	require.Len(t, feb, 6)
	assert.Equal(t, "Procentive", feb[5].Brand, "February keeps Procentive")
	assert.Equal(t, figures(6, 6, 7), feb[5].Figures)

	ytd := snapshot.Tables[bookings.PeriodYTD]
	require.Len(t, ytd, 6)
	assert.Equal(t, figures(1, 1, 2), ytd[4].Figures)

	for _, layout := range bookings.Layouts() {
		assert.NoError(t, bookings.Validate(snapshot.Tables[layout.Period]))
		assert.False(t, snapshot.Fingerprints[layout.Period].IsEmpty())
	}
}

func TestPipelineRunIsDeterministic(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	path := writeSample(t, testkit.SampleSheets()...)
	pipeline := newTestPipeline(repo)

	first, err := pipeline.Run(context.Background(), path)
	require.NoError(t, err)
	second, err := pipeline.Run(context.Background(), path)
	require.NoError(t, err)

	assert.NotEqual(t, first.RunID, second.RunID)
	assert.Equal(t, first.Fingerprints, second.Fingerprints)
}

func TestPipelineMissingSheetSavesNothing(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	sheets := testkit.SampleSheets()
	path := writeSample(t, sheets[0], sheets[1])

	_, err := newTestPipeline(repo).Run(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingSheet, errors.GetCode(err))
	assert.Equal(t, 0, repo.Count())
}

func TestPipelineMissingColumnSavesNothing(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	sheets := testkit.SampleSheets()
	// Replace the February actual column header.
	sheets[1].Cells[0][4] = "Feb Final Bookings Actual"
	path := writeSample(t, sheets...)

	_, err := newTestPipeline(repo).Run(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeMissingColumn, errors.GetCode(err))
	assert.Contains(t, err.Error(), "Feb MM Bookings Actual")
	assert.Equal(t, 0, repo.Count())
}

func TestPipelineNonNumericFigure(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	sheets := testkit.SampleSheets()
	sheets[2] = sample.PeriodSheet(bookings.PeriodYTD,
		[]interface{}{"Acme"},
		[]interface{}{"Dollars", 1, "n/a", 1},
	)
	path := writeSample(t, sheets...)

	_, err := newTestPipeline(repo).Run(context.Background(), path)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, 0, repo.Count())
}

func TestPipelineSaveFailure(t *testing.T) {
	repo := testkit.NewMemoryRepository()
	repo.FailSave = stderrors.New("disk full")
	path := writeSample(t, testkit.SampleSheets()...)

	_, err := newTestPipeline(repo).Run(context.Background(), path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestPipelineMissingWorkbook(t *testing.T) {
	_, err := newTestPipeline(testkit.NewMemoryRepository()).Run(context.Background(), filepath.Join(t.TempDir(), "nope.xlsx"))
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestCleanPeriodFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feb.csv")
	content := "Brand,Feb Bookings Budget,Feb Bookings Forecast,Feb MM Bookings Actual\n" +
		"Acme,,,\n" +
		"Dollars,\"1,200\",$900,(50)\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	rows, err := newTestPipeline(testkit.NewMemoryRepository()).CleanPeriod(context.Background(), path, bookings.PeriodFeb)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, figures(1200, 900, -50), rows[0].Figures)

	_, err = newTestPipeline(testkit.NewMemoryRepository()).CleanPeriod(context.Background(), path, bookings.Period("Mar"))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
