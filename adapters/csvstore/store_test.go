package csvstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"bookingsdash/domain/bookings"
	"bookingsdash/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSnapshot(t *testing.T) *bookings.Snapshot {
	t.Helper()
	tables := map[bookings.Period][]bookings.NormalizedRow{}
	for i, layout := range bookings.Layouts() {
		tables[layout.Period] = []bookings.NormalizedRow{
			{Brand: "Acme", Category: bookings.CategoryDollars, Figures: bookings.Figures{Budget: float64(100 * (i + 1)), Forecast: 90, Actual: 95.5}},
			{Brand: "Acme", Category: bookings.CategoryMQLs},
			{Brand: "Acme", Category: bookings.CategoryUnits, Figures: bookings.Figures{Budget: 3, Forecast: 4, Actual: 5}},
		}
	}
	snap, err := bookings.NewSnapshot(tables)
	require.NoError(t, err)
	return snap
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	snap := sampleSnapshot(t)
	require.NoError(t, store.Save(ctx, snap))

	for _, name := range []string{"jan_cleaned.csv", "feb_cleaned.csv", "ytd_cleaned.csv", ManifestFile} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	data, err := os.ReadFile(filepath.Join(dir, "jan_cleaned.csv"))
	require.NoError(t, err)
	assert.Equal(t,
		"Brand,Category,Bookings Budget,Bookings Forecast,Final Bookings Actual\n"+
			"Acme,Dollars,100,90,95.5\n"+
			"Acme,MQLs,0,0,0\n"+
			"Acme,Units,3,4,5\n",
		string(data))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, snap.RunID, loaded.RunID)
	assert.True(t, snap.CreatedAt.Equal(loaded.CreatedAt))
	assert.Equal(t, snap.Tables, loaded.Tables)
	assert.Equal(t, snap.Fingerprints, loaded.Fingerprints)

	leftovers, err := filepath.Glob(filepath.Join(dir, ".*.tmp"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestSaveIncompleteSnapshotWritesNothing(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	snap := sampleSnapshot(t)
	delete(snap.Tables, bookings.PeriodYTD)

	err := store.Save(context.Background(), snap)
	require.Error(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no table or temp file is left behind")
}

func TestSaveKeepsPreviousFilesOnFailure(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()

	first := sampleSnapshot(t)
	require.NoError(t, store.Save(ctx, first))

	broken := sampleSnapshot(t)
	delete(broken.Tables, bookings.PeriodFeb)
	require.Error(t, store.Save(ctx, broken))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.RunID, loaded.RunID)
}

func TestLoadWithoutManifest(t *testing.T) {
	dir := t.TempDir()
	header := "Brand,Category,Bookings Budget,Bookings Forecast,Final Bookings Actual\n"
	for _, layout := range bookings.Layouts() {
		body := header + "Acme,Dollars,1.0,2.0,3.0\nAcme,MQLs,0,0,0\nAcme,Units,0,0,0\n"
		require.NoError(t, os.WriteFile(filepath.Join(dir, layout.ArtifactFile), []byte(body), 0o644))
	}

	loaded, err := NewStore(dir).Load(context.Background())
	require.NoError(t, err)
	assert.True(t, loaded.RunID.IsEmpty())
	rows, ok := loaded.Table(bookings.PeriodJan)
	require.True(t, ok)
	assert.Equal(t, 3.0, rows[0].Actual)
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := NewStore(t.TempDir()).Load(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestLoadRejectsManifestRunID(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)
	ctx := context.Background()
	require.NoError(t, store.Save(ctx, sampleSnapshot(t)))

	manifest := `{"run_id":"not-a-uuid","created_at":"2024-03-01T00:00:00Z"}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, ManifestFile), []byte(manifest), 0o644))

	_, err := store.Load(ctx)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Contains(t, err.Error(), "not-a-uuid")
}
