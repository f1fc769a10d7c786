package testkit

import (
	"testing"

	"bookingsdash/domain/bookings"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository(t *testing.T) {
	repo := NewMemoryRepository()
	_, err := repo.Load(t.Context())
	require.Error(t, err)

	snap, err := bookings.NewSnapshot(map[bookings.Period][]bookings.NormalizedRow{})
	require.NoError(t, err)
	require.NoError(t, repo.Save(t.Context(), snap))

	loaded, err := repo.Load(t.Context())
	require.NoError(t, err)
	assert.Equal(t, snap.RunID, loaded.RunID)
	assert.Equal(t, 1, repo.Count())
}
