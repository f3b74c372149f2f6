package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/cinehall/cinema-booking/internal/model"
)

func TestFileStoreMissingFilesLoadEmpty(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)

	ctx := context.Background()
	reservations, err := s.LoadReservations(ctx)
	require.NoError(t, err)
	assert.Empty(t, reservations)

	catalog, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Empty(t, catalog)
}

func TestFileStoreRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	now := time.Date(2026, 8, 29, 14, 0, 0, 0, time.UTC)
	in := []*model.Reservation{{
		Code:            "R-482913",
		Movie:           "Encanto",
		Showtime:        "1:00 PM",
		Price:           200,
		Quantity:        2,
		Seats:           []string{"A1", "A2"},
		Passkey:         "hunter2",
		Concessions:     map[string]int{"Popcorn Regular": 2},
		ConcessionTotal: 170,
		Status:          model.StatusPending,
		PaymentDeadline: now.Add(15 * time.Minute),
		CreatedAt:       now,
		UpdatedAt:       now,
	}}
	require.NoError(t, s.SaveReservations(ctx, in))

	out, err := s.LoadReservations(ctx)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, in[0].Code, out[0].Code)
	assert.Equal(t, in[0].Seats, out[0].Seats)
	assert.Equal(t, in[0].Concessions, out[0].Concessions)
	assert.True(t, in[0].PaymentDeadline.Equal(out[0].PaymentDeadline))
}

func TestFileStoreCorruptFileLoadsEmpty(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bookings.json"), []byte("{not json"), 0o644))

	s, err := NewFileStore(dir, zap.NewNop())
	require.NoError(t, err)

	reservations, err := s.LoadReservations(context.Background())
	require.NoError(t, err)
	assert.Empty(t, reservations)
}

func TestFileStoreCatalogRoundTrip(t *testing.T) {
	s, err := NewFileStore(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	ctx := context.Background()

	in := model.DefaultCatalog()
	require.NoError(t, s.SaveCatalog(ctx, in))
	out, err := s.LoadCatalog(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)
}
