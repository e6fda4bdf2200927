package storage

import (
	"context"
	"io"
	"testing"

	"cabanas/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	logger := zerolog.New(io.Discard)
	db, err := NewSQLite(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func sampleBookings() []models.Booking {
	return []models.Booking{
		{
			ID:            "b1",
			GuestName:     "Ana López",
			GuestPhone:    "+54 11 5555",
			Cabin:         "Cabaña 1",
			CheckIn:       "2024-03-10",
			CheckOut:      "2024-03-14",
			PricePerNight: 100,
			Status:        models.StatusPaid,
			TotalPrice:    400,
		},
		{
			ID:            "b2",
			GuestName:     "Beto",
			Cabin:         "Cabaña 2",
			CheckIn:       "2024-03-01",
			CheckOut:      "2024-03-03",
			PricePerNight: 80,
			Status:        models.StatusDeposit,
			TotalPrice:    160,
		},
	}
}

func TestSQLiteLoadEmpty(t *testing.T) {
	db := setupSQLite(t)

	bookings, notes, err := db.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, bookings)
	assert.Empty(t, notes)
}

func TestSQLiteSaveLoadRoundTrip(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	want := sampleBookings()
	require.NoError(t, db.Save(ctx, want, "cambiar sábanas"))

	got, notes, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, "cambiar sábanas", notes)
}

func TestSQLiteSaveReplacesPreviousSnapshot(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, sampleBookings(), "v1"))

	replacement := []models.Booking{
		{ID: "b3", GuestName: "Carla", Cabin: "Cabaña 3", CheckIn: "2024-04-01", CheckOut: "2024-04-05", Status: models.StatusPending},
	}
	require.NoError(t, db.Save(ctx, replacement, "v2"))

	got, notes, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "b3", got[0].ID)
	assert.Equal(t, "v2", notes)
}

func TestSQLitePreservesInsertionOrder(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	// Deliberately not sorted by any column.
	want := []models.Booking{
		{ID: "z", GuestName: "Zoe", Cabin: "Cabaña 3", CheckIn: "2024-05-01", CheckOut: "2024-05-02"},
		{ID: "a", GuestName: "Ana", Cabin: "Cabaña 1", CheckIn: "2024-01-01", CheckOut: "2024-01-02"},
		{ID: "m", GuestName: "Mara", Cabin: "Cabaña 2", CheckIn: "2024-03-01", CheckOut: "2024-03-02"},
	}
	require.NoError(t, db.Save(ctx, want, ""))

	got, _, err := db.Load(ctx)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "z", got[0].ID)
	assert.Equal(t, "a", got[1].ID)
	assert.Equal(t, "m", got[2].ID)
}

func TestSQLiteSaveEmptyClearsEverything(t *testing.T) {
	db := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, db.Save(ctx, sampleBookings(), "algo"))
	require.NoError(t, db.Save(ctx, nil, ""))

	got, notes, err := db.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Empty(t, notes)
}
