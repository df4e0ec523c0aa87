package postgres

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/numeric"
	"github.com/mmynk/tourledger/internal/storage"
)

func TestBuildJSONBSet(t *testing.T) {
	expr, args, err := buildJSONBSet(storage.Fields{
		"totalGuests":            5,
		"busConfig.regularSeats": 35,
	})
	require.NoError(t, err)

	assert.Equal(t,
		"jsonb_set(jsonb_set(doc, $1::text[], $2::jsonb, true), $3::text[], $4::jsonb, true)",
		expr,
	)
	assert.Equal(t, []any{
		[]string{"busConfig", "regularSeats"}, "35",
		[]string{"totalGuests"}, "5",
	}, args)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL_TEST")
	if dsn == "" {
		t.Skip("DATABASE_URL_TEST not set")
	}
	ctx := context.Background()

	store, err := New(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()

	tour := &models.Tour{Name: "Bandarban Hills", BusConfig: models.BusConfig{TotalSeats: 36}}
	require.NoError(t, store.CreateTour(ctx, tour))
	require.NoError(t, store.UpdateTourFields(ctx, tour.ID, storage.Fields{
		"busConfig.discount1Seats": 4,
		"busConfig.regularSeats":   32,
	}))

	got, err := store.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, numeric.Number(32), got.BusConfig.RegularSeats)
	assert.Equal(t, numeric.Number(36), got.BusConfig.TotalSeats)

	err = store.UpdateTourFields(ctx, "missing", storage.Fields{"totalGuests": 1})
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.SetPersonalRecord(ctx, tour.ID, "host-1", &models.PersonalData{BookingFee: 250}))
	record, err := store.GetPersonalRecord(ctx, tour.ID, "host-1")
	require.NoError(t, err)
	assert.Equal(t, numeric.Number(250), record.BookingFee)
}
