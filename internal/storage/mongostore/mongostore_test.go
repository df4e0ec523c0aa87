package mongostore

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

// setupTestStore connects to MONGO_URI_TEST and starts from empty collections.
func setupTestStore(t *testing.T) *MongoStore {
	t.Helper()
	uri := os.Getenv("MONGO_URI_TEST")
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set")
	}

	ctx := context.Background()
	store, err := New(ctx, uri, "tourledger_test")
	require.NoError(t, err)
	_ = store.tours.Drop(ctx)
	_ = store.personal.Drop(ctx)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestMongoStore(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	tour := &models.Tour{
		Name:      "Sylhet Tea Trail",
		BusConfig: models.BusConfig{TotalSeats: 30, TotalRent: 30000},
		PartnerAgencies: []models.PartnerAgency{{
			ID: "a1", Email: "agency@example.com",
			Guests: []models.Guest{{ID: "g1", SeatCount: 2, IsReceived: true}},
		}},
	}
	require.NoError(t, store.CreateTour(ctx, tour))

	require.NoError(t, store.UpdateTourFields(ctx, tour.ID, storage.Fields{
		"busConfig.regularSeats": 30,
		"totalGuests":            2,
	}))

	got, err := store.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, numeric.Number(30), got.BusConfig.RegularSeats)
	assert.Equal(t, numeric.Number(2), got.TotalGuests)
	assert.Equal(t, numeric.Number(30000), got.BusConfig.TotalRent)
	require.Len(t, got.PartnerAgencies, 1)
	assert.Len(t, got.PartnerAgencies[0].Guests, 1)

	_, err = store.GetTour(ctx, "missing")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	require.NoError(t, store.SetPersonalRecord(ctx, tour.ID, "host-1", &models.PersonalData{BookingFee: 300}))
	require.NoError(t, store.SetPersonalRecord(ctx, tour.ID, "host-1", &models.PersonalData{BookingFee: 400}))

	records, err := store.QueryPersonalByTour(ctx, tour.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, numeric.Number(400), records[0].BookingFee)
}
