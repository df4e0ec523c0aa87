package service

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage/sqlite"
)

func TestSeatRecomputer(t *testing.T) {
	ctx := context.Background()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "recompute.db"))
	require.NoError(t, err)
	defer store.Close()

	tour := &models.Tour{
		Name:      "Srimangal Tea Trail",
		BusConfig: models.BusConfig{TotalSeats: 10},
		PartnerAgencies: []models.PartnerAgency{
			{ID: "a1", Guests: []models.Guest{
				{ID: "g1", SeatCount: 3, SeatType: models.SeatDisc1, IsReceived: true},
				{ID: "g2", IsCouple: true, IsReceived: true},
			}},
			{ID: "a2", Guests: []models.Guest{
				{ID: "g3", SeatCount: 2, PaxBreakdown: &models.Breakdown{Disc2: 2}},
			}},
		},
	}
	require.NoError(t, store.CreateTour(ctx, tour))
	require.NoError(t, store.SetPersonalRecord(ctx, tour.ID, "host-1", &models.PersonalData{
		PersonalStandardCount: 2,
		PersonalDisc1Count:    1,
	}))

	r := NewSeatRecomputer(store)
	agg, err := r.Recompute(ctx, tour.ID)
	require.NoError(t, err)

	assert.Equal(t, 4, agg.Discount1Booked)
	assert.Equal(t, 2, agg.Discount2Booked)
	assert.Equal(t, 10, agg.TotalBooked)
	assert.Equal(t, 8, agg.TotalReceived)
	assert.Equal(t, 4, agg.RegularSeats)

	stored, err := store.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 8.0, stored.TotalGuests.Float())
	assert.Equal(t, 4.0, stored.BusConfig.RegularSeats.Float())
	assert.Equal(t, 10.0, stored.BusConfig.TotalSeats.Float(), "untouched fields survive the partial update")
	assert.Len(t, stored.PartnerAgencies, 2, "guest lists are never rewritten")

	again, err := r.Recompute(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, agg, again)

	agg, err = r.Recompute(ctx, "missing")
	require.NoError(t, err)
	assert.Zero(t, agg)
}
