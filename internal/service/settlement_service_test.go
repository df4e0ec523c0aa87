package service

import (
	"context"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/models"
)

func TestEstimateBusFare(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.as(t, agency)

	t.Run("preview", func(t *testing.T) {
		resp, err := c.settlement.EstimateBusFare.CallUnary(ctx, connect.NewRequest(&EstimateBusFareRequest{
			BusConfig: &models.BusConfig{TotalRent: 1000, RegularSeats: 8, Discount1Seats: 2, Discount1Amount: 100},
		}))
		require.NoError(t, err)
		assert.Equal(t, int64(100), resp.Msg.Estimate.BaseFare)
		assert.Equal(t, int64(125), resp.Msg.Estimate.RegularFare)
		assert.Equal(t, int64(0), resp.Msg.Estimate.Discount1Fare)
		assert.Equal(t, 200.0, resp.Msg.Estimate.TotalDiscountLoss)
	})

	t.Run("stored tour", func(t *testing.T) {
		tour := createTour(t, env.as(t, admin))
		resp, err := c.settlement.EstimateBusFare.CallUnary(ctx, connect.NewRequest(&EstimateBusFareRequest{TourID: tour.ID}))
		require.NoError(t, err)
		assert.Equal(t, int64(100), resp.Msg.Estimate.RegularFare)
	})

	t.Run("stored tour keeps planned discount seats", func(t *testing.T) {
		created, err := env.as(t, admin).tours.CreateTour.CallUnary(ctx, connect.NewRequest(&CreateTourRequest{
			Name: "Bandarban",
			BusConfig: models.BusConfig{
				TotalRent:       1000,
				TotalSeats:      10,
				Discount1Seats:  2,
				Discount1Amount: 100,
			},
		}))
		require.NoError(t, err)
		tour := created.Msg.Tour
		assert.Equal(t, 8.0, tour.BusConfig.RegularSeats.Float())
		assert.Equal(t, 2.0, tour.BusConfig.Discount1Seats.Float())

		stored, err := env.as(t, admin).tours.GetTour.CallUnary(ctx, connect.NewRequest(&GetTourRequest{TourID: tour.ID}))
		require.NoError(t, err)
		assert.Equal(t, 8.0, stored.Msg.Tour.BusConfig.RegularSeats.Float())
		assert.Equal(t, 2.0, stored.Msg.Tour.BusConfig.Discount1Seats.Float())

		resp, err := c.settlement.EstimateBusFare.CallUnary(ctx, connect.NewRequest(&EstimateBusFareRequest{TourID: tour.ID}))
		require.NoError(t, err)
		assert.Equal(t, int64(125), resp.Msg.Estimate.RegularFare)
		assert.Equal(t, 200.0, resp.Msg.Estimate.TotalDiscountLoss)
	})

	t.Run("neither tour nor config", func(t *testing.T) {
		_, err := c.settlement.EstimateBusFare.CallUnary(ctx, connect.NewRequest(&EstimateBusFareRequest{}))
		assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
	})
}

func TestSettlementReadsOnMissingData(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.as(t, admin)

	rates, err := c.settlement.GetBuyRates.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: "missing"}))
	require.NoError(t, err)
	assert.Equal(t, int64(0), rates.Msg.Rates.Regular)
	assert.Equal(t, 1.0, rates.Msg.Rates.VariableDivisor)

	agencySettlement, err := c.settlement.GetAgencySettlement.CallUnary(ctx, connect.NewRequest(&GetAgencySettlementRequest{
		TourID:   "missing",
		AgencyID: "nobody",
	}))
	require.NoError(t, err)
	assert.Equal(t, 0.0, agencySettlement.Msg.Settlement.NetAmount)
	assert.Equal(t, models.SettlementUnpaid, agencySettlement.Msg.Status)

	tour := createTour(t, c)
	personal, err := c.settlement.GetPersonalSettlement.CallUnary(ctx, connect.NewRequest(&GetPersonalSettlementRequest{
		TourID: tour.ID,
		UserID: host.UserID,
	}))
	require.NoError(t, err)
	assert.Equal(t, host.UserID, personal.Msg.UserID)
	assert.Equal(t, 0.0, personal.Msg.Settlement.NetResult)

	summary, err := c.settlement.GetTourSummary.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: "missing"}))
	require.NoError(t, err)
	assert.Equal(t, "missing", summary.Msg.Summary.TourID)
	assert.Empty(t, summary.Msg.Summary.Agencies)
	assert.Equal(t, 0.0, summary.Msg.Summary.HouseNet)
}

func TestPersonalSettlementAndSummary(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	adminClients := env.as(t, admin)
	hostClients := env.as(t, host)
	tour := createTour(t, adminClients)

	_, err := hostClients.bookings.UpsertPersonalGuest.CallUnary(ctx, connect.NewRequest(&UpsertPersonalGuestRequest{
		TourID: tour.ID,
		Guest: models.Guest{
			Name:         "Pair of friends",
			SeatCount:    2,
			PaxBreakdown: &models.Breakdown{Regular: 2},
			FeeBreakdown: &models.Breakdown{Regular: 2},
			IsReceived:   true,
		},
	}))
	require.NoError(t, err)

	// totalGuests = 2: pooled 1500/2 = 750 per head, rent 4000/2 = 2000 per
	// seat, so each regular seat costs 2750 against a 1500 fee.
	resp, err := hostClients.settlement.GetPersonalSettlement.CallUnary(ctx, connect.NewRequest(&GetPersonalSettlementRequest{TourID: tour.ID}))
	require.NoError(t, err)
	s := resp.Msg.Settlement
	assert.Equal(t, 2, s.TotalSeats)
	assert.Equal(t, 3000.0, s.TotalPersonalIncome)
	assert.Equal(t, 5500.0, s.TotalPersonalCost)
	assert.Equal(t, -2500.0, s.NetResult)

	_, err = env.as(t, host2).settlement.GetPersonalSettlement.CallUnary(ctx, connect.NewRequest(&GetPersonalSettlementRequest{
		TourID: tour.ID,
		UserID: host.UserID,
	}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))

	summary, err := adminClients.settlement.GetTourSummary.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: tour.ID}))
	require.NoError(t, err)
	require.Len(t, summary.Msg.Summary.Personal, 1)
	assert.Equal(t, host.UserID, summary.Msg.Summary.Personal[0].UserID)
	assert.Equal(t, -2500.0, summary.Msg.Summary.PersonalNet)
	assert.Equal(t, -2500.0, summary.Msg.Summary.HouseNet)
	assert.Equal(t, 2, summary.Msg.Summary.Seats.TotalReceived)

	_, err = env.as(t, agency).settlement.GetTourSummary.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: tour.ID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}

func TestRecalculateTourSeats(t *testing.T) {
	env := setupTestServer(t)
	ctx := context.Background()
	c := env.as(t, admin)
	tour := createTour(t, c)

	booked, err := env.as(t, agency).bookings.UpsertAgencyGuest.CallUnary(ctx, connect.NewRequest(&UpsertAgencyGuestRequest{
		TourID: tour.ID,
		Guest: models.Guest{
			Name:         "Group",
			SeatCount:    4,
			PaxBreakdown: &models.Breakdown{Regular: 1, Disc1: 1, Disc2: 2},
		},
	}))
	require.NoError(t, err)
	_, err = env.as(t, host).bookings.SetGuestReceived.CallUnary(ctx, connect.NewRequest(&SetGuestReceivedRequest{
		TourID:   tour.ID,
		AgencyID: booked.Msg.Agency.ID,
		GuestID:  booked.Msg.Guest.ID,
		Received: true,
	}))
	require.NoError(t, err)

	// Simulate drift left behind by an interrupted writer.
	require.NoError(t, env.store.UpdateTourFields(ctx, tour.ID, map[string]any{
		"totalGuests":            99,
		"busConfig.regularSeats": 0,
	}))

	first, err := c.settlement.RecalculateTourSeats.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: tour.ID}))
	require.NoError(t, err)
	second, err := c.settlement.RecalculateTourSeats.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: tour.ID}))
	require.NoError(t, err)
	assert.Equal(t, first.Msg.Seats, second.Msg.Seats)

	stored, err := env.store.GetTour(ctx, tour.ID)
	require.NoError(t, err)
	assert.Equal(t, 4.0, stored.TotalGuests.Float())
	assert.Equal(t, 36.0, stored.BusConfig.RegularSeats.Float())
	assert.Equal(t, 1.0, stored.BusConfig.Discount1Seats.Float())
	assert.Equal(t, 2.0, stored.BusConfig.Discount2Seats.Float())

	missing, err := c.settlement.RecalculateTourSeats.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: "missing"}))
	require.NoError(t, err)
	assert.Equal(t, 0, missing.Msg.Seats.TotalReceived)

	_, err = env.as(t, host).settlement.RecalculateTourSeats.CallUnary(ctx, connect.NewRequest(&TourRequest{TourID: tour.ID}))
	assert.Equal(t, connect.CodePermissionDenied, connect.CodeOf(err))
}
