package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmynk/tourledger/internal/calculator"
	"github.com/mmynk/tourledger/internal/metrics"
	"github.com/mmynk/tourledger/internal/storage"
)

// SeatRecomputer rebuilds a tour's cached seat aggregates from its bookings.
//
// It never patches counters: every run reads all agency guest lists and
// personal records afresh and overwrites the four aggregate fields. Two
// interleaved runs therefore converge on whichever wrote last, and that
// write is consistent with the bookings it read.
type SeatRecomputer struct {
	store storage.Store
}

// NewSeatRecomputer creates a SeatRecomputer over the given store.
func NewSeatRecomputer(store storage.Store) *SeatRecomputer {
	return &SeatRecomputer{store: store}
}

// Recompute derives and persists busConfig.regularSeats,
// busConfig.discount1Seats, busConfig.discount2Seats and totalGuests for the
// tour. A missing tour is logged and skipped without error.
func (r *SeatRecomputer) Recompute(ctx context.Context, tourID string) (calculator.SeatAggregate, error) {
	start := time.Now()
	defer func() {
		metrics.SeatRecomputeDuration.Observe(time.Since(start).Seconds())
	}()

	tour, err := r.store.GetTour(ctx, tourID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn("Seat recompute skipped, tour not found", "tour_id", tourID)
		metrics.SeatRecomputes.WithLabelValues(metrics.ResultNotFound).Inc()
		return calculator.SeatAggregate{}, nil
	}
	if err != nil {
		metrics.SeatRecomputes.WithLabelValues(metrics.ResultError).Inc()
		return calculator.SeatAggregate{}, fmt.Errorf("load tour: %w", err)
	}

	personals, err := r.store.QueryPersonalByTour(ctx, tourID)
	if err != nil {
		metrics.SeatRecomputes.WithLabelValues(metrics.ResultError).Inc()
		return calculator.SeatAggregate{}, fmt.Errorf("load personal records: %w", err)
	}

	agg := calculator.AggregateSeats(tour, personals)

	err = r.store.UpdateTourFields(ctx, tourID, storage.Fields{
		"busConfig.regularSeats":   agg.RegularSeats,
		"busConfig.discount1Seats": agg.Discount1Booked,
		"busConfig.discount2Seats": agg.Discount2Booked,
		"totalGuests":              agg.TotalReceived,
	})
	if errors.Is(err, storage.ErrNotFound) {
		// Deleted between the read and the write.
		slog.Warn("Seat recompute skipped, tour vanished", "tour_id", tourID)
		metrics.SeatRecomputes.WithLabelValues(metrics.ResultNotFound).Inc()
		return calculator.SeatAggregate{}, nil
	}
	if err != nil {
		metrics.SeatRecomputes.WithLabelValues(metrics.ResultError).Inc()
		return calculator.SeatAggregate{}, fmt.Errorf("write seat aggregates: %w", err)
	}

	metrics.SeatRecomputes.WithLabelValues(metrics.ResultOK).Inc()
	slog.Debug("Seats recomputed",
		"tour_id", tourID,
		"regular_seats", agg.RegularSeats,
		"discount1_seats", agg.Discount1Booked,
		"discount2_seats", agg.Discount2Booked,
		"total_guests", agg.TotalReceived,
	)
	return agg, nil
}
