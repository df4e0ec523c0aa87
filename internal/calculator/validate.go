package calculator

import (
	"errors"
	"fmt"
	"math"

	"github.com/mmynk/tourledger/internal/models"
)

// ErrCoupleBreakdown is returned for couple entries that carry a breakdown.
var ErrCoupleBreakdown = errors.New("couple entries cannot carry a seat or fee breakdown")

// BreakdownMismatchError reports a breakdown whose categories do not add up
// to the guest's seat count.
type BreakdownMismatchError struct {
	Field    string
	Expected float64
	Actual   float64
}

func (e *BreakdownMismatchError) Error() string {
	return fmt.Sprintf("%s must add up to %g seats, got %g", e.Field, e.Expected, e.Actual)
}

// InvalidSeatsError reports a seat count or breakdown entry that is negative
// or not a whole number.
type InvalidSeatsError struct {
	Field string
	Value float64
}

func (e *InvalidSeatsError) Error() string {
	return fmt.Sprintf("%s must be a non-negative whole number, got %g", e.Field, e.Value)
}

func checkSeats(field string, v float64) error {
	if v < 0 || v != math.Trunc(v) {
		return &InvalidSeatsError{Field: field, Value: v}
	}
	return nil
}

func checkBreakdown(field string, b *models.Breakdown) error {
	if b == nil {
		return nil
	}
	for _, entry := range []struct {
		name string
		v    float64
	}{
		{"regular", b.Regular.Float()},
		{"disc1", b.Disc1.Float()},
		{"disc2", b.Disc2.Float()},
	} {
		if err := checkSeats(field+"."+entry.name, entry.v); err != nil {
			return err
		}
	}
	return nil
}

// ValidateGuest checks a guest entry before it is written. Seat counts and
// breakdown entries must be non-negative whole numbers, and breakdowns must
// sum to SeatCount when SeatCount is set.
func ValidateGuest(g models.Guest) error {
	if g.IsCouple {
		if g.PaxBreakdown != nil || g.FeeBreakdown != nil {
			return ErrCoupleBreakdown
		}
		return nil
	}
	seatCount := g.SeatCount.Float()
	if err := checkSeats("seatCount", seatCount); err != nil {
		return err
	}
	if err := checkBreakdown("paxBreakdown", g.PaxBreakdown); err != nil {
		return err
	}
	if err := checkBreakdown("feeBreakdown", g.FeeBreakdown); err != nil {
		return err
	}
	if seatCount == 0 {
		return nil
	}
	if g.PaxBreakdown != nil && g.PaxBreakdown.Total() != seatCount {
		return &BreakdownMismatchError{Field: "paxBreakdown", Expected: seatCount, Actual: g.PaxBreakdown.Total()}
	}
	if g.FeeBreakdown != nil && g.FeeBreakdown.Total() != seatCount {
		return &BreakdownMismatchError{Field: "feeBreakdown", Expected: seatCount, Actual: g.FeeBreakdown.Total()}
	}
	return nil
}
