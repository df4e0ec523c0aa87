package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tourledger/internal/models"
)

// FareEstimate is a planning preview of per-seat bus fares.
type FareEstimate struct {
	BaseFare          int64   `json:"baseFare"`
	RegularFare       int64   `json:"regularFare"`
	Discount1Fare     int64   `json:"discount1Fare"`
	Discount2Fare     int64   `json:"discount2Fare"`
	TotalDiscountLoss float64 `json:"totalDiscountLoss"`
}

// EstimateBusFare projects per-category bus fares from the configured seat
// counts alone. The rent is split evenly, then the revenue discounted seats
// do not pay is spread across regular seats. Every fare is rounded up.
//
// Actual liabilities use ComputeBuyRates; this is a preview for tours with
// no bookings yet.
func EstimateBusFare(cfg models.BusConfig) FareEstimate {
	regular := dec(cfg.RegularSeats.Float())
	d1Seats := dec(cfg.Discount1Seats.Float())
	d2Seats := dec(cfg.Discount2Seats.Float())

	totalSeats := regular.Add(d1Seats).Add(d2Seats)
	if !totalSeats.IsPositive() {
		return FareEstimate{}
	}

	d1Amount := dec(cfg.Discount1Amount.Float())
	d2Amount := dec(cfg.Discount2Amount.Float())

	base := dec(cfg.TotalRent.Float()).Div(totalSeats)
	loss := d1Seats.Mul(d1Amount).Add(d2Seats.Mul(d2Amount))

	extraPerRegular := decimal.Zero
	if regular.IsPositive() {
		extraPerRegular = loss.Div(regular)
	}

	return FareEstimate{
		BaseFare:          base.Ceil().IntPart(),
		RegularFare:       base.Add(extraPerRegular).Ceil().IntPart(),
		Discount1Fare:     base.Sub(d1Amount).Ceil().IntPart(),
		Discount2Fare:     base.Sub(d2Amount).Ceil().IntPart(),
		TotalDiscountLoss: loss.InexactFloat64(),
	}
}
