package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tourledger/internal/models"
)

// Rates are the per-seat and per-couple-unit costs of providing a seat on a
// tour, given everyone who showed up. All amounts are whole Taka.
type Rates struct {
	Regular           int64 `json:"regular"`
	D1                int64 `json:"d1"`
	D2                int64 `json:"d2"`
	CouplePackageRate int64 `json:"couplePackageRate"`

	// Components of the rates above.
	RegularBusFare        int64 `json:"regularBusFare"`
	CommonVariablePerHead int64 `json:"commonVariablePerHead"`
	RegHotelPerHead       int64 `json:"regHotelPerHead"`
	CoupleHotelPerUnit    int64 `json:"coupleHotelPerUnit"`

	// Divisors used, each floored at 1.
	VariableDivisor   float64 `json:"variableDivisor"`
	RegularDivisor    float64 `json:"regularDivisor"`
	CoupleUnitDivisor float64 `json:"coupleUnitDivisor"`

	TotalReceived   int `json:"totalReceived"`
	RecCoupleSeats  int `json:"recCoupleSeats"`
	RecRegularSeats int `json:"recRegularSeats"`
}

// ComputeBuyRates allocates the tour's costs onto seats.
//
// Pooled costs (host fee, other fixed costs, daily expenses) and the bus
// rent plus the discount subsidy gap are divided across every received seat.
// Hotel cost is split between regular seats (per head) and couples (per
// pair of seats) from separate pools. Each division rounds up on its own, so
// the rates can over-recover the total cost by a few Taka but never under-
// recover it.
//
// The variable divisor prefers the persisted TotalGuests cache and falls back
// to the live received count. Received seats are counted across the tour's
// partner agencies.
//
// Collected no-show penalties are not netted against the bus rent; they stay
// house income.
func ComputeBuyRates(tour *models.Tour) Rates {
	rates := Rates{VariableDivisor: 1, RegularDivisor: 1, CoupleUnitDivisor: 1}
	if tour == nil {
		return rates
	}

	// Step 1: classify received guests.
	for _, agency := range tour.PartnerAgencies {
		for _, g := range agency.Guests {
			if !g.IsReceived {
				continue
			}
			seats := GuestSeats(g)
			rates.TotalReceived += seats
			if g.IsCouple {
				rates.RecCoupleSeats += seats
			} else {
				rates.RecRegularSeats += seats
			}
		}
	}

	// Step 2: divisors.
	variableDivisor := one
	switch {
	case tour.TotalGuests.Float() > 0:
		variableDivisor = dec(tour.TotalGuests.Float())
	case rates.TotalReceived > 0:
		variableDivisor = decimal.NewFromInt(int64(rates.TotalReceived))
	}
	coupleUnitDivisor := atLeastOne(decimal.NewFromInt(int64(rates.RecCoupleSeats)).Div(decimal.NewFromInt(CoupleSeats)))
	regularDivisor := atLeastOne(decimal.NewFromInt(int64(rates.RecRegularSeats)))

	rates.VariableDivisor = variableDivisor.InexactFloat64()
	rates.CoupleUnitDivisor = coupleUnitDivisor.InexactFloat64()
	rates.RegularDivisor = regularDivisor.InexactFloat64()

	// Step 3: pooled variable cost per head.
	costs := tour.Costs
	pooled := dec(costs.HostFee.Float())
	for _, c := range costs.OtherFixedCosts {
		pooled = pooled.Add(dec(c.Amount.Float()))
	}
	for _, d := range costs.DailyExpenses {
		pooled = pooled.Add(dec(d.Total()))
	}
	commonVariable := ceilDiv(pooled, variableDivisor)

	// Step 4: bus cost per seat. The subsidy gap follows the configured
	// discount policy, not occupancy.
	bus := tour.BusConfig
	d1Amount := dec(bus.Discount1Amount.Float())
	d2Amount := dec(bus.Discount2Amount.Float())
	gap := dec(bus.Discount1Seats.Float()).Mul(d1Amount).
		Add(dec(bus.Discount2Seats.Float()).Mul(d2Amount))
	regularBusFare := ceilDiv(dec(bus.TotalRent.Float()).Add(gap), variableDivisor)

	// Step 5: hotel.
	regHotel := ceilDiv(dec(costs.HotelCost.Float()), regularDivisor)
	coupleHotel := ceilDiv(dec(costs.CoupleHotelCost.Float()), coupleUnitDivisor)

	// Step 6: final rates.
	perHead := commonVariable.Add(regHotel)
	two := decimal.NewFromInt(CoupleSeats)

	rates.RegularBusFare = regularBusFare.IntPart()
	rates.CommonVariablePerHead = commonVariable.IntPart()
	rates.RegHotelPerHead = regHotel.IntPart()
	rates.CoupleHotelPerUnit = coupleHotel.IntPart()

	rates.Regular = regularBusFare.Add(perHead).IntPart()
	rates.D1 = regularBusFare.Sub(d1Amount).Add(perHead).IntPart()
	rates.D2 = regularBusFare.Sub(d2Amount).Add(perHead).IntPart()
	rates.CouplePackageRate = two.Mul(regularBusFare).Add(two.Mul(commonVariable)).Add(coupleHotel).IntPart()

	return rates
}

// forCategories returns the cost of a seat split at these rates.
func (r Rates) forCategories(b models.Breakdown) decimal.Decimal {
	return dec(b.Regular.Float()).Mul(decimal.NewFromInt(r.Regular)).
		Add(dec(b.Disc1.Float()).Mul(decimal.NewFromInt(r.D1))).
		Add(dec(b.Disc2.Float()).Mul(decimal.NewFromInt(r.D2)))
}

// GuestLiability returns the cost of providing a received guest's seats.
func (r Rates) GuestLiability(g models.Guest) float64 {
	return r.guestLiability(g).InexactFloat64()
}

func (r Rates) guestLiability(g models.Guest) decimal.Decimal {
	if g.IsCouple {
		return decimal.NewFromInt(r.CouplePackageRate)
	}
	return r.forCategories(paxOf(g))
}
