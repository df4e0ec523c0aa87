package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tourledger/internal/models"
)

// DefaultPenaltyAmount is the per-absent-seat charge applied when a tour has
// no penalty configured.
const DefaultPenaltyAmount = 500

// PenaltyAmount returns the tour's per-absent-seat charge. An unset penalty
// uses DefaultPenaltyAmount; an explicit zero is honored.
func PenaltyAmount(tour *models.Tour) float64 {
	if tour == nil {
		return DefaultPenaltyAmount
	}
	return tour.PenaltyAmount.Or(DefaultPenaltyAmount)
}

// AgencySettlement is the balance between one partner agency and the house.
type AgencySettlement struct {
	TotalCollection float64 `json:"totalCollection"`
	AgencyExpenses  float64 `json:"agencyExpenses"`

	// FixedCostShare is the agency's liability at buy rates for received guests.
	FixedCostShare float64 `json:"fixedCostShare"`
	TotalCost      float64 `json:"totalCost"`

	// NetAmount is positive when the agency owes the house and negative when
	// the house owes the agency.
	NetAmount float64 `json:"netAmount"`

	// TotalSeats counts all guests, received or not.
	TotalSeats  int `json:"totalSeats"`
	NoShowSeats int `json:"noShowSeats"`

	Rates Rates `json:"rates"`
}

// ComputeAgencySettlement applies the tour's buy rates to an agency's guest
// list. Received guests add their collection to income and their seats at
// buy rates to liability. No-shows add a per-seat penalty to income and
// nothing to liability.
//
// A nil tour or agency yields a zeroed settlement.
func ComputeAgencySettlement(tour *models.Tour, agency *models.PartnerAgency) AgencySettlement {
	rates := ComputeBuyRates(tour)
	result := AgencySettlement{Rates: rates}
	if tour == nil || agency == nil {
		return result
	}

	penalty := dec(PenaltyAmount(tour))
	collection := decimal.Zero
	liability := decimal.Zero

	for _, g := range agency.Guests {
		seats := GuestSeats(g)
		result.TotalSeats += seats
		if g.IsReceived {
			collection = collection.Add(dec(g.Collection.Float()))
			liability = liability.Add(rates.guestLiability(g))
			continue
		}
		result.NoShowSeats += seats
		collection = collection.Add(decimal.NewFromInt(int64(seats)).Mul(penalty))
	}

	expenses := decimal.Zero
	for _, e := range agency.Expenses {
		expenses = expenses.Add(dec(e.Amount.Float()))
	}

	totalCost := liability.Add(expenses)
	result.TotalCollection = collection.InexactFloat64()
	result.AgencyExpenses = expenses.InexactFloat64()
	result.FixedCostShare = liability.InexactFloat64()
	result.TotalCost = totalCost.InexactFloat64()
	result.NetAmount = collection.Sub(totalCost).InexactFloat64()
	return result
}

// FeeSchedule is the per-category package price charged to guests.
type FeeSchedule struct {
	Regular float64 `json:"regular"`
	D1      float64 `json:"d1"`
	D2      float64 `json:"d2"`
}

// FeesFor resolves a host's fee schedule: custom pricing where set, else the
// tour's regular fee and bus discount amounts.
func FeesFor(tour *models.Tour, pricing *models.CustomPricing) FeeSchedule {
	if tour == nil {
		return FeeSchedule{}
	}
	regular := tour.Fees.Regular.Float()
	d1Amount := tour.BusConfig.Discount1Amount.Float()
	d2Amount := tour.BusConfig.Discount2Amount.Float()
	if pricing != nil {
		if pricing.BaseFee != nil {
			regular = pricing.BaseFee.Float()
		}
		if pricing.Discount1Amount != nil {
			d1Amount = pricing.Discount1Amount.Float()
		}
		if pricing.Discount2Amount != nil {
			d2Amount = pricing.Discount2Amount.Float()
		}
	}
	return FeeSchedule{
		Regular: regular,
		D1:      regular - d1Amount,
		D2:      regular - d2Amount,
	}
}

func (f FeeSchedule) forCategories(b models.Breakdown) decimal.Decimal {
	return dec(b.Regular.Float()).Mul(dec(f.Regular)).
		Add(dec(b.Disc1.Float()).Mul(dec(f.D1))).
		Add(dec(b.Disc2.Float()).Mul(dec(f.D2)))
}

// PersonalSettlement is the balance of a host's own direct bookings.
type PersonalSettlement struct {
	TotalPersonalIncome float64 `json:"totalPersonalIncome"`
	PersonalExpenses    float64 `json:"personalExpenses"`
	TotalPersonalCost   float64 `json:"totalPersonalCost"`
	NetResult           float64 `json:"netResult"`

	TotalSeats int `json:"totalSeats"`

	Fees  FeeSchedule `json:"fees"`
	Rates Rates       `json:"rates"`
}

// ComputePersonalSettlement mirrors ComputeAgencySettlement for a host's own
// bookings. Income of a non-couple guest comes from its fee breakdown at the
// fee schedule when present, else from its collection, so a guest may sit on
// a discounted seat and still pay the regular package price. The booking fee
// is always income.
//
// A record with no guest list falls back to the legacy flat counts, applied
// to both the fee schedule and the buy rates and treated as received.
func ComputePersonalSettlement(tour *models.Tour, pd *models.PersonalData) PersonalSettlement {
	rates := ComputeBuyRates(tour)
	result := PersonalSettlement{Rates: rates}
	if tour == nil || pd == nil {
		return result
	}

	fees := FeesFor(tour, pd.CustomPricing)
	result.Fees = fees
	penalty := dec(PenaltyAmount(tour))

	income := dec(pd.BookingFee.Float())
	cost := decimal.Zero

	if pd.HasGuestList() {
		for _, g := range pd.Guests {
			seats := GuestSeats(g)
			result.TotalSeats += seats
			if !g.IsReceived {
				income = income.Add(decimal.NewFromInt(int64(seats)).Mul(penalty))
				continue
			}
			switch {
			case g.IsCouple:
				income = income.Add(dec(g.Collection.Float()))
			case g.FeeBreakdown != nil && g.FeeBreakdown.Total() > 0:
				income = income.Add(fees.forCategories(*g.FeeBreakdown))
			default:
				income = income.Add(dec(g.Collection.Float()))
			}
			cost = cost.Add(rates.guestLiability(g))
		}
	} else {
		legacy := pd.LegacyBreakdown()
		result.TotalSeats = int(legacy.Total())
		income = income.Add(fees.forCategories(legacy))
		cost = cost.Add(rates.forCategories(legacy))
	}

	expenses := decimal.Zero
	for _, e := range pd.CustomExpenses {
		expenses = expenses.Add(dec(e.Amount.Float()))
	}

	result.TotalPersonalIncome = income.InexactFloat64()
	result.PersonalExpenses = expenses.InexactFloat64()
	result.TotalPersonalCost = cost.InexactFloat64()
	result.NetResult = income.Sub(cost.Add(expenses)).InexactFloat64()
	return result
}
