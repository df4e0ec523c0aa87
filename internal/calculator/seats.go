package calculator

import (
	"github.com/mmynk/tourledger/internal/models"
)

// CoupleSeats is the number of seats a couple entry occupies.
const CoupleSeats = 2

// GuestSeats returns the number of seats a guest entry occupies. It is
// always at least 1.
//
// A couple always occupies CoupleSeats. Otherwise a non-empty PaxBreakdown
// wins over SeatCount; an entry with no seat data still counts as one person.
func GuestSeats(g models.Guest) int {
	if g.IsCouple {
		return CoupleSeats
	}
	if g.PaxBreakdown != nil {
		if n := int(g.PaxBreakdown.Total()); n > 0 {
			return n
		}
	}
	if n := int(g.SeatCount.Float()); n > 0 {
		return n
	}
	return 1
}

// paxOf returns the cost-category split of a non-couple guest, deriving a
// single-category split from the legacy seat type when no breakdown exists.
func paxOf(g models.Guest) models.Breakdown {
	if g.PaxBreakdown != nil && g.PaxBreakdown.Total() > 0 {
		return *g.PaxBreakdown
	}
	return models.BreakdownFor(g.SeatType, float64(GuestSeats(g)))
}

// SeatAggregate is the projection of every guest source of a tour onto the
// tour's aggregate fields.
type SeatAggregate struct {
	// Discount1Booked and Discount2Booked count discount seats across all
	// guests, received or not.
	Discount1Booked int `json:"discount1Booked"`
	Discount2Booked int `json:"discount2Booked"`

	// TotalBooked counts every seat; informational.
	TotalBooked int `json:"totalBooked"`

	// TotalReceived counts seats of received guests. Legacy personal counts
	// are treated as received.
	TotalReceived int `json:"totalReceived"`

	// RegularSeats is TotalSeats minus booked discount seats, floored at 0.
	RegularSeats int `json:"regularSeats"`
}

// AggregateSeats derives the tour's seat aggregates from the union of all
// agency guest lists and all personal records. It reads only source data,
// never the cached aggregates, so running it again after any change yields
// the correct result regardless of earlier drift.
func AggregateSeats(tour *models.Tour, personals []*models.PersonalData) SeatAggregate {
	var agg SeatAggregate
	if tour == nil {
		return agg
	}

	for _, agency := range tour.PartnerAgencies {
		for _, g := range agency.Guests {
			agg.addGuest(g)
		}
	}

	for _, p := range personals {
		if p == nil {
			continue
		}
		if p.HasGuestList() {
			for _, g := range p.Guests {
				agg.addGuest(g)
			}
			continue
		}
		legacy := p.LegacyBreakdown()
		d1, d2 := int(legacy.Disc1.Float()), int(legacy.Disc2.Float())
		total := int(legacy.Regular.Float()) + d1 + d2
		agg.Discount1Booked += d1
		agg.Discount2Booked += d2
		agg.TotalBooked += total
		agg.TotalReceived += total
	}

	agg.RegularSeats = int(tour.BusConfig.TotalSeats.Float()) - agg.Discount1Booked - agg.Discount2Booked
	if agg.RegularSeats < 0 {
		agg.RegularSeats = 0
	}
	return agg
}

func (agg *SeatAggregate) addGuest(g models.Guest) {
	seats := GuestSeats(g)
	agg.TotalBooked += seats
	if g.IsReceived {
		agg.TotalReceived += seats
	}
	if g.IsCouple {
		return
	}
	pax := paxOf(g)
	agg.Discount1Booked += int(pax.Disc1.Float())
	agg.Discount2Booked += int(pax.Disc2.Float())
}
