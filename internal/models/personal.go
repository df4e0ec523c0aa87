package models

import "github.com/mmynk/tourledger/internal/numeric"

// PersonalData holds a host's direct bookings for one tour.
type PersonalData struct {
	// ID is PersonalKey(TourID, UserID).
	ID     string `json:"id" bson:"_id"`
	TourID string `json:"tourId" bson:"tourId"`
	UserID string `json:"userId" bson:"userId"`

	// Legacy flat counts, used only when Guests is empty.
	PersonalStandardCount numeric.Number `json:"personalStandardCount" bson:"personalStandardCount"`
	PersonalDisc1Count    numeric.Number `json:"personalDisc1Count" bson:"personalDisc1Count"`
	PersonalDisc2Count    numeric.Number `json:"personalDisc2Count" bson:"personalDisc2Count"`

	// BookingFee is extra flat income.
	BookingFee numeric.Number `json:"bookingFee" bson:"bookingFee"`

	CustomExpenses []CustomExpense `json:"customExpenses" bson:"customExpenses"`
	Guests         []Guest         `json:"guests" bson:"guests"`

	CustomPricing *CustomPricing `json:"customPricing,omitempty" bson:"customPricing,omitempty"`

	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"`
}

// CustomExpense is a host-side expense line.
type CustomExpense struct {
	Name   string         `json:"name" bson:"name"`
	Amount numeric.Number `json:"amount" bson:"amount"`
}

// CustomPricing overrides the tour's fee schedule for a host's own bookings.
// nil fields fall back to the tour's values.
type CustomPricing struct {
	BaseFee         *numeric.Number `json:"baseFee,omitempty" bson:"baseFee,omitempty"`
	Discount1Amount *numeric.Number `json:"discount1Amount,omitempty" bson:"discount1Amount,omitempty"`
	Discount2Amount *numeric.Number `json:"discount2Amount,omitempty" bson:"discount2Amount,omitempty"`
}

// PersonalKey returns the record key for a tour and host.
func PersonalKey(tourID, userID string) string {
	return tourID + "_" + userID
}

// HasGuestList reports whether the record uses the per-guest shape rather
// than the legacy flat counts.
func (p *PersonalData) HasGuestList() bool {
	return len(p.Guests) > 0
}

// LegacyBreakdown returns the flat counts as a breakdown.
func (p *PersonalData) LegacyBreakdown() Breakdown {
	return Breakdown{
		Regular: p.PersonalStandardCount,
		Disc1:   p.PersonalDisc1Count,
		Disc2:   p.PersonalDisc2Count,
	}
}

// FindGuest returns the index of the guest with the given ID, or -1.
func (p *PersonalData) FindGuest(guestID string) int {
	return findGuest(p.Guests, guestID)
}
