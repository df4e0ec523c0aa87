package models

import "github.com/mmynk/tourledger/internal/numeric"

// SeatType is the legacy single-category tag of a guest entry.
type SeatType string

const (
	SeatRegular SeatType = "regular"
	SeatDisc1   SeatType = "disc1"
	SeatDisc2   SeatType = "disc2"
)

// Guest is a booking entry. One entry may occupy several seats.
type Guest struct {
	ID      string `json:"id" bson:"id"`
	Name    string `json:"name" bson:"name"`
	Phone   string `json:"phone" bson:"phone"`
	Address string `json:"address" bson:"address"`

	// SeatCount is the total number of seats this entry occupies.
	SeatCount numeric.Number `json:"seatCount" bson:"seatCount"`

	// SeatNumbers is free text, e.g. "A1, A2".
	SeatNumbers string `json:"seatNumbers" bson:"seatNumbers"`

	UnitPrice numeric.Number `json:"unitPrice" bson:"unitPrice"`

	// Collection is the money collected for this entry. It is the income
	// figure whenever FeeBreakdown is absent.
	Collection numeric.Number `json:"collection" bson:"collection"`

	// SeatType is used only when PaxBreakdown is absent.
	SeatType SeatType `json:"seatType,omitempty" bson:"seatType,omitempty"`

	// IsReceived marks the guest as checked in. Guests not received are
	// treated as no-shows for penalty purposes.
	IsReceived bool `json:"isReceived" bson:"isReceived"`

	// IsCouple switches the entry to couple-package accounting: two regular
	// seats billed at the couple rate, breakdowns ignored.
	IsCouple bool `json:"isCouple" bson:"isCouple"`

	// PaxBreakdown splits the seats by cost category.
	PaxBreakdown *Breakdown `json:"paxBreakdown,omitempty" bson:"paxBreakdown,omitempty"`

	// FeeBreakdown splits the seats by fee category for income.
	FeeBreakdown *Breakdown `json:"feeBreakdown,omitempty" bson:"feeBreakdown,omitempty"`
}

// Breakdown is a per-category seat split.
type Breakdown struct {
	Regular numeric.Number `json:"regular" bson:"regular"`
	Disc1   numeric.Number `json:"disc1" bson:"disc1"`
	Disc2   numeric.Number `json:"disc2" bson:"disc2"`
}

// Total returns the number of seats across all categories.
func (b Breakdown) Total() float64 {
	return b.Regular.Float() + b.Disc1.Float() + b.Disc2.Float()
}

// BreakdownFor returns a single-category breakdown of seats tagged with t.
// Unknown tags count as regular.
func BreakdownFor(t SeatType, seats float64) Breakdown {
	switch t {
	case SeatDisc1:
		return Breakdown{Disc1: numeric.Number(seats)}
	case SeatDisc2:
		return Breakdown{Disc2: numeric.Number(seats)}
	default:
		return Breakdown{Regular: numeric.Number(seats)}
	}
}
