package models

import "github.com/mmynk/tourledger/internal/numeric"

// Tour is a bus trip event with its cost configuration and bookings.
type Tour struct {
	// ID is the unique identifier for the tour (UUID format).
	ID string `json:"id" bson:"_id"`

	Name     string `json:"name" bson:"name"`
	Date     string `json:"date" bson:"date"`
	Duration string `json:"duration" bson:"duration"`

	// Fees is the guest package price schedule.
	Fees Fees `json:"fees" bson:"fees"`

	BusConfig BusConfig `json:"busConfig" bson:"busConfig"`
	Costs     Costs     `json:"costs" bson:"costs"`

	// PenaltyAmount is the per-absent-seat charge. When unset (missing, null or
	// an empty string) the calculator falls back to its default; a stored 0
	// disables the penalty.
	PenaltyAmount numeric.Optional `json:"penaltyAmount,omitzero" bson:"penaltyAmount,omitempty"`

	PartnerAgencies []PartnerAgency `json:"partnerAgencies" bson:"partnerAgencies"`

	// TotalGuests caches the number of received seats across every agency and
	// personal record. Maintained by the seat recompute.
	TotalGuests numeric.Number `json:"totalGuests" bson:"totalGuests"`

	// CreatedAt is the Unix timestamp when the tour was created.
	CreatedAt int64 `json:"createdAt" bson:"createdAt"`
}

// Fees holds the package prices charged to guests per category.
type Fees struct {
	Regular numeric.Number `json:"regular" bson:"regular"`
	Disc1   numeric.Number `json:"disc1" bson:"disc1"`
	Disc2   numeric.Number `json:"disc2" bson:"disc2"`
}

// BusConfig describes the bus rent and its discount seat policy.
type BusConfig struct {
	TotalRent  numeric.Number `json:"totalRent" bson:"totalRent"`
	TotalSeats numeric.Number `json:"totalSeats" bson:"totalSeats"`

	// RegularSeats is derived: TotalSeats minus booked discount seats, floored at 0.
	RegularSeats numeric.Number `json:"regularSeats" bson:"regularSeats"`

	Discount1Seats  numeric.Number `json:"discount1Seats" bson:"discount1Seats"`
	Discount1Amount numeric.Number `json:"discount1Amount" bson:"discount1Amount"`
	Discount2Seats  numeric.Number `json:"discount2Seats" bson:"discount2Seats"`
	Discount2Amount numeric.Number `json:"discount2Amount" bson:"discount2Amount"`
}

// Costs is the tour's cost structure.
type Costs struct {
	HostFee         numeric.Number `json:"hostFee" bson:"hostFee"`
	HotelCost       numeric.Number `json:"hotelCost" bson:"hotelCost"`
	CoupleHotelCost numeric.Number `json:"coupleHotelCost" bson:"coupleHotelCost"`
	OtherFixedCosts []OtherCost    `json:"otherFixedCosts" bson:"otherFixedCosts"`
	DailyExpenses   []DailyExpense `json:"dailyExpenses" bson:"dailyExpenses"`
}

// OtherCost is an ad-hoc fixed cost line.
type OtherCost struct {
	Name   string         `json:"name" bson:"name"`
	Amount numeric.Number `json:"amount" bson:"amount"`
}

// DailyExpense holds one day's meal and transport costs.
type DailyExpense struct {
	Day       numeric.Number `json:"day" bson:"day"`
	Breakfast numeric.Number `json:"breakfast" bson:"breakfast"`
	Lunch     numeric.Number `json:"lunch" bson:"lunch"`
	Dinner    numeric.Number `json:"dinner" bson:"dinner"`
	Transport numeric.Number `json:"transport" bson:"transport"`
	Other     numeric.Number `json:"other" bson:"other"`
}

// Total returns the sum of the day's expense lines.
func (d DailyExpense) Total() float64 {
	return d.Breakfast.Float() + d.Lunch.Float() + d.Dinner.Float() + d.Transport.Float() + d.Other.Float()
}

// FindAgency returns the index of the agency with the given ID, or -1.
func (t *Tour) FindAgency(agencyID string) int {
	for i := range t.PartnerAgencies {
		if t.PartnerAgencies[i].ID == agencyID {
			return i
		}
	}
	return -1
}

// FindAgencyByEmail returns the index of the agency registered under email, or -1.
func (t *Tour) FindAgencyByEmail(email string) int {
	for i := range t.PartnerAgencies {
		if email != "" && t.PartnerAgencies[i].Email == email {
			return i
		}
	}
	return -1
}
