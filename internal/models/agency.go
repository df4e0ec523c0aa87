package models

import "github.com/mmynk/tourledger/internal/numeric"

// SettlementStatus tracks payment between a partner agency and the house.
type SettlementStatus string

const (
	SettlementUnpaid  SettlementStatus = "unpaid"
	SettlementPaid    SettlementStatus = "paid"
	SettlementSettled SettlementStatus = "settled"
)

// Valid reports whether s is one of the declared statuses.
func (s SettlementStatus) Valid() bool {
	switch s {
	case SettlementUnpaid, SettlementPaid, SettlementSettled:
		return true
	}
	return false
}

// PartnerAgency is an agency booking seats on a tour. It is embedded in the
// tour document rather than stored on its own.
type PartnerAgency struct {
	ID   string `json:"id" bson:"id"`
	Name string `json:"name" bson:"name"`

	// Email identifies the agency user account.
	Email string `json:"email" bson:"email"`
	Phone string `json:"phone" bson:"phone"`

	Guests   []Guest         `json:"guests" bson:"guests"`
	Expenses []AgencyExpense `json:"expenses" bson:"expenses"`

	SettlementStatus SettlementStatus `json:"settlementStatus" bson:"settlementStatus"`
}

// AgencyExpense is an expense the agency paid on the tour's behalf.
type AgencyExpense struct {
	Description string         `json:"description" bson:"description"`
	Amount      numeric.Number `json:"amount" bson:"amount"`
}

// FindGuest returns the index of the guest with the given ID, or -1.
func (a *PartnerAgency) FindGuest(guestID string) int {
	return findGuest(a.Guests, guestID)
}

func findGuest(guests []Guest, guestID string) int {
	for i := range guests {
		if guests[i].ID == guestID {
			return i
		}
	}
	return -1
}
