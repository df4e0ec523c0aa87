package calculator

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/tourledger/internal/models"
)

// AgencyLine is one agency's row in a tour summary.
type AgencyLine struct {
	AgencyID   string                  `json:"agencyId"`
	Name       string                  `json:"name"`
	Status     models.SettlementStatus `json:"settlementStatus"`
	Settlement AgencySettlement        `json:"settlement"`
}

// PersonalLine is one host's row in a tour summary.
type PersonalLine struct {
	UserID     string             `json:"userId"`
	Settlement PersonalSettlement `json:"settlement"`
}

// TourSummary collects every settlement of a tour.
type TourSummary struct {
	TourID   string         `json:"tourId"`
	Rates    Rates          `json:"rates"`
	Seats    SeatAggregate  `json:"seats"`
	Agencies []AgencyLine   `json:"agencies"`
	Personal []PersonalLine `json:"personal"`

	// AgencyNet sums agency net amounts: what agencies owe the house overall.
	AgencyNet float64 `json:"agencyNet"`
	// PersonalNet sums the hosts' net results.
	PersonalNet float64 `json:"personalNet"`
	HouseNet    float64 `json:"houseNet"`
}

// SummarizeTour computes the settlement of every party on a tour.
func SummarizeTour(tour *models.Tour, personals []*models.PersonalData) TourSummary {
	summary := TourSummary{
		Rates:    ComputeBuyRates(tour),
		Seats:    AggregateSeats(tour, personals),
		Agencies: []AgencyLine{},
		Personal: []PersonalLine{},
	}
	if tour == nil {
		return summary
	}
	summary.TourID = tour.ID

	agencyNet := decimal.Zero
	for i := range tour.PartnerAgencies {
		agency := &tour.PartnerAgencies[i]
		s := ComputeAgencySettlement(tour, agency)
		agencyNet = agencyNet.Add(dec(s.NetAmount))
		summary.Agencies = append(summary.Agencies, AgencyLine{
			AgencyID:   agency.ID,
			Name:       agency.Name,
			Status:     agency.SettlementStatus,
			Settlement: s,
		})
	}

	personalNet := decimal.Zero
	for _, p := range personals {
		if p == nil {
			continue
		}
		s := ComputePersonalSettlement(tour, p)
		personalNet = personalNet.Add(dec(s.NetResult))
		summary.Personal = append(summary.Personal, PersonalLine{UserID: p.UserID, Settlement: s})
	}

	summary.AgencyNet = agencyNet.InexactFloat64()
	summary.PersonalNet = personalNet.InexactFloat64()
	summary.HouseNet = agencyNet.Add(personalNet).InexactFloat64()
	return summary
}
