package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"

	"github.com/mmynk/tourledger/internal/calculator"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

type EstimateBusFareRequest struct {
	// BusConfig previews an unsaved configuration. When nil the stored
	// configuration of TourID is used.
	BusConfig *models.BusConfig `json:"busConfig,omitempty"`
	TourID    string            `json:"tourId" validate:"required_without=BusConfig"`
}

type EstimateBusFareResponse struct {
	Estimate calculator.FareEstimate `json:"estimate"`
}

type TourRequest struct {
	TourID string `json:"tourId" validate:"required"`
}

type BuyRatesResponse struct {
	Rates calculator.Rates `json:"rates"`
}

type GetAgencySettlementRequest struct {
	TourID string `json:"tourId" validate:"required"`
	// AgencyID may be left empty by an agency to read its own settlement.
	AgencyID string `json:"agencyId"`
}

type AgencySettlementResponse struct {
	AgencyID   string                      `json:"agencyId"`
	Status     models.SettlementStatus     `json:"settlementStatus"`
	Settlement calculator.AgencySettlement `json:"settlement"`
}

type GetPersonalSettlementRequest struct {
	TourID string `json:"tourId" validate:"required"`
	UserID string `json:"userId"`
}

type PersonalSettlementResponse struct {
	UserID     string                        `json:"userId"`
	Settlement calculator.PersonalSettlement `json:"settlement"`
}

type TourSummaryResponse struct {
	Summary calculator.TourSummary `json:"summary"`
}

type RecalculateResponse struct {
	Seats calculator.SeatAggregate `json:"seats"`
}

// SettlementService exposes the read-only calculators. A missing tour,
// agency or personal record yields a zeroed result rather than an error so
// callers always have something to render.
type SettlementService struct {
	store      storage.Store
	recomputer *SeatRecomputer
}

// NewSettlementService creates a new SettlementService with the given storage backend.
func NewSettlementService(store storage.Store, recomputer *SeatRecomputer) *SettlementService {
	return &SettlementService{store: store, recomputer: recomputer}
}

// loadTour returns nil without error when the tour does not exist.
func (s *SettlementService) loadTour(ctx context.Context, op, tourID string) (*models.Tour, error) {
	tour, err := s.store.GetTour(ctx, tourID)
	if errors.Is(err, storage.ErrNotFound) {
		slog.Warn(op+" on missing tour", "tour_id", tourID)
		return nil, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return tour, nil
}

// EstimateBusFare projects per-seat fares from a bus configuration.
func (s *SettlementService) EstimateBusFare(ctx context.Context, req *connect.Request[EstimateBusFareRequest]) (*connect.Response[EstimateBusFareResponse], error) {
	if _, err := requireRole(ctx, models.RoleAdmin, models.RoleHost, models.RoleAgency); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	var cfg models.BusConfig
	if req.Msg.BusConfig != nil {
		cfg = *req.Msg.BusConfig
	} else {
		tour, err := s.loadTour(ctx, "EstimateBusFare", req.Msg.TourID)
		if err != nil {
			return nil, err
		}
		if tour != nil {
			cfg = tour.BusConfig
		}
	}

	return connect.NewResponse(&EstimateBusFareResponse{Estimate: calculator.EstimateBusFare(cfg)}), nil
}

// GetBuyRates returns the tour's per-seat buy rates.
func (s *SettlementService) GetBuyRates(ctx context.Context, req *connect.Request[TourRequest]) (*connect.Response[BuyRatesResponse], error) {
	if _, err := requireRole(ctx, models.RoleAdmin, models.RoleHost, models.RoleAgency); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.loadTour(ctx, "GetBuyRates", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&BuyRatesResponse{Rates: calculator.ComputeBuyRates(tour)}), nil
}

// GetAgencySettlement returns an agency's balance with the house.
func (s *SettlementService) GetAgencySettlement(ctx context.Context, req *connect.Request[GetAgencySettlementRequest]) (*connect.Response[AgencySettlementResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleHost, models.RoleAgency)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.loadTour(ctx, "GetAgencySettlement", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	var agency *models.PartnerAgency
	if tour != nil {
		var i int
		if actor.Role == models.RoleAgency {
			i = tour.FindAgencyByEmail(strings.ToLower(actor.Email))
			if i >= 0 && req.Msg.AgencyID != "" && req.Msg.AgencyID != tour.PartnerAgencies[i].ID {
				return nil, connect.NewError(connect.CodePermissionDenied, errNotOwnEntry)
			}
		} else {
			i = tour.FindAgency(req.Msg.AgencyID)
		}
		if i >= 0 {
			agency = &tour.PartnerAgencies[i]
		}
	}

	resp := &AgencySettlementResponse{
		AgencyID:   req.Msg.AgencyID,
		Status:     models.SettlementUnpaid,
		Settlement: calculator.ComputeAgencySettlement(tour, agency),
	}
	if agency != nil {
		resp.AgencyID = agency.ID
		resp.Status = agency.SettlementStatus
	}
	return connect.NewResponse(resp), nil
}

// GetPersonalSettlement returns the balance of a host's own bookings.
func (s *SettlementService) GetPersonalSettlement(ctx context.Context, req *connect.Request[GetPersonalSettlementRequest]) (*connect.Response[PersonalSettlementResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleHost)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	userID, err := targetUser(actor, req.Msg.UserID)
	if err != nil {
		return nil, err
	}

	tour, err := s.loadTour(ctx, "GetPersonalSettlement", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	var record *models.PersonalData
	if tour != nil {
		record, err = s.store.GetPersonalRecord(ctx, req.Msg.TourID, userID)
		if errors.Is(err, storage.ErrNotFound) {
			record = nil
		} else if err != nil {
			return nil, storeError("GetPersonalSettlement", err)
		}
	}

	return connect.NewResponse(&PersonalSettlementResponse{
		UserID:     userID,
		Settlement: calculator.ComputePersonalSettlement(tour, record),
	}), nil
}

// Summary computes the settlement of every party on a tour. It is shared by
// GetTourSummary and the workbook export.
func (s *SettlementService) Summary(ctx context.Context, tourID string) (calculator.TourSummary, *models.Tour, error) {
	tour, err := s.loadTour(ctx, "Summary", tourID)
	if err != nil || tour == nil {
		return calculator.SummarizeTour(nil, nil), nil, err
	}
	personals, err := s.store.QueryPersonalByTour(ctx, tourID)
	if err != nil {
		return calculator.TourSummary{}, nil, storeError("Summary", err)
	}
	return calculator.SummarizeTour(tour, personals), tour, nil
}

// GetTourSummary returns every agency and personal settlement of a tour with
// the house totals.
func (s *SettlementService) GetTourSummary(ctx context.Context, req *connect.Request[TourRequest]) (*connect.Response[TourSummaryResponse], error) {
	if _, err := requireRole(ctx, models.RoleAdmin, models.RoleHost); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	summary, _, err := s.Summary(ctx, req.Msg.TourID)
	if err != nil {
		return nil, err
	}
	summary.TourID = req.Msg.TourID

	return connect.NewResponse(&TourSummaryResponse{Summary: summary}), nil
}

// RecalculateTourSeats runs the seat recompute on demand.
func (s *SettlementService) RecalculateTourSeats(ctx context.Context, req *connect.Request[TourRequest]) (*connect.Response[RecalculateResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("RecalculateTourSeats request received", "tour_id", req.Msg.TourID, "user_id", actor.UserID)

	agg, err := s.recomputer.Recompute(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("RecalculateTourSeats", err)
	}

	return connect.NewResponse(&RecalculateResponse{Seats: agg}), nil
}
