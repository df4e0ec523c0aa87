package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/numeric"
	"github.com/mmynk/tourledger/internal/storage"
)

type CreateTourRequest struct {
	Name          string           `json:"name" validate:"required"`
	Date          string           `json:"date"`
	Duration      string           `json:"duration"`
	Fees          models.Fees      `json:"fees"`
	BusConfig     models.BusConfig `json:"busConfig"`
	Costs         models.Costs     `json:"costs"`
	PenaltyAmount numeric.Optional `json:"penaltyAmount,omitzero"`
}

type GetTourRequest struct {
	TourID string `json:"tourId" validate:"required"`
}

type TourResponse struct {
	Tour *models.Tour `json:"tour"`
}

type AddAgencyRequest struct {
	TourID string `json:"tourId" validate:"required"`
	Name   string `json:"name" validate:"required"`
	Email  string `json:"email" validate:"required,email"`
	Phone  string `json:"phone"`
}

type AgencyResponse struct {
	Agency *models.PartnerAgency `json:"agency"`
}

// TourService manages tours and their partner agency roster.
type TourService struct {
	store storage.Store
}

// NewTourService creates a new TourService with the given storage backend.
func NewTourService(store storage.Store) *TourService {
	return &TourService{store: store}
}

// CreateTour creates a tour with no agencies or guests.
func (s *TourService) CreateTour(ctx context.Context, req *connect.Request[CreateTourRequest]) (*connect.Response[TourResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("CreateTour request received", "name", req.Msg.Name, "user_id", actor.UserID)

	// No bookings exist yet, so the planned discount seats stay as configured
	// and only regularSeats is derived from them. The first guest mutation
	// replaces both with booked counts.
	busConfig := req.Msg.BusConfig
	busConfig.RegularSeats = numeric.Number(max(0,
		busConfig.TotalSeats.Float()-busConfig.Discount1Seats.Float()-busConfig.Discount2Seats.Float()))

	tour := &models.Tour{
		Name:            req.Msg.Name,
		Date:            req.Msg.Date,
		Duration:        req.Msg.Duration,
		Fees:            req.Msg.Fees,
		BusConfig:       busConfig,
		Costs:           req.Msg.Costs,
		PenaltyAmount:   req.Msg.PenaltyAmount,
		PartnerAgencies: []models.PartnerAgency{},
	}

	if err := s.store.CreateTour(ctx, tour); err != nil {
		return nil, storeError("CreateTour", err)
	}

	slog.Info("Tour created", "tour_id", tour.ID)

	return connect.NewResponse(&TourResponse{Tour: tour}), nil
}

// GetTour returns a tour. Agencies only see their own entry in the roster.
func (s *TourService) GetTour(ctx context.Context, req *connect.Request[GetTourRequest]) (*connect.Response[TourResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleHost, models.RoleAgency)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("GetTour", err)
	}

	if actor.Role == models.RoleAgency {
		own := []models.PartnerAgency{}
		if i := tour.FindAgencyByEmail(strings.ToLower(actor.Email)); i >= 0 {
			own = append(own, tour.PartnerAgencies[i])
		}
		tour.PartnerAgencies = own
	}

	return connect.NewResponse(&TourResponse{Tour: tour}), nil
}

// AddAgency appends a partner agency to the tour's roster.
func (s *TourService) AddAgency(ctx context.Context, req *connect.Request[AddAgencyRequest]) (*connect.Response[AgencyResponse], error) {
	if _, err := requireRole(ctx, models.RoleAdmin); err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("AddAgency", err)
	}

	email := strings.ToLower(strings.TrimSpace(req.Msg.Email))
	if tour.FindAgencyByEmail(email) >= 0 {
		return nil, connect.NewError(connect.CodeAlreadyExists, errors.New("agency already registered on this tour"))
	}

	agency := newAgency(req.Msg.Name, email, req.Msg.Phone)
	tour.PartnerAgencies = append(tour.PartnerAgencies, agency)

	if err := s.store.UpdateTourFields(ctx, tour.ID, storage.Fields{"partnerAgencies": tour.PartnerAgencies}); err != nil {
		return nil, storeError("AddAgency", err)
	}

	slog.Info("Agency added", "tour_id", tour.ID, "agency_id", agency.ID)

	return connect.NewResponse(&AgencyResponse{Agency: &agency}), nil
}

func newAgency(name, email, phone string) models.PartnerAgency {
	return models.PartnerAgency{
		ID:               uuid.New().String(),
		Name:             name,
		Email:            email,
		Phone:            phone,
		Guests:           []models.Guest{},
		Expenses:         []models.AgencyExpense{},
		SettlementStatus: models.SettlementUnpaid,
	}
}
