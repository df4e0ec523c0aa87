package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"connectrpc.com/connect"
	"github.com/google/uuid"

	"github.com/mmynk/tourledger/internal/calculator"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/numeric"
	"github.com/mmynk/tourledger/internal/storage"
)

type UpsertAgencyGuestRequest struct {
	TourID string `json:"tourId" validate:"required"`
	// AgencyID is required for admins. Agencies may leave it empty; their
	// entry is found by email and created on first booking.
	AgencyID string `json:"agencyId"`
	// AgencyName names a self-registered agency. Defaults to the email.
	AgencyName string       `json:"agencyName"`
	Guest      models.Guest `json:"guest"`
}

type RemoveAgencyGuestRequest struct {
	TourID   string `json:"tourId" validate:"required"`
	AgencyID string `json:"agencyId"`
	GuestID  string `json:"guestId" validate:"required"`
}

type AgencyGuestResponse struct {
	Agency *models.PartnerAgency    `json:"agency"`
	Guest  *models.Guest            `json:"guest,omitempty"`
	Seats  calculator.SeatAggregate `json:"seats"`
}

type UpdateAgencyExpensesRequest struct {
	TourID   string                 `json:"tourId" validate:"required"`
	AgencyID string                 `json:"agencyId"`
	Expenses []models.AgencyExpense `json:"expenses"`
}

type SetGuestReceivedRequest struct {
	TourID string `json:"tourId" validate:"required"`
	// AgencyID selects an agency guest. When empty the guest is looked up in
	// the personal record of UserID, or of the caller if UserID is empty.
	AgencyID string `json:"agencyId"`
	UserID   string `json:"userId"`
	GuestID  string `json:"guestId" validate:"required"`
	Received bool   `json:"received"`
}

type GuestResponse struct {
	Guest *models.Guest            `json:"guest"`
	Seats calculator.SeatAggregate `json:"seats"`
}

type SetSettlementStatusRequest struct {
	TourID   string                  `json:"tourId" validate:"required"`
	AgencyID string                  `json:"agencyId" validate:"required"`
	Status   models.SettlementStatus `json:"status" validate:"required"`
}

type UpsertPersonalGuestRequest struct {
	TourID string       `json:"tourId" validate:"required"`
	UserID string       `json:"userId"`
	Guest  models.Guest `json:"guest"`
}

type RemovePersonalGuestRequest struct {
	TourID  string `json:"tourId" validate:"required"`
	UserID  string `json:"userId"`
	GuestID string `json:"guestId" validate:"required"`
}

// UpdatePersonalSettingsRequest replaces every non-guest field of a personal
// record.
type UpdatePersonalSettingsRequest struct {
	TourID                string                 `json:"tourId" validate:"required"`
	UserID                string                 `json:"userId"`
	BookingFee            numeric.Number         `json:"bookingFee"`
	CustomExpenses        []models.CustomExpense `json:"customExpenses"`
	CustomPricing         *models.CustomPricing  `json:"customPricing,omitempty"`
	PersonalStandardCount numeric.Number         `json:"personalStandardCount"`
	PersonalDisc1Count    numeric.Number         `json:"personalDisc1Count"`
	PersonalDisc2Count    numeric.Number         `json:"personalDisc2Count"`
}

type PersonalResponse struct {
	Record *models.PersonalData     `json:"record"`
	Guest  *models.Guest            `json:"guest,omitempty"`
	Seats  calculator.SeatAggregate `json:"seats"`
}

// BookingService mutates guest lists. Every mutation that touches a guest is
// followed by a seat recompute of the tour.
type BookingService struct {
	store      storage.Store
	recomputer *SeatRecomputer
}

// NewBookingService creates a new BookingService with the given storage backend.
func NewBookingService(store storage.Store, recomputer *SeatRecomputer) *BookingService {
	return &BookingService{store: store, recomputer: recomputer}
}

// agencyIndexFor returns the agency entry of the tour the caller may edit.
// Admins address agencies by ID. An agency always addresses its own entry;
// with register set, a missing entry is appended to tour.PartnerAgencies.
func agencyIndexFor(tour *models.Tour, actor models.Actor, agencyID, name string, register bool) (int, error) {
	switch actor.Role {
	case models.RoleAdmin:
		if agencyID == "" {
			return -1, connect.NewError(connect.CodeInvalidArgument, errors.New("agencyId is required"))
		}
		i := tour.FindAgency(agencyID)
		if i < 0 {
			return -1, connect.NewError(connect.CodeNotFound, fmt.Errorf("agency %s: %w", agencyID, storage.ErrNotFound))
		}
		return i, nil

	case models.RoleAgency:
		email := strings.ToLower(actor.Email)
		i := tour.FindAgencyByEmail(email)
		if i >= 0 {
			if agencyID != "" && agencyID != tour.PartnerAgencies[i].ID {
				return -1, connect.NewError(connect.CodePermissionDenied, errNotOwnEntry)
			}
			return i, nil
		}
		if !register || email == "" {
			return -1, connect.NewError(connect.CodeNotFound, fmt.Errorf("no agency entry for %s: %w", email, storage.ErrNotFound))
		}
		if name == "" {
			name = email
		}
		tour.PartnerAgencies = append(tour.PartnerAgencies, newAgency(name, email, ""))
		slog.Info("Agency self-registered", "tour_id", tour.ID, "email", email)
		return len(tour.PartnerAgencies) - 1, nil
	}
	return -1, connect.NewError(connect.CodePermissionDenied, errForbidden)
}

// checkGuest rejects entries whose breakdowns do not match their seat count.
func checkGuest(g models.Guest) error {
	if err := calculator.ValidateGuest(g); err != nil {
		return connect.NewError(connect.CodeInvalidArgument, err)
	}
	return nil
}

// upsertGuest replaces the guest with the same ID or appends it, assigning
// an ID when empty.
func upsertGuest(guests []models.Guest, g models.Guest) ([]models.Guest, models.Guest) {
	if g.ID == "" {
		g.ID = uuid.New().String()
	}
	for i := range guests {
		if guests[i].ID == g.ID {
			guests[i] = g
			return guests, g
		}
	}
	return append(guests, g), g
}

// storedReceived returns the check-in state of the stored guest with id, or
// false when there is none.
func storedReceived(guests []models.Guest, id string) bool {
	if id == "" {
		return false
	}
	for _, g := range guests {
		if g.ID == id {
			return g.IsReceived
		}
	}
	return false
}

func removeGuest(guests []models.Guest, guestID string) ([]models.Guest, bool) {
	for i := range guests {
		if guests[i].ID == guestID {
			return append(guests[:i], guests[i+1:]...), true
		}
	}
	return guests, false
}

// writeAgencies replaces the whole partnerAgencies array with the copy read
// at the start of the request. Two agency mutations on the same tour that
// overlap in time therefore race: the later write drops the earlier one, and
// the seat recompute cannot restore a lost guest. The window is one
// read-modify-write; callers see their own write succeed.
// TODO: write per-agency paths (partnerAgencies.<id>) once agencies are
// keyed by id rather than stored as an array.
func (s *BookingService) writeAgencies(ctx context.Context, tour *models.Tour) error {
	return s.store.UpdateTourFields(ctx, tour.ID, storage.Fields{"partnerAgencies": tour.PartnerAgencies})
}

func (s *BookingService) recompute(ctx context.Context, op, tourID string) (calculator.SeatAggregate, error) {
	agg, err := s.recomputer.Recompute(ctx, tourID)
	if err != nil {
		return agg, storeError(op+" recompute", err)
	}
	return agg, nil
}

// UpsertAgencyGuest adds or edits a guest on an agency's list.
func (s *BookingService) UpsertAgencyGuest(ctx context.Context, req *connect.Request[UpsertAgencyGuestRequest]) (*connect.Response[AgencyGuestResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleAgency)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if err := checkGuest(req.Msg.Guest); err != nil {
		return nil, err
	}

	slog.Info("UpsertAgencyGuest request received",
		"tour_id", req.Msg.TourID,
		"agency_id", req.Msg.AgencyID,
		"guest_id", req.Msg.Guest.ID,
		"user_id", actor.UserID,
	)

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("UpsertAgencyGuest", err)
	}

	i, err := agencyIndexFor(tour, actor, req.Msg.AgencyID, req.Msg.AgencyName, true)
	if err != nil {
		return nil, err
	}
	agency := &tour.PartnerAgencies[i]

	g := req.Msg.Guest
	if actor.Role == models.RoleAgency {
		// Check-in belongs to hosts and admins.
		g.IsReceived = storedReceived(agency.Guests, g.ID)
	}

	var guest models.Guest
	agency.Guests, guest = upsertGuest(agency.Guests, g)

	if err := s.writeAgencies(ctx, tour); err != nil {
		return nil, storeError("UpsertAgencyGuest", err)
	}
	agg, err := s.recompute(ctx, "UpsertAgencyGuest", tour.ID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&AgencyGuestResponse{Agency: agency, Guest: &guest, Seats: agg}), nil
}

// RemoveAgencyGuest deletes a guest from an agency's list.
func (s *BookingService) RemoveAgencyGuest(ctx context.Context, req *connect.Request[RemoveAgencyGuestRequest]) (*connect.Response[AgencyGuestResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleAgency)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("RemoveAgencyGuest", err)
	}

	i, err := agencyIndexFor(tour, actor, req.Msg.AgencyID, "", false)
	if err != nil {
		return nil, err
	}
	agency := &tour.PartnerAgencies[i]

	var removed bool
	agency.Guests, removed = removeGuest(agency.Guests, req.Msg.GuestID)
	if !removed {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("guest %s: %w", req.Msg.GuestID, storage.ErrNotFound))
	}

	if err := s.writeAgencies(ctx, tour); err != nil {
		return nil, storeError("RemoveAgencyGuest", err)
	}
	agg, err := s.recompute(ctx, "RemoveAgencyGuest", tour.ID)
	if err != nil {
		return nil, err
	}

	slog.Info("Agency guest removed", "tour_id", tour.ID, "agency_id", agency.ID, "guest_id", req.Msg.GuestID)

	return connect.NewResponse(&AgencyGuestResponse{Agency: agency, Seats: agg}), nil
}

// UpdateAgencyExpenses replaces the expenses an agency paid on the tour's behalf.
func (s *BookingService) UpdateAgencyExpenses(ctx context.Context, req *connect.Request[UpdateAgencyExpensesRequest]) (*connect.Response[AgencyResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleAgency)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("UpdateAgencyExpenses", err)
	}

	i, err := agencyIndexFor(tour, actor, req.Msg.AgencyID, "", false)
	if err != nil {
		return nil, err
	}
	agency := &tour.PartnerAgencies[i]
	agency.Expenses = req.Msg.Expenses
	if agency.Expenses == nil {
		agency.Expenses = []models.AgencyExpense{}
	}

	if err := s.writeAgencies(ctx, tour); err != nil {
		return nil, storeError("UpdateAgencyExpenses", err)
	}

	return connect.NewResponse(&AgencyResponse{Agency: agency}), nil
}

// SetGuestReceived checks a guest in or marks them absent.
func (s *BookingService) SetGuestReceived(ctx context.Context, req *connect.Request[SetGuestReceivedRequest]) (*connect.Response[GuestResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin, models.RoleHost)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}

	slog.Info("SetGuestReceived request received",
		"tour_id", req.Msg.TourID,
		"guest_id", req.Msg.GuestID,
		"received", req.Msg.Received,
		"user_id", actor.UserID,
	)

	var guest models.Guest
	if req.Msg.AgencyID != "" {
		tour, err := s.store.GetTour(ctx, req.Msg.TourID)
		if err != nil {
			return nil, storeError("SetGuestReceived", err)
		}
		a := tour.FindAgency(req.Msg.AgencyID)
		if a < 0 {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("agency %s: %w", req.Msg.AgencyID, storage.ErrNotFound))
		}
		agency := &tour.PartnerAgencies[a]
		g := agency.FindGuest(req.Msg.GuestID)
		if g < 0 {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("guest %s: %w", req.Msg.GuestID, storage.ErrNotFound))
		}
		agency.Guests[g].IsReceived = req.Msg.Received
		guest = agency.Guests[g]
		if err := s.writeAgencies(ctx, tour); err != nil {
			return nil, storeError("SetGuestReceived", err)
		}
	} else {
		userID := req.Msg.UserID
		if userID == "" {
			userID = actor.UserID
		}
		record, err := s.store.GetPersonalRecord(ctx, req.Msg.TourID, userID)
		if err != nil {
			return nil, storeError("SetGuestReceived", err)
		}
		g := record.FindGuest(req.Msg.GuestID)
		if g < 0 {
			return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("guest %s: %w", req.Msg.GuestID, storage.ErrNotFound))
		}
		record.Guests[g].IsReceived = req.Msg.Received
		guest = record.Guests[g]
		if err := s.store.SetPersonalRecord(ctx, req.Msg.TourID, userID, record); err != nil {
			return nil, storeError("SetGuestReceived", err)
		}
	}

	agg, err := s.recompute(ctx, "SetGuestReceived", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&GuestResponse{Guest: &guest, Seats: agg}), nil
}

// SetSettlementStatus moves an agency between unpaid, paid and settled.
// Any move between the declared states is allowed.
func (s *BookingService) SetSettlementStatus(ctx context.Context, req *connect.Request[SetSettlementStatusRequest]) (*connect.Response[AgencyResponse], error) {
	actor, err := requireRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	if err := validateRequest(req.Msg); err != nil {
		return nil, err
	}
	if !req.Msg.Status.Valid() {
		return nil, connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("unknown settlement status %q", req.Msg.Status))
	}

	tour, err := s.store.GetTour(ctx, req.Msg.TourID)
	if err != nil {
		return nil, storeError("SetSettlementStatus", err)
	}
	i, err := agencyIndexFor(tour, actor, req.Msg.AgencyID, "", false)
	if err != nil {
		return nil, err
	}
	agency := &tour.PartnerAgencies[i]
	previous := agency.SettlementStatus
	agency.SettlementStatus = req.Msg.Status

	if err := s.writeAgencies(ctx, tour); err != nil {
		return nil, storeError("SetSettlementStatus", err)
	}

	slog.Info("Settlement status changed",
		"tour_id", tour.ID,
		"agency_id", agency.ID,
		"from", previous,
		"to", agency.SettlementStatus,
	)

	return connect.NewResponse(&AgencyResponse{Agency: agency}), nil
}

// loadPersonal returns the caller's record for a tour, or a fresh one if the
// host has not booked yet. The tour itself must exist.
func (s *BookingService) loadPersonal(ctx context.Context, op, tourID, userID string) (*models.PersonalData, error) {
	if _, err := s.store.GetTour(ctx, tourID); err != nil {
		return nil, storeError(op, err)
	}
	record, err := s.store.GetPersonalRecord(ctx, tourID, userID)
	if errors.Is(err, storage.ErrNotFound) {
		return &models.PersonalData{
			TourID:         tourID,
			UserID:         userID,
			Guests:         []models.Guest{},
			CustomExpenses: []models.CustomExpense{},
		}, nil
	}
	if err != nil {
		return nil, storeError(op, err)
	}
	return record, nil
}

// UpsertPersonalGuest adds or edits a guest on a host's own list.
func (s *BookingService) UpsertPersonalGuest(ctx context.Context, req *connect.Request[UpsertPersonalGuestRequest]) (*connect.Response[PersonalResponse], error) {
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
	if err := checkGuest(req.Msg.Guest); err != nil {
		return nil, err
	}

	slog.Info("UpsertPersonalGuest request received",
		"tour_id", req.Msg.TourID,
		"guest_id", req.Msg.Guest.ID,
		"user_id", userID,
	)

	record, err := s.loadPersonal(ctx, "UpsertPersonalGuest", req.Msg.TourID, userID)
	if err != nil {
		return nil, err
	}

	var guest models.Guest
	record.Guests, guest = upsertGuest(record.Guests, req.Msg.Guest)

	if err := s.store.SetPersonalRecord(ctx, req.Msg.TourID, userID, record); err != nil {
		return nil, storeError("UpsertPersonalGuest", err)
	}
	agg, err := s.recompute(ctx, "UpsertPersonalGuest", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&PersonalResponse{Record: record, Guest: &guest, Seats: agg}), nil
}

// RemovePersonalGuest deletes a guest from a host's own list.
func (s *BookingService) RemovePersonalGuest(ctx context.Context, req *connect.Request[RemovePersonalGuestRequest]) (*connect.Response[PersonalResponse], error) {
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

	record, err := s.store.GetPersonalRecord(ctx, req.Msg.TourID, userID)
	if err != nil {
		return nil, storeError("RemovePersonalGuest", err)
	}

	var removed bool
	record.Guests, removed = removeGuest(record.Guests, req.Msg.GuestID)
	if !removed {
		return nil, connect.NewError(connect.CodeNotFound, fmt.Errorf("guest %s: %w", req.Msg.GuestID, storage.ErrNotFound))
	}

	if err := s.store.SetPersonalRecord(ctx, req.Msg.TourID, userID, record); err != nil {
		return nil, storeError("RemovePersonalGuest", err)
	}
	agg, err := s.recompute(ctx, "RemovePersonalGuest", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	slog.Info("Personal guest removed", "tour_id", req.Msg.TourID, "user_id", userID, "guest_id", req.Msg.GuestID)

	return connect.NewResponse(&PersonalResponse{Record: record, Seats: agg}), nil
}

// UpdatePersonalSettings overwrites a host's booking fee, expenses, pricing
// and legacy counts. Legacy counts feed the seat aggregates, so the tour is
// recomputed afterwards.
func (s *BookingService) UpdatePersonalSettings(ctx context.Context, req *connect.Request[UpdatePersonalSettingsRequest]) (*connect.Response[PersonalResponse], error) {
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

	record, err := s.loadPersonal(ctx, "UpdatePersonalSettings", req.Msg.TourID, userID)
	if err != nil {
		return nil, err
	}

	record.BookingFee = req.Msg.BookingFee
	record.CustomExpenses = req.Msg.CustomExpenses
	if record.CustomExpenses == nil {
		record.CustomExpenses = []models.CustomExpense{}
	}
	record.CustomPricing = req.Msg.CustomPricing
	record.PersonalStandardCount = req.Msg.PersonalStandardCount
	record.PersonalDisc1Count = req.Msg.PersonalDisc1Count
	record.PersonalDisc2Count = req.Msg.PersonalDisc2Count

	if err := s.store.SetPersonalRecord(ctx, req.Msg.TourID, userID, record); err != nil {
		return nil, storeError("UpdatePersonalSettings", err)
	}
	agg, err := s.recompute(ctx, "UpdatePersonalSettings", req.Msg.TourID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&PersonalResponse{Record: record, Seats: agg}), nil
}
