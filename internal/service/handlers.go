package service

import (
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/tourledger/internal/rpc"
)

// Fully qualified service names. Procedures are served at
// "/<service>/<method>".
const (
	TourServiceName       = "tourledger.v1.TourService"
	BookingServiceName    = "tourledger.v1.BookingService"
	SettlementServiceName = "tourledger.v1.SettlementService"
)

func procedure(service, method string) string {
	return "/" + service + "/" + method
}

// NewTourServiceHandler builds an HTTP handler for TourService and returns
// the path to mount it on.
func NewTourServiceHandler(svc *TourService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := rpc.NewMux(TourServiceName, opts...)
	rpc.Handle(m, "CreateTour", svc.CreateTour)
	rpc.Handle(m, "GetTour", svc.GetTour)
	rpc.Handle(m, "AddAgency", svc.AddAgency)
	return m.Path(), m
}

// NewBookingServiceHandler builds an HTTP handler for BookingService and
// returns the path to mount it on.
func NewBookingServiceHandler(svc *BookingService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := rpc.NewMux(BookingServiceName, opts...)
	rpc.Handle(m, "UpsertAgencyGuest", svc.UpsertAgencyGuest)
	rpc.Handle(m, "RemoveAgencyGuest", svc.RemoveAgencyGuest)
	rpc.Handle(m, "UpdateAgencyExpenses", svc.UpdateAgencyExpenses)
	rpc.Handle(m, "SetGuestReceived", svc.SetGuestReceived)
	rpc.Handle(m, "SetSettlementStatus", svc.SetSettlementStatus)
	rpc.Handle(m, "UpsertPersonalGuest", svc.UpsertPersonalGuest)
	rpc.Handle(m, "RemovePersonalGuest", svc.RemovePersonalGuest)
	rpc.Handle(m, "UpdatePersonalSettings", svc.UpdatePersonalSettings)
	return m.Path(), m
}

// NewSettlementServiceHandler builds an HTTP handler for SettlementService
// and returns the path to mount it on.
func NewSettlementServiceHandler(svc *SettlementService, opts ...connect.HandlerOption) (string, http.Handler) {
	m := rpc.NewMux(SettlementServiceName, opts...)
	rpc.Handle(m, "EstimateBusFare", svc.EstimateBusFare)
	rpc.Handle(m, "GetBuyRates", svc.GetBuyRates)
	rpc.Handle(m, "GetAgencySettlement", svc.GetAgencySettlement)
	rpc.Handle(m, "GetPersonalSettlement", svc.GetPersonalSettlement)
	rpc.Handle(m, "GetTourSummary", svc.GetTourSummary)
	rpc.Handle(m, "RecalculateTourSeats", svc.RecalculateTourSeats)
	return m.Path(), m
}

// TourServiceClient calls TourService procedures.
type TourServiceClient struct {
	CreateTour *connect.Client[CreateTourRequest, TourResponse]
	GetTour    *connect.Client[GetTourRequest, TourResponse]
	AddAgency  *connect.Client[AddAgencyRequest, AgencyResponse]
}

// NewTourServiceClient creates a TourService client for baseURL.
func NewTourServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *TourServiceClient {
	return &TourServiceClient{
		CreateTour: rpc.NewClient[CreateTourRequest, TourResponse](httpClient, baseURL, procedure(TourServiceName, "CreateTour"), opts...),
		GetTour:    rpc.NewClient[GetTourRequest, TourResponse](httpClient, baseURL, procedure(TourServiceName, "GetTour"), opts...),
		AddAgency:  rpc.NewClient[AddAgencyRequest, AgencyResponse](httpClient, baseURL, procedure(TourServiceName, "AddAgency"), opts...),
	}
}

// BookingServiceClient calls BookingService procedures.
type BookingServiceClient struct {
	UpsertAgencyGuest      *connect.Client[UpsertAgencyGuestRequest, AgencyGuestResponse]
	RemoveAgencyGuest      *connect.Client[RemoveAgencyGuestRequest, AgencyGuestResponse]
	UpdateAgencyExpenses   *connect.Client[UpdateAgencyExpensesRequest, AgencyResponse]
	SetGuestReceived       *connect.Client[SetGuestReceivedRequest, GuestResponse]
	SetSettlementStatus    *connect.Client[SetSettlementStatusRequest, AgencyResponse]
	UpsertPersonalGuest    *connect.Client[UpsertPersonalGuestRequest, PersonalResponse]
	RemovePersonalGuest    *connect.Client[RemovePersonalGuestRequest, PersonalResponse]
	UpdatePersonalSettings *connect.Client[UpdatePersonalSettingsRequest, PersonalResponse]
}

// NewBookingServiceClient creates a BookingService client for baseURL.
func NewBookingServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *BookingServiceClient {
	p := func(method string) string { return procedure(BookingServiceName, method) }
	return &BookingServiceClient{
		UpsertAgencyGuest:      rpc.NewClient[UpsertAgencyGuestRequest, AgencyGuestResponse](httpClient, baseURL, p("UpsertAgencyGuest"), opts...),
		RemoveAgencyGuest:      rpc.NewClient[RemoveAgencyGuestRequest, AgencyGuestResponse](httpClient, baseURL, p("RemoveAgencyGuest"), opts...),
		UpdateAgencyExpenses:   rpc.NewClient[UpdateAgencyExpensesRequest, AgencyResponse](httpClient, baseURL, p("UpdateAgencyExpenses"), opts...),
		SetGuestReceived:       rpc.NewClient[SetGuestReceivedRequest, GuestResponse](httpClient, baseURL, p("SetGuestReceived"), opts...),
		SetSettlementStatus:    rpc.NewClient[SetSettlementStatusRequest, AgencyResponse](httpClient, baseURL, p("SetSettlementStatus"), opts...),
		UpsertPersonalGuest:    rpc.NewClient[UpsertPersonalGuestRequest, PersonalResponse](httpClient, baseURL, p("UpsertPersonalGuest"), opts...),
		RemovePersonalGuest:    rpc.NewClient[RemovePersonalGuestRequest, PersonalResponse](httpClient, baseURL, p("RemovePersonalGuest"), opts...),
		UpdatePersonalSettings: rpc.NewClient[UpdatePersonalSettingsRequest, PersonalResponse](httpClient, baseURL, p("UpdatePersonalSettings"), opts...),
	}
}

// SettlementServiceClient calls SettlementService procedures.
type SettlementServiceClient struct {
	EstimateBusFare       *connect.Client[EstimateBusFareRequest, EstimateBusFareResponse]
	GetBuyRates           *connect.Client[TourRequest, BuyRatesResponse]
	GetAgencySettlement   *connect.Client[GetAgencySettlementRequest, AgencySettlementResponse]
	GetPersonalSettlement *connect.Client[GetPersonalSettlementRequest, PersonalSettlementResponse]
	GetTourSummary        *connect.Client[TourRequest, TourSummaryResponse]
	RecalculateTourSeats  *connect.Client[TourRequest, RecalculateResponse]
}

// NewSettlementServiceClient creates a SettlementService client for baseURL.
func NewSettlementServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *SettlementServiceClient {
	p := func(method string) string { return procedure(SettlementServiceName, method) }
	return &SettlementServiceClient{
		EstimateBusFare:       rpc.NewClient[EstimateBusFareRequest, EstimateBusFareResponse](httpClient, baseURL, p("EstimateBusFare"), opts...),
		GetBuyRates:           rpc.NewClient[TourRequest, BuyRatesResponse](httpClient, baseURL, p("GetBuyRates"), opts...),
		GetAgencySettlement:   rpc.NewClient[GetAgencySettlementRequest, AgencySettlementResponse](httpClient, baseURL, p("GetAgencySettlement"), opts...),
		GetPersonalSettlement: rpc.NewClient[GetPersonalSettlementRequest, PersonalSettlementResponse](httpClient, baseURL, p("GetPersonalSettlement"), opts...),
		GetTourSummary:        rpc.NewClient[TourRequest, TourSummaryResponse](httpClient, baseURL, p("GetTourSummary"), opts...),
		RecalculateTourSeats:  rpc.NewClient[TourRequest, RecalculateResponse](httpClient, baseURL, p("RecalculateTourSeats"), opts...),
	}
}
