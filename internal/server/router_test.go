package server

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/config"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/service"
	"github.com/mmynk/tourledger/internal/storage/sqlite"
)

type testServer struct {
	url        string
	store      *sqlite.SQLiteStore
	jwtManager *auth.JWTManager
}

func setupRouter(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "router.db"))
	require.NoError(t, err)

	cfg := config.Config{RateLimitPerMinute: 1000, CORSAllowedOrigins: []string{"*"}}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	recomputer := service.NewSeatRecomputer(store)
	svc := Services{
		Tours:      service.NewTourService(store),
		Bookings:   service.NewBookingService(store, recomputer),
		Settlement: service.NewSettlementService(store, recomputer),
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	server := httptest.NewServer(NewRouter(cfg, logger, store, jwtManager, svc))
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})
	return &testServer{url: server.URL, store: store, jwtManager: jwtManager}
}

func (s *testServer) get(t *testing.T, path string, actor *models.Actor) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodGet, s.url+path, nil)
	require.NoError(t, err)
	if actor != nil {
		token, err := s.jwtManager.Generate(*actor)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestHealthAndMetrics(t *testing.T) {
	s := setupRouter(t)

	resp := s.get(t, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))

	resp = s.get(t, "/metrics", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSettlementExport(t *testing.T) {
	s := setupRouter(t)
	ctx := context.Background()

	tour := &models.Tour{
		Name:      "Sylhet Haor",
		BusConfig: models.BusConfig{TotalRent: 4000, TotalSeats: 40},
		PartnerAgencies: []models.PartnerAgency{{
			ID:               "a1",
			Name:             "Sundarban Travels",
			SettlementStatus: models.SettlementPaid,
			Guests:           []models.Guest{{ID: "g1", SeatCount: 2, Collection: 3000, IsReceived: true}},
		}},
	}
	require.NoError(t, s.store.CreateTour(ctx, tour))

	admin := models.Actor{UserID: "admin-1", Role: models.RoleAdmin}
	host := models.Actor{UserID: "host-1", Role: models.RoleHost}

	assert.Equal(t, http.StatusUnauthorized, s.get(t, "/tours/"+tour.ID+"/settlements.xlsx", nil).StatusCode)
	assert.Equal(t, http.StatusForbidden, s.get(t, "/tours/"+tour.ID+"/settlements.xlsx", &host).StatusCode)
	assert.Equal(t, http.StatusNotFound, s.get(t, "/tours/missing/settlements.xlsx", &admin).StatusCode)

	resp := s.get(t, "/tours/"+tour.ID+"/settlements.xlsx", &admin)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	name, err := f.GetCellValue("Settlements", "B2")
	require.NoError(t, err)
	assert.Equal(t, "Sundarban Travels", name)
}

func TestConnectRoutes(t *testing.T) {
	s := setupRouter(t)
	ctx := context.Background()

	token, err := s.jwtManager.Generate(models.Actor{UserID: "admin-1", Role: models.RoleAdmin})
	require.NoError(t, err)
	client := service.NewTourServiceClient(http.DefaultClient, s.url)

	req := connect.NewRequest(&service.CreateTourRequest{
		Name:      "Kuakata Sunrise",
		BusConfig: models.BusConfig{TotalSeats: 36},
	})
	req.Header().Set("Authorization", "Bearer "+token)
	resp, err := client.CreateTour.CallUnary(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, 36.0, resp.Msg.Tour.BusConfig.RegularSeats.Float())

	_, err = client.GetTour.CallUnary(ctx, connect.NewRequest(&service.GetTourRequest{TourID: resp.Msg.Tour.ID}))
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}
