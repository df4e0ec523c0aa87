package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/middleware"
	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage/sqlite"
)

var (
	admin   = models.Actor{UserID: "admin-1", Email: "ops@house.example", Role: models.RoleAdmin}
	host    = models.Actor{UserID: "host-1", Email: "rahim@house.example", Role: models.RoleHost}
	host2   = models.Actor{UserID: "host-2", Email: "karim@house.example", Role: models.RoleHost}
	agency  = models.Actor{UserID: "agency-1", Email: "desk@sundarban.example", Role: models.RoleAgency}
	agency2 = models.Actor{UserID: "agency-2", Email: "info@hilltracks.example", Role: models.RoleAgency}
)

type testEnv struct {
	store      *sqlite.SQLiteStore
	jwtManager *auth.JWTManager
	url        string
}

// clients holds one caller's view of every service.
type clients struct {
	tours      *TourServiceClient
	bookings   *BookingServiceClient
	settlement *SettlementServiceClient
}

// setupTestServer creates a test server with all three services behind the
// auth and logging interceptors.
func setupTestServer(t *testing.T) *testEnv {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	interceptors := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor())
	recomputer := NewSeatRecomputer(store)

	mux := http.NewServeMux()
	mux.Handle(NewTourServiceHandler(NewTourService(store), interceptors))
	mux.Handle(NewBookingServiceHandler(NewBookingService(store, recomputer), interceptors))
	mux.Handle(NewSettlementServiceHandler(NewSettlementService(store, recomputer), interceptors))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testEnv{store: store, jwtManager: jwtManager, url: server.URL}
}

// as returns clients that authenticate as actor.
func (e *testEnv) as(t *testing.T, actor models.Actor) *clients {
	t.Helper()

	token, err := e.jwtManager.Generate(actor)
	require.NoError(t, err)

	bearer := connect.WithInterceptors(connect.UnaryInterceptorFunc(func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			req.Header().Set("Authorization", "Bearer "+token)
			return next(ctx, req)
		}
	}))

	return &clients{
		tours:      NewTourServiceClient(http.DefaultClient, e.url, bearer),
		bookings:   NewBookingServiceClient(http.DefaultClient, e.url, bearer),
		settlement: NewSettlementServiceClient(http.DefaultClient, e.url, bearer),
	}
}

// anonymous returns clients that send no token.
func (e *testEnv) anonymous() *clients {
	return &clients{
		tours:      NewTourServiceClient(http.DefaultClient, e.url),
		bookings:   NewBookingServiceClient(http.DefaultClient, e.url),
		settlement: NewSettlementServiceClient(http.DefaultClient, e.url),
	}
}

// createTour creates the reference tour used across tests: 40 seats,
// rent 4000, host fee 1000 and 500 of daily expenses.
func createTour(t *testing.T, c *clients) *models.Tour {
	t.Helper()

	resp, err := c.tours.CreateTour.CallUnary(context.Background(), connect.NewRequest(&CreateTourRequest{
		Name:     "Sajek Valley",
		Date:     "2026-12-05",
		Duration: "2 days",
		Fees:     models.Fees{Regular: 1500, Disc1: 1300, Disc2: 1100},
		BusConfig: models.BusConfig{
			TotalRent:  4000,
			TotalSeats: 40,
		},
		Costs: models.Costs{
			HostFee:       1000,
			DailyExpenses: []models.DailyExpense{{Day: 1, Breakfast: 200, Lunch: 300}},
		},
	}))
	require.NoError(t, err)
	return resp.Msg.Tour
}
