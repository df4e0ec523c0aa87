// Package server wires HTTP routes, middleware and the Connect services.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/config"
	authmw "github.com/mmynk/tourledger/internal/middleware"
	"github.com/mmynk/tourledger/internal/service"
	"github.com/mmynk/tourledger/internal/storage"
)

// Services bundles the Connect service implementations.
type Services struct {
	Tours      *service.TourService
	Bookings   *service.BookingService
	Settlement *service.SettlementService
}

// NewRouter wires HTTP routes and middleware.
func NewRouter(cfg config.Config, logger *slog.Logger, store storage.Store, jwtManager *auth.JWTManager, svc Services) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(NewLoggerMiddleware(logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "Connect-Protocol-Version", "Connect-Timeout-Ms"},
		ExposedHeaders: []string{"Connect-Protocol-Version", "Connect-Timeout-Ms", "Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(httprate.LimitByIP(cfg.RateLimitPerMinute, 1*time.Minute))

	health := HealthHandler{Store: store}
	health.RegisterRoutes(r)
	r.Method("GET", "/metrics", promhttp.Handler())

	r.Group(func(ar chi.Router) {
		ar.Use(authmw.RequireAdminHTTP(jwtManager))
		export := ExportHandler{Settlement: svc.Settlement}
		export.RegisterRoutes(ar)
	})

	interceptors := connect.WithInterceptors(authmw.RequireAuth(jwtManager), authmw.LoggingInterceptor())
	// Connect procedures live under "/<service>/".
	tourPath, tourHandler := service.NewTourServiceHandler(svc.Tours, interceptors)
	r.Handle(tourPath+"*", tourHandler)

	bookingPath, bookingHandler := service.NewBookingServiceHandler(svc.Bookings, interceptors)
	r.Handle(bookingPath+"*", bookingHandler)

	settlementPath, settlementHandler := service.NewSettlementServiceHandler(svc.Settlement, interceptors)
	r.Handle(settlementPath+"*", settlementHandler)

	return r
}
