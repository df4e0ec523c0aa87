package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mmynk/tourledger/internal/auth"
	"github.com/mmynk/tourledger/internal/config"
	"github.com/mmynk/tourledger/internal/server"
	"github.com/mmynk/tourledger/internal/service"
	"github.com/mmynk/tourledger/internal/storage"
	"github.com/mmynk/tourledger/internal/storage/mongostore"
	"github.com/mmynk/tourledger/internal/storage/postgres"
	"github.com/mmynk/tourledger/internal/storage/sqlite"
	"github.com/mmynk/tourledger/pkg/logging"
)

func main() {
	logging.Setup()
	logger := slog.Default()

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx, cfg)
	if err != nil {
		logger.Error("Failed to initialize storage", "driver", cfg.StoreDriver, "error", err)
		os.Exit(1)
	}
	defer store.Close()
	logger.Info("Storage initialized", "driver", cfg.StoreDriver)

	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)
	recomputer := service.NewSeatRecomputer(store)
	svc := server.Services{
		Tours:      service.NewTourService(store),
		Bookings:   service.NewBookingService(store, recomputer),
		Settlement: service.NewSettlementService(store, recomputer),
	}

	router := server.NewRouter(cfg, logger, store, jwtManager, svc)
	if err := server.Start(ctx, cfg, router, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func openStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.StoreDriver {
	case config.DriverSQLite:
		return sqlite.New(cfg.DBPath)
	case config.DriverMongo:
		return mongostore.New(ctx, cfg.MongoURI, cfg.MongoDBName)
	case config.DriverPostgres:
		return postgres.New(ctx, cfg.DatabaseURL)
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
}
