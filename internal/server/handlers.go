package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mmynk/tourledger/internal/metrics"
	"github.com/mmynk/tourledger/internal/report"
	"github.com/mmynk/tourledger/internal/service"
	"github.com/mmynk/tourledger/internal/storage"
)

// HealthHandler exposes a readiness probe.
type HealthHandler struct {
	Store storage.Store
}

func (h HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/healthz", h.handleHealth)
}

func (h HealthHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := "ok"
	code := http.StatusOK
	if err := h.Store.Ping(ctx); err != nil {
		slog.Warn("Health check failed", "error", err)
		status = "degraded"
		code = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"status": status,
	})
}

// ExportHandler serves settlement workbooks.
type ExportHandler struct {
	Settlement *service.SettlementService
}

func (h ExportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/tours/{id}/settlements.xlsx", h.export)
}

func (h ExportHandler) export(w http.ResponseWriter, r *http.Request) {
	tourID := chi.URLParam(r, "id")

	summary, tour, err := h.Settlement.Summary(r.Context(), tourID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tour == nil {
		http.Error(w, "tour not found", http.StatusNotFound)
		return
	}

	data, err := report.SettlementXLSX(tour.Name, summary)
	if err != nil {
		slog.Error("Settlement export failed", "tour_id", tourID, "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	metrics.SettlementExports.Inc()

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"settlements_%s.xlsx\"", tourID))
	_, _ = w.Write(data)
}
