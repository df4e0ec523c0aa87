// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"
	"sort"

	"github.com/mmynk/tourledger/internal/models"
)

// ErrNotFound is returned when a tour or personal record does not exist.
var ErrNotFound = errors.New("not found")

// Fields is a partial update keyed by dotted field path, e.g.
// "busConfig.regularSeats". Values must be JSON-serializable.
type Fields map[string]any

// Paths returns the field paths in sorted order.
func (f Fields) Paths() []string {
	paths := make([]string, 0, len(f))
	for p := range f {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Store defines the document-store operations the ledger needs.
// This abstraction allows swapping storage backends (SQLite, MongoDB,
// PostgreSQL) without changing the service layer.
//
// Writes are individually atomic but there are no multi-document
// transactions; the seat recompute tolerates that by always rebuilding its
// aggregates from a fresh read.
type Store interface {
	// CreateTour persists a new tour. ID and CreatedAt are populated when empty.
	CreateTour(ctx context.Context, tour *models.Tour) error

	// GetTour retrieves a tour by ID. Returns ErrNotFound if missing.
	GetTour(ctx context.Context, tourID string) (*models.Tour, error)

	// UpdateTourFields merges the given fields into the tour document without
	// rewriting the rest of it. Returns ErrNotFound if missing. Each path is
	// replaced whole: two writers that read, modify and write the same path
	// (e.g. partnerAgencies) concurrently lose one of the changes.
	UpdateTourFields(ctx context.Context, tourID string, fields Fields) error

	// QueryPersonalByTour returns every personal record of a tour.
	QueryPersonalByTour(ctx context.Context, tourID string) ([]*models.PersonalData, error)

	// GetPersonalRecord retrieves the record of one host on one tour.
	// Returns ErrNotFound if missing.
	GetPersonalRecord(ctx context.Context, tourID, userID string) (*models.PersonalData, error)

	// SetPersonalRecord overwrites the record of one host on one tour.
	SetPersonalRecord(ctx context.Context, tourID, userID string, record *models.PersonalData) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases any resources held by the store.
	Close() error
}
