// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

// Ensure SQLiteStore implements storage.Store
var _ storage.Store = (*SQLiteStore)(nil)

// SQLiteStore implements storage.Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// New creates a new SQLiteStore with the given database path.
// It creates the parent directories and runs migrations automatically.
func New(dbPath string) (*SQLiteStore, error) {
	// Create parent directory if it doesn't exist
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// Open database with pure Go driver. Concurrent writers wait for the
	// lock instead of failing with SQLITE_BUSY.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Run migrations
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateTour persists a new tour document.
func (s *SQLiteStore) CreateTour(ctx context.Context, tour *models.Tour) error {
	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}
	if tour.CreatedAt == 0 {
		tour.CreatedAt = time.Now().Unix()
	}
	if tour.PartnerAgencies == nil {
		tour.PartnerAgencies = []models.PartnerAgency{}
	}

	doc, err := json.Marshal(tour)
	if err != nil {
		return fmt.Errorf("failed to encode tour: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO tours (id, doc, created_at) VALUES (?, ?, ?)",
		tour.ID, string(doc), tour.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

// GetTour retrieves a tour document by ID.
func (s *SQLiteStore) GetTour(ctx context.Context, tourID string) (*models.Tour, error) {
	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM tours WHERE id = ?", tourID).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}

	tour := &models.Tour{}
	if err := json.Unmarshal([]byte(doc), tour); err != nil {
		return nil, fmt.Errorf("failed to decode tour %s: %w", tourID, err)
	}
	tour.ID = tourID
	return tour, nil
}

// UpdateTourFields merges fields into the stored document with json_set in a
// single statement, leaving every other field untouched.
func (s *SQLiteStore) UpdateTourFields(ctx context.Context, tourID string, fields storage.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	var (
		expr strings.Builder
		args []any
	)
	expr.WriteString("json_set(doc")
	for _, path := range fields.Paths() {
		value, err := json.Marshal(fields[path])
		if err != nil {
			return fmt.Errorf("failed to encode field %s: %w", path, err)
		}
		expr.WriteString(", ?, json(?)")
		args = append(args, jsonPath(path), string(value))
	}
	expr.WriteString(")")
	args = append(args, tourID)

	res, err := s.db.ExecContext(ctx, "UPDATE tours SET doc = "+expr.String()+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("failed to update tour fields: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check updated rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	return nil
}

// jsonPath converts a dotted field path to a SQLite JSON path.
func jsonPath(path string) string {
	return "$." + path
}
