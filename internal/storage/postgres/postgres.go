// Package postgres provides a PostgreSQL-backed implementation of the storage.Store interface.
//
// Documents are kept in JSONB columns so the tour keeps its embedded shape;
// partial updates use jsonb_set.
package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS tours (
    id TEXT PRIMARY KEY,
    doc JSONB NOT NULL,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS personal_records (
    id TEXT PRIMARY KEY,
    tour_id TEXT NOT NULL,
    user_id TEXT NOT NULL,
    doc JSONB NOT NULL,
    updated_at BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_personal_records_tour_id ON personal_records(tour_id);
`

// Ensure PostgresStore implements storage.Store
var _ storage.Store = (*PostgresStore)(nil)

// PostgresStore implements storage.Store using PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// New opens a connection pool, pings the server and initializes the schema.
func New(ctx context.Context, dsn string) (*PostgresStore, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConns = 10
	cfg.MinConns = 2
	cfg.MaxConnLifetime = time.Hour

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	slog.Info("Connected to PostgreSQL")
	return &PostgresStore{pool: pool}, nil
}

// Ping checks the connection pool.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// Close closes the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

// CreateTour persists a new tour document.
func (s *PostgresStore) CreateTour(ctx context.Context, tour *models.Tour) error {
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

	_, err = s.pool.Exec(ctx,
		"INSERT INTO tours (id, doc, created_at) VALUES ($1, $2::jsonb, $3)",
		tour.ID, string(doc), tour.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

// GetTour retrieves a tour document by ID.
func (s *PostgresStore) GetTour(ctx context.Context, tourID string) (*models.Tour, error) {
	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT doc FROM tours WHERE id = $1", tourID).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}

	tour := &models.Tour{}
	if err := json.Unmarshal(doc, tour); err != nil {
		return nil, fmt.Errorf("failed to decode tour %s: %w", tourID, err)
	}
	tour.ID = tourID
	return tour, nil
}

// UpdateTourFields nests one jsonb_set call per field so the whole merge is
// a single UPDATE statement.
func (s *PostgresStore) UpdateTourFields(ctx context.Context, tourID string, fields storage.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	expr, args, err := buildJSONBSet(fields)
	if err != nil {
		return err
	}
	args = append(args, tourID)

	tag, err := s.pool.Exec(ctx,
		fmt.Sprintf("UPDATE tours SET doc = %s WHERE id = $%d", expr, len(args)),
		args...,
	)
	if err != nil {
		return fmt.Errorf("failed to update tour fields: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	return nil
}

// buildJSONBSet returns the jsonb_set expression over "doc" and its
// positional arguments: a text[] path and a jsonb value per field.
func buildJSONBSet(fields storage.Fields) (string, []any, error) {
	expr := "doc"
	args := make([]any, 0, 2*len(fields))
	for _, path := range fields.Paths() {
		value, err := json.Marshal(fields[path])
		if err != nil {
			return "", nil, fmt.Errorf("failed to encode field %s: %w", path, err)
		}
		args = append(args, strings.Split(path, "."), string(value))
		expr = fmt.Sprintf("jsonb_set(%s, $%d::text[], $%d::jsonb, true)", expr, len(args)-1, len(args))
	}
	return expr, args, nil
}

// QueryPersonalByTour retrieves all personal records of a tour.
func (s *PostgresStore) QueryPersonalByTour(ctx context.Context, tourID string) ([]*models.PersonalData, error) {
	rows, err := s.pool.Query(ctx,
		"SELECT doc FROM personal_records WHERE tour_id = $1 ORDER BY user_id",
		tourID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query personal records: %w", err)
	}
	defer rows.Close()

	var records []*models.PersonalData
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan personal record: %w", err)
		}
		record := &models.PersonalData{}
		if err := json.Unmarshal(doc, record); err != nil {
			return nil, fmt.Errorf("failed to decode personal record: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate personal records: %w", err)
	}
	return records, nil
}

// GetPersonalRecord retrieves one host's record for a tour.
func (s *PostgresStore) GetPersonalRecord(ctx context.Context, tourID, userID string) (*models.PersonalData, error) {
	key := models.PersonalKey(tourID, userID)

	var doc []byte
	err := s.pool.QueryRow(ctx, "SELECT doc FROM personal_records WHERE id = $1", key).Scan(&doc)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("personal record %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personal record: %w", err)
	}

	record := &models.PersonalData{}
	if err := json.Unmarshal(doc, record); err != nil {
		return nil, fmt.Errorf("failed to decode personal record %s: %w", key, err)
	}
	return record, nil
}

// SetPersonalRecord overwrites one host's record for a tour.
func (s *PostgresStore) SetPersonalRecord(ctx context.Context, tourID, userID string, record *models.PersonalData) error {
	record.ID = models.PersonalKey(tourID, userID)
	record.TourID = tourID
	record.UserID = userID
	record.UpdatedAt = time.Now().Unix()

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode personal record: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO personal_records (id, tour_id, user_id, doc, updated_at)
		 VALUES ($1, $2, $3, $4::jsonb, $5)
		 ON CONFLICT (id) DO UPDATE SET doc = EXCLUDED.doc, updated_at = EXCLUDED.updated_at`,
		record.ID, tourID, userID, string(doc), record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write personal record: %w", err)
	}
	return nil
}
