package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

// QueryPersonalByTour retrieves all personal records of a tour.
func (s *SQLiteStore) QueryPersonalByTour(ctx context.Context, tourID string) ([]*models.PersonalData, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT doc FROM personal_records WHERE tour_id = ? ORDER BY user_id",
		tourID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query personal records: %w", err)
	}
	defer rows.Close()

	var records []*models.PersonalData
	for rows.Next() {
		var doc string
		if err := rows.Scan(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan personal record: %w", err)
		}
		record := &models.PersonalData{}
		if err := json.Unmarshal([]byte(doc), record); err != nil {
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
func (s *SQLiteStore) GetPersonalRecord(ctx context.Context, tourID, userID string) (*models.PersonalData, error) {
	key := models.PersonalKey(tourID, userID)

	var doc string
	err := s.db.QueryRowContext(ctx, "SELECT doc FROM personal_records WHERE id = ?", key).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("personal record %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personal record: %w", err)
	}

	record := &models.PersonalData{}
	if err := json.Unmarshal([]byte(doc), record); err != nil {
		return nil, fmt.Errorf("failed to decode personal record %s: %w", key, err)
	}
	return record, nil
}

// SetPersonalRecord overwrites one host's record for a tour.
func (s *SQLiteStore) SetPersonalRecord(ctx context.Context, tourID, userID string, record *models.PersonalData) error {
	record.ID = models.PersonalKey(tourID, userID)
	record.TourID = tourID
	record.UserID = userID
	record.UpdatedAt = time.Now().Unix()

	doc, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to encode personal record: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO personal_records (id, tour_id, user_id, doc, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET doc = excluded.doc, updated_at = excluded.updated_at`,
		record.ID, tourID, userID, string(doc), record.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to write personal record: %w", err)
	}
	return nil
}
