// Package mongostore provides a MongoDB-backed implementation of the storage.Store interface.
//
// Tours are stored one document per tour in the "tours" collection with
// their partner agencies embedded; personal records live in "personal",
// keyed by models.PersonalKey.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/mmynk/tourledger/internal/models"
	"github.com/mmynk/tourledger/internal/storage"
)

const (
	toursCollection    = "tours"
	personalCollection = "personal"
)

// Ensure MongoStore implements storage.Store
var _ storage.Store = (*MongoStore)(nil)

// MongoStore implements storage.Store using MongoDB.
type MongoStore struct {
	client   *mongo.Client
	tours    *mongo.Collection
	personal *mongo.Collection
}

// New connects to MongoDB, pings the primary and ensures indexes.
func New(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(connectCtx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	s := &MongoStore{
		client:   client,
		tours:    db.Collection(toursCollection),
		personal: db.Collection(personalCollection),
	}

	_, err = s.personal.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "tourId", Value: 1}, {Key: "userId", Value: 1}},
	})
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("failed to create personal index: %w", err)
	}

	slog.Info("Connected to MongoDB", "database", dbName)
	return s, nil
}

// Ping checks that the primary is reachable.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (s *MongoStore) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	return nil
}

// CreateTour inserts a new tour document.
func (s *MongoStore) CreateTour(ctx context.Context, tour *models.Tour) error {
	if tour.ID == "" {
		tour.ID = uuid.New().String()
	}
	if tour.CreatedAt == 0 {
		tour.CreatedAt = time.Now().Unix()
	}
	if tour.PartnerAgencies == nil {
		tour.PartnerAgencies = []models.PartnerAgency{}
	}

	if _, err := s.tours.InsertOne(ctx, tour); err != nil {
		return fmt.Errorf("failed to insert tour: %w", err)
	}
	return nil
}

// GetTour retrieves a tour document by ID.
func (s *MongoStore) GetTour(ctx context.Context, tourID string) (*models.Tour, error) {
	tour := &models.Tour{}
	err := s.tours.FindOne(ctx, bson.M{"_id": tourID}).Decode(tour)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get tour: %w", err)
	}
	return tour, nil
}

// UpdateTourFields applies the fields with $set; dotted paths address nested fields.
func (s *MongoStore) UpdateTourFields(ctx context.Context, tourID string, fields storage.Fields) error {
	if len(fields) == 0 {
		return nil
	}

	set := bson.D{}
	for _, path := range fields.Paths() {
		set = append(set, bson.E{Key: path, Value: fields[path]})
	}

	res, err := s.tours.UpdateOne(ctx, bson.M{"_id": tourID}, bson.D{{Key: "$set", Value: set}})
	if err != nil {
		return fmt.Errorf("failed to update tour fields: %w", err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("tour %s: %w", tourID, storage.ErrNotFound)
	}
	return nil
}

// QueryPersonalByTour retrieves all personal records of a tour.
func (s *MongoStore) QueryPersonalByTour(ctx context.Context, tourID string) ([]*models.PersonalData, error) {
	cursor, err := s.personal.Find(ctx,
		bson.M{"tourId": tourID},
		options.Find().SetSort(bson.D{{Key: "userId", Value: 1}}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query personal records: %w", err)
	}

	var records []*models.PersonalData
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("failed to decode personal records: %w", err)
	}
	return records, nil
}

// GetPersonalRecord retrieves one host's record for a tour.
func (s *MongoStore) GetPersonalRecord(ctx context.Context, tourID, userID string) (*models.PersonalData, error) {
	key := models.PersonalKey(tourID, userID)

	record := &models.PersonalData{}
	err := s.personal.FindOne(ctx, bson.M{"_id": key}).Decode(record)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("personal record %s: %w", key, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get personal record: %w", err)
	}
	return record, nil
}

// SetPersonalRecord replaces (or creates) one host's record for a tour.
func (s *MongoStore) SetPersonalRecord(ctx context.Context, tourID, userID string, record *models.PersonalData) error {
	record.ID = models.PersonalKey(tourID, userID)
	record.TourID = tourID
	record.UserID = userID
	record.UpdatedAt = time.Now().Unix()

	_, err := s.personal.ReplaceOne(ctx,
		bson.M{"_id": record.ID},
		record,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("failed to write personal record: %w", err)
	}
	return nil
}
