package settingsstore

import (
	"context"
	"strings"
	"time"

	"github.com/dalemusser/cardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store provides access to the system_settings collection.
type Store struct {
	c *mongo.Collection
}

// New creates a settings Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("system_settings")}
}

// Get returns the value for key, or def when the key is absent.
func (s *Store) Get(ctx context.Context, key, def string) (string, error) {
	var row models.Setting
	err := s.c.FindOne(ctx, bson.M{"key": key}).Decode(&row)
	if err == mongo.ErrNoDocuments {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return row.Value, nil
}

// Set upserts a setting keyed by its name.
func (s *Store) Set(ctx context.Context, key, value, description string, updatedBy *primitive.ObjectID) error {
	key = strings.TrimSpace(key)
	set := bson.M{
		"value":      value,
		"updated_at": time.Now(),
	}
	if description != "" {
		set["description"] = description
	}
	if updatedBy != nil {
		set["updated_by"] = *updatedBy
	}
	_, err := s.c.UpdateOne(ctx,
		bson.M{"key": key},
		bson.M{"$set": set, "$setOnInsert": bson.M{"key": key}},
		options.Update().SetUpsert(true))
	return err
}

// List returns all settings sorted by key.
func (s *Store) List(ctx context.Context) ([]models.Setting, error) {
	opts := options.Find().SetSort(bson.D{{Key: "key", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var rows []models.Setting
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}
