// internal/app/store/emaillogs/store.go
package emaillogs

import (
	"context"
	"time"

	"github.com/dalemusser/cardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Store persists outbound email attempts so admins can audit delivery.
type Store struct {
	c *mongo.Collection
}

// New creates an email log Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("email_logs")}
}

// Create records a pending send and returns its ID.
func (s *Store) Create(ctx context.Context, log models.EmailLog) (primitive.ObjectID, error) {
	log.ID = primitive.NewObjectID()
	log.Status = models.EmailPending
	log.CreatedAt = time.Now()
	if _, err := s.c.InsertOne(ctx, log); err != nil {
		return primitive.NilObjectID, err
	}
	return log.ID, nil
}

// MarkSent flags a pending log entry as delivered.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID) error {
	now := time.Now()
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":  models.EmailSent,
		"sent_at": now,
	}})
	return err
}

// MarkFailed flags a pending log entry as failed with the error text.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID, reason string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":        models.EmailFailed,
		"error_message": reason,
	}})
	return err
}
