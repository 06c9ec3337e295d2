// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories.
const (
	CategoryAuth  = "auth"  // login, logout, password changes
	CategoryAdmin = "admin" // CRUD on holders/products/companies, NFC registration
	CategoryCard  = "card"  // public tap resolutions
)

// Event is a single audit record.
type Event struct {
	ID            primitive.ObjectID  `bson:"_id,omitempty"`
	Category      string              `bson:"category"`
	EventType     string              `bson:"event_type"`
	Success       bool                `bson:"success"`
	UserID        *primitive.ObjectID `bson:"user_id,omitempty"`  // subject of the event
	ActorID       *primitive.ObjectID `bson:"actor_id,omitempty"` // who performed it
	CompanyID     *primitive.ObjectID `bson:"company_id,omitempty"`
	IP            string              `bson:"ip,omitempty"`
	UserAgent     string              `bson:"user_agent,omitempty"`
	FailureReason string              `bson:"failure_reason,omitempty"`
	Details       map[string]string   `bson:"details,omitempty"`
	CreatedAt     time.Time           `bson:"created_at"`
}

// Store persists audit events to the activity_logs collection.
type Store struct {
	c *mongo.Collection
}

// New creates an audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("activity_logs")}
}

// Insert writes one event. CreatedAt is stamped here so callers never
// forget it.
func (s *Store) Insert(ctx context.Context, ev Event) error {
	ev.ID = primitive.NewObjectID()
	ev.CreatedAt = time.Now()
	_, err := s.c.InsertOne(ctx, ev)
	return err
}

// ListByCompany returns the most recent events for a company, newest first.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, limit int64) ([]Event, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit)
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var events []Event
	if err := cur.All(ctx, &events); err != nil {
		return nil, err
	}
	return events, nil
}
