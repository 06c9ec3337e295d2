package socialstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/cardhub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a conditional update matched no link.
var ErrNotFound = errors.New("social link not found")

// Store provides access to the social_links collection.
type Store struct {
	c *mongo.Collection
}

// New creates a social link Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("social_links")}
}

// Create inserts a social link.
func (s *Store) Create(ctx context.Context, l models.SocialLink) (models.SocialLink, error) {
	l.ID = primitive.NewObjectID()
	l.Platform = strings.ToLower(strings.TrimSpace(l.Platform))

	now := time.Now()
	l.CreatedAt = now
	l.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, l); err != nil {
		return models.SocialLink{}, err
	}
	return l, nil
}

// GetByID loads a link scoped to a company.
func (s *Store) GetByID(ctx context.Context, id, companyID primitive.ObjectID) (*models.SocialLink, error) {
	var l models.SocialLink
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&l); err != nil {
		return nil, err
	}
	return &l, nil
}

// ListForCompany returns a company's company-level links.
func (s *Store) ListForCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.SocialLink, error) {
	return s.list(ctx, bson.M{"company_id": companyID, "owner_kind": models.SocialOwnerCompany})
}

// ListForUser returns one user's personal links.
func (s *Store) ListForUser(ctx context.Context, companyID, userID primitive.ObjectID) ([]models.SocialLink, error) {
	return s.list(ctx, bson.M{"company_id": companyID, "owner_kind": models.SocialOwnerUser, "owner_id": userID})
}

func (s *Store) list(ctx context.Context, filter bson.M) ([]models.SocialLink, error) {
	opts := options.Find().SetSort(bson.D{{Key: "platform", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var links []models.SocialLink
	if err := cur.All(ctx, &links); err != nil {
		return nil, err
	}
	return links, nil
}

// Update modifies a link's platform and URL within a company.
func (s *Store) Update(ctx context.Context, id, companyID primitive.ObjectID, platform, url string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{
			"platform":   strings.ToLower(strings.TrimSpace(platform)),
			"url":        url,
			"updated_at": time.Now(),
		}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a link within a company.
func (s *Store) Delete(ctx context.Context, id, companyID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "company_id": companyID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
