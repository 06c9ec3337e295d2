package productstore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/cardhub/internal/app/system/normalize"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrNotFound is returned when a conditional update matched no product.
var ErrNotFound = errors.New("product not found")

// Store provides access to the products collection.
type Store struct {
	c *mongo.Collection
}

// New creates a product Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("products")}
}

// Create inserts a product for a company.
func (s *Store) Create(ctx context.Context, p models.Product) (models.Product, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	if p.Status == "" {
		p.Status = "active"
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		return models.Product{}, err
	}
	return p, nil
}

// GetByID loads a product scoped to a company. The company filter keeps
// tenant isolation at the store level.
func (s *Store) GetByID(ctx context.Context, id, companyID primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "company_id": companyID}).Decode(&p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListByCompany returns a company's products sorted by name.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ListActiveByCompany returns the products shown on public profiles.
func (s *Store) ListActiveByCompany(ctx context.Context, companyID primitive.ObjectID) ([]models.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"company_id": companyID, "status": "active"}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var products []models.Product
	if err := cur.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// Update holds the editable product fields.
type Update struct {
	Name        string
	Description string
	ImageURL    string
	LinkURL     string
	Status      string
}

// Update modifies a product within a company.
func (s *Store) Update(ctx context.Context, id, companyID primitive.ObjectID, upd Update) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":        name,
		"name_ci":     text.Fold(name),
		"description": upd.Description,
		"link_url":    upd.LinkURL,
		"status":      normalize.Status(upd.Status),
		"updated_at":  time.Now(),
	}
	if upd.ImageURL != "" {
		set["image_url"] = upd.ImageURL
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a product within a company.
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
