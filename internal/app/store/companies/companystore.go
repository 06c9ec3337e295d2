package companystore

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/cardhub/internal/app/system/normalize"
	"github.com/dalemusser/cardhub/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicateCompany is returned when a company with the same
	// case-insensitive name already exists.
	ErrDuplicateCompany = errors.New("a company with this name already exists")
	// ErrNotFound is returned when a conditional update matched no company.
	ErrNotFound = errors.New("company not found")
)

// Store provides access to the companies collection.
type Store struct {
	c *mongo.Collection
}

// New creates a company Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("companies")}
}

// Create inserts a new company after normalizing fields.
func (s *Store) Create(ctx context.Context, c models.Company) (models.Company, error) {
	c.ID = primitive.NewObjectID()
	c.Name = normalize.Name(c.Name)
	c.NameCI = text.Fold(c.Name)
	c.Email = normalize.Email(c.Email)
	if c.Status == "" {
		c.Status = "active"
	}

	now := time.Now()
	c.CreatedAt = now
	c.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, c); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Company{}, ErrDuplicateCompany
		}
		return models.Company{}, err
	}
	return c, nil
}

// GetByID loads a company by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Company, error) {
	var c models.Company
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns all companies sorted by name.
func (s *Store) List(ctx context.Context) ([]models.Company, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var companies []models.Company
	if err := cur.All(ctx, &companies); err != nil {
		return nil, err
	}
	return companies, nil
}

// Update holds the editable company profile fields.
type Update struct {
	Name    string
	Address string
	Phone   string
	Email   string
	Website string
	About   string
	LogoURL string
}

// Update modifies a company's profile fields.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, upd Update) error {
	name := normalize.Name(upd.Name)
	set := bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"address":    upd.Address,
		"phone":      upd.Phone,
		"email":      normalize.Email(upd.Email),
		"website":    upd.Website,
		"about":      upd.About,
		"updated_at": time.Now(),
	}
	if upd.LogoURL != "" {
		set["logo_url"] = upd.LogoURL
	}

	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateCompany
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate disables a company. Its admins and holders keep their rows
// but can no longer log in or resolve (the fetcher and resolution paths
// check user status, and deactivation cascades to users at the handler).
func (s *Store) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": "disabled", "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
