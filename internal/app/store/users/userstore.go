package userstore

import (
	"context"
	"errors"
	"fmt"
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
	// ErrDuplicateLoginID is returned when a login ID is already taken.
	ErrDuplicateLoginID = errors.New("a user with this login ID already exists")
	// ErrDuplicateNfcUID is returned when the hardware UID is already
	// registered to another user. The unique sparse index on nfc_uid makes
	// the claim atomic, so two concurrent registrations of the same tag
	// cannot both succeed.
	ErrDuplicateNfcUID = errors.New("NFC UID already registered to another user")
	// ErrNotFound is returned when a conditional update matched no user.
	ErrNotFound = errors.New("user not found")

	errBadRole       = errors.New(`role must be "superadmin"|"admin"|"user"`)
	errBadStatus     = errors.New(`status must be "active"|"disabled"`)
	errCompanyNeeded = errors.New("admin/user must have company_id")
)

// Store provides access to the users collection. Card holders, company
// admins, and superadmins all live here, distinguished by role.
type Store struct {
	c        *mongo.Collection
	counters *mongo.Collection
}

// New creates a user Store.
func New(db *mongo.Database) *Store {
	return &Store{
		c:        db.Collection("users"),
		counters: db.Collection("counters"),
	}
}

// NextUserNo allocates the next value of the user-number sequence.
// User numbers are embedded in NFC tag identifiers and therefore must be
// small positive integers that never repeat.
func (s *Store) NextUserNo(ctx context.Context) (int64, error) {
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var doc struct {
		Seq int64 `bson:"seq"`
	}
	err := s.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": "user_no"},
		bson.M{"$inc": bson.M{"seq": int64(1)}},
		opts,
	).Decode(&doc)
	if err != nil {
		return 0, fmt.Errorf("allocate user number: %w", err)
	}
	return doc.Seq, nil
}

// Create inserts a new user after normalizing & validating fields.
// The caller supplies an already-hashed password. A user number is
// allocated from the sequence if not provided.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FirstName = normalize.Name(u.FirstName)
	u.LastName = normalize.Name(u.LastName)
	u.FullNameCI = text.Fold(u.FirstName + " " + u.LastName)
	u.LoginID = normalize.LoginID(u.LoginID)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Status = normalize.Status(u.Status)

	switch u.Role {
	case "superadmin", "admin", "user":
		// ok
	default:
		return models.User{}, errBadRole
	}
	if u.Status != "active" && u.Status != "disabled" {
		return models.User{}, errBadStatus
	}
	if (u.Role == "admin" || u.Role == "user") && u.CompanyID == nil {
		return models.User{}, errCompanyNeeded
	}

	if u.UserNo == 0 {
		no, err := s.NextUserNo(ctx)
		if err != nil {
			return models.User{}, err
		}
		u.UserNo = no
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateLoginID
		}
		return models.User{}, err
	}
	return u, nil
}

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByLoginID looks up a user by case-insensitive login ID.
// Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByLoginID(ctx context.Context, loginID string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"login_id": normalize.LoginID(loginID)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// FindByNfcUID looks up an active user holding the given hardware UID.
// Returns nil, nil when no active user holds it.
func (s *Store) FindByNfcUID(ctx context.Context, uid string) (*models.User, error) {
	var u models.User
	err := s.c.FindOne(ctx, bson.M{"nfc_uid": uid, "status": "active"}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// ListByCompany returns all users of a role within a company, sorted by name.
func (s *Store) ListByCompany(ctx context.Context, companyID primitive.ObjectID, role string) ([]models.User, error) {
	filter := bson.M{"company_id": companyID}
	if role != "" {
		filter["role"] = normalize.Role(role)
	}
	opts := options.Find().SetSort(bson.D{{Key: "full_name_ci", Value: 1}})
	cur, err := s.c.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// ListActive returns every active card holder with the fields tag
// resolution needs (names, user number, status). This is the linear-scan
// input for identifier matching; at expected scale a projection-only
// query is cheap, and a persisted identifier index is the upgrade path
// if the holder count grows.
func (s *Store) ListActive(ctx context.Context) ([]models.User, error) {
	proj := options.Find().SetProjection(bson.M{
		"_id":        1,
		"user_no":    1,
		"first_name": 1,
		"last_name":  1,
		"status":     1,
		"company_id": 1,
	})
	cur, err := s.c.Find(ctx, bson.M{"role": "user", "status": "active"}, proj)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// HolderUpdate holds the fields an admin can change on a card holder.
type HolderUpdate struct {
	FirstName string
	LastName  string
	Email     string
	Contact   string
	Position  string
	Bio       string
	Status    string
}

// UpdateHolder updates a card holder's editable fields within a company.
// The company filter enforces tenant isolation at the store level too, so
// a handler bug cannot cross tenants.
func (s *Store) UpdateHolder(ctx context.Context, id, companyID primitive.ObjectID, upd HolderUpdate) error {
	first := normalize.Name(upd.FirstName)
	last := normalize.Name(upd.LastName)
	set := bson.M{
		"first_name":     first,
		"last_name":      last,
		"full_name_ci":   text.Fold(first + " " + last),
		"email":          normalize.Email(upd.Email),
		"contact_number": upd.Contact,
		"position":       upd.Position,
		"bio":            upd.Bio,
		"status":         normalize.Status(upd.Status),
		"updated_at":     time.Now(),
	}

	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID, "role": "user"},
		bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Deactivate disables a user (login and tag resolution stop working).
// Holders are never hard-deleted; their user number must stay burned.
func (s *Store) Deactivate(ctx context.Context, id, companyID primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "company_id": companyID},
		bson.M{"$set": bson.M{"status": "disabled", "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DeactivateCompanyUsers disables every user of a company. Used when a
// superadmin deactivates the company itself, so its admins and holders
// stop logging in and resolving in the same step.
func (s *Store) DeactivateCompanyUsers(ctx context.Context, companyID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx,
		bson.M{"company_id": companyID, "status": "active"},
		bson.M{"$set": bson.M{"status": "disabled", "updated_at": time.Now()}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// RegisterTag claims a hardware UID for an active holder and persists
// the freshly encoded NDEF URL in the same update, so the two identity
// channels cannot be written separately. The unique sparse index on
// nfc_uid turns a concurrent duplicate claim into a duplicate-key error.
func (s *Store) RegisterTag(ctx context.Context, id primitive.ObjectID, nfcUID, ndefURL string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "role": "user", "status": "active"},
		bson.M{"$set": bson.M{
			"nfc_uid":    nfcUID,
			"ndef_url":   ndefURL,
			"updated_at": time.Now(),
		}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateNfcUID
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPassword replaces a user's bcrypt hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ProfileUpdate holds the fields a user can change on their own profile.
type ProfileUpdate struct {
	Email    string
	Contact  string
	Bio      string
	PhotoURL string
}

// UpdateProfile updates a user's self-service fields. Names are excluded
// deliberately: a name change would silently invalidate any issued tag,
// so names are only changed by an admin who can re-register the card.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, upd ProfileUpdate) error {
	set := bson.M{
		"email":          normalize.Email(upd.Email),
		"contact_number": upd.Contact,
		"bio":            upd.Bio,
		"updated_at":     time.Now(),
	}
	if upd.PhotoURL != "" {
		set["photo_url"] = upd.PhotoURL
	}
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// GenerateLoginID derives a login ID from the holder's name and the
// current year, appending a numeric suffix until it is unique:
// "janedoe2026", "janedoe20261", ...
func (s *Store) GenerateLoginID(ctx context.Context, firstName, lastName string, year int) (string, error) {
	base := text.Fold(normalize.Name(firstName)+normalize.Name(lastName)) + fmt.Sprintf("%d", year)
	base = stripSpaces(base)

	candidate := base
	for suffix := 1; ; suffix++ {
		n, err := s.c.CountDocuments(ctx, bson.M{"login_id": candidate})
		if err != nil {
			return "", err
		}
		if n == 0 {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, suffix)
	}
}

func stripSpaces(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r == ' ' || r == '\t' {
			continue
		}
		out = append(out, r)
	}
	return string(out)
}
