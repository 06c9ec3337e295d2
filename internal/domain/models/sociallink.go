// internal/domain/models/sociallink.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Social link owner kinds. A link belongs either to the company profile
// or to an individual user/admin profile.
const (
	SocialOwnerCompany = "company"
	SocialOwnerUser    = "user"
)

// SocialLink is a social-media entry shown on a profile page.
type SocialLink struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	CompanyID primitive.ObjectID  `bson:"company_id" json:"company_id"`
	OwnerKind string              `bson:"owner_kind" json:"owner_kind"` // company | user
	OwnerID   *primitive.ObjectID `bson:"owner_id,omitempty" json:"owner_id,omitempty"`
	Platform  string              `bson:"platform" json:"platform"` // e.g. facebook, linkedin
	URL       string              `bson:"url" json:"url"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
