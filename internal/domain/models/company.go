// internal/domain/models/company.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Company is a tenant. All admin- and holder-scoped data is partitioned
// by CompanyID.
type Company struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name    string             `bson:"name" json:"name"`
	NameCI  string             `bson:"name_ci" json:"-"` // lowercase, diacritics-stripped
	Address string             `bson:"address,omitempty" json:"address,omitempty"`
	Phone   string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Email   string             `bson:"email,omitempty" json:"email,omitempty"`
	Website string             `bson:"website,omitempty" json:"website,omitempty"`
	About   string             `bson:"about,omitempty" json:"about,omitempty"`
	LogoURL string             `bson:"logo_url,omitempty" json:"logo_url,omitempty"`
	Status  string             `bson:"status,omitempty" json:"status,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
