// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents superadmins, company admins, and card holders.
//
// NOTE:
//   - UserNo is a company-independent numeric sequence assigned at creation.
//     It is the decimal id embedded in NFC tag identifiers, so it must never
//     change once a tag has been issued for the user.
//   - NfcUID is the hardware serial of the physical tag; it is unique across
//     all active users when set (enforced by a unique sparse index).
//   - NdefURL is the encrypted tag payload last written to the card.
type User struct {
	ID        primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserNo    int64               `bson:"user_no" json:"user_no"`
	FirstName string              `bson:"first_name" json:"first_name"`
	LastName  string              `bson:"last_name" json:"last_name"`
	FullNameCI string             `bson:"full_name_ci" json:"-"` // lowercase, diacritics-stripped
	LoginID   string              `bson:"login_id" json:"login_id"`
	Password  string              `bson:"password,omitempty" json:"-"` // bcrypt hash
	Email     string              `bson:"email,omitempty" json:"email,omitempty"`
	Contact   string              `bson:"contact_number,omitempty" json:"contact_number,omitempty"`
	Position  string              `bson:"position,omitempty" json:"position,omitempty"`
	Bio       string              `bson:"bio,omitempty" json:"bio,omitempty"`
	PhotoURL  string              `bson:"photo_url,omitempty" json:"photo_url,omitempty"`
	Role      string              `bson:"role" json:"role"` // superadmin | admin | user
	Status    string              `bson:"status,omitempty" json:"status,omitempty"`
	CompanyID *primitive.ObjectID `bson:"company_id,omitempty" json:"company_id,omitempty"`

	NfcUID  string `bson:"nfc_uid,omitempty" json:"nfc_uid,omitempty"`
	NdefURL string `bson:"ndef_url,omitempty" json:"ndef_url,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsActive reports whether the user may log in or be resolved from a tag.
func (u *User) IsActive() bool {
	return u.Status == "" || u.Status == "active"
}
