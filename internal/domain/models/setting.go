// internal/domain/models/setting.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Setting is a system-wide key/value configuration row managed by
// superadmins (SMTP defaults, card text, and similar).
type Setting struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Key         string              `bson:"key" json:"key"`
	Value       string              `bson:"value" json:"value"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	UpdatedBy   *primitive.ObjectID `bson:"updated_by,omitempty" json:"updated_by,omitempty"`
	UpdatedAt   time.Time           `bson:"updated_at" json:"updated_at"`
}
