// internal/domain/models/emaillog.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Email log statuses.
const (
	EmailPending = "pending"
	EmailSent    = "sent"
	EmailFailed  = "failed"
)

// EmailLog records an outbound email attempt.
type EmailLog struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Recipient string             `bson:"recipient_email" json:"recipient_email"`
	EmailType string             `bson:"email_type" json:"email_type"`
	Subject   string             `bson:"subject" json:"subject"`
	Body      string             `bson:"email_body" json:"-"`
	Status    string             `bson:"status" json:"status"` // pending | sent | failed
	Error     string             `bson:"error_message,omitempty" json:"error_message,omitempty"`
	SentAt    *time.Time         `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
}
