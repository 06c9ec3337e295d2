// internal/app/system/auditlog/events.go
package auditlog

import (
	"context"
	"net/http"

	"github.com/dalemusser/cardhub/internal/app/store/audit"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Convenience wrappers so handlers record events in one line. All are
// safe on a nil Logger.

func (l *Logger) event(r *http.Request, category, eventType string, success bool) audit.Event {
	return audit.Event{
		Category:  category,
		EventType: eventType,
		Success:   success,
		IP:        ClientIP(r),
		UserAgent: r.UserAgent(),
	}
}

// LoginSuccess records a completed login.
func (l *Logger) LoginSuccess(ctx context.Context, r *http.Request, userID primitive.ObjectID, companyID *primitive.ObjectID, loginID string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAuth, "login_success", true)
	ev.UserID = &userID
	ev.CompanyID = companyID
	ev.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, ev)
}

// LoginFailed records a failed login attempt. The reason stays internal;
// callers return a generic message to the client.
func (l *Logger) LoginFailed(ctx context.Context, r *http.Request, loginID, reason string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAuth, "login_failed", false)
	ev.FailureReason = reason
	ev.Details = map[string]string{"login_id": loginID}
	l.Log(ctx, ev)
}

// Logout records a sign-out.
func (l *Logger) Logout(ctx context.Context, r *http.Request, userID primitive.ObjectID, companyID *primitive.ObjectID) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAuth, "logout", true)
	ev.UserID = &userID
	ev.CompanyID = companyID
	l.Log(ctx, ev)
}

// PasswordChanged records a password change by the user themselves.
func (l *Logger) PasswordChanged(ctx context.Context, r *http.Request, userID primitive.ObjectID, companyID *primitive.ObjectID) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAuth, "password_changed", true)
	ev.UserID = &userID
	ev.CompanyID = companyID
	l.Log(ctx, ev)
}

// AdminAction records a successful admin mutation (holder/product/company
// CRUD and similar). subjectID may be nil for collection-level actions.
func (l *Logger) AdminAction(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, subjectID, companyID *primitive.ObjectID, details map[string]string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAdmin, eventType, true)
	ev.ActorID = &actorID
	ev.UserID = subjectID
	ev.CompanyID = companyID
	ev.Details = details
	l.Log(ctx, ev)
}

// AdminActionFailed records a rejected or failed admin mutation.
func (l *Logger) AdminActionFailed(ctx context.Context, r *http.Request, eventType string, actorID primitive.ObjectID, companyID *primitive.ObjectID, reason string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAdmin, eventType, false)
	ev.ActorID = &actorID
	ev.CompanyID = companyID
	ev.FailureReason = reason
	l.Log(ctx, ev)
}

// TagRegistered records a successful NFC tag registration.
func (l *Logger) TagRegistered(ctx context.Context, r *http.Request, actorID, holderID primitive.ObjectID, companyID *primitive.ObjectID, nfcUID string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryAdmin, "nfc_register", true)
	ev.ActorID = &actorID
	ev.UserID = &holderID
	ev.CompanyID = companyID
	ev.Details = map[string]string{"nfc_uid": nfcUID}
	l.Log(ctx, ev)
}

// CardResolved records a public tap that resolved to a holder.
func (l *Logger) CardResolved(ctx context.Context, r *http.Request, holderID primitive.ObjectID, companyID *primitive.ObjectID) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryCard, "card_resolved", true)
	ev.UserID = &holderID
	ev.CompanyID = companyID
	l.Log(ctx, ev)
}

// CardResolveFailed records a tap that did not resolve. No payload detail
// is stored; the ciphertext may be attacker-controlled.
func (l *Logger) CardResolveFailed(ctx context.Context, r *http.Request, reason string) {
	if l == nil {
		return
	}
	ev := l.event(r, audit.CategoryCard, "card_resolve_failed", false)
	ev.FailureReason = reason
	l.Log(ctx, ev)
}
