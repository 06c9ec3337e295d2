// internal/app/features/profile/handler.go
package profile

// Self-service profile for any signed-in user. Names are not editable
// here: a name change would invalidate an issued tag, so only admins
// change names (and re-register the card).

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authutil"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:    users,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// HandleGet handles GET /api/profile.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Account not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load profile", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, u)
}

type updateRequest struct {
	Email    string `json:"email"`
	Contact  string `json:"contact_number"`
	Bio      string `json:"bio"`
	PhotoURL string `json:"photo_url"`
}

// HandleUpdate handles PUT /api/profile.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode profile body failed", err, "Invalid request body.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err := h.Users.UpdateProfile(ctx, userID, userstore.ProfileUpdate{
		Email:    req.Email,
		Contact:  htmlsanitize.StripTags(req.Contact),
		Bio:      htmlsanitize.Sanitize(req.Bio),
		PhotoURL: req.PhotoURL,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Account not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update profile", err, "A server error occurred.")
		return
	}
	uierrors.OKMessage(w, "Profile updated.", nil)
}

type passwordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// HandleChangePassword handles POST /api/profile/password.
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var req passwordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode password body failed", err, "Invalid request body.")
		return
	}
	if err := authutil.ValidatePassword(req.NewPassword); err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB load user", err, "A server error occurred.")
		return
	}
	if u.Password == "" || !authutil.CheckPassword(req.CurrentPassword, u.Password) {
		uierrors.Fail(w, http.StatusForbidden, "Current password is incorrect.")
		return
	}

	hash, err := authutil.HashPassword(req.NewPassword)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "A server error occurred.")
		return
	}
	if err := h.Users.SetPassword(ctx, userID, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "DB set password", err, "A server error occurred.")
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, userID, u.CompanyID)
	uierrors.OKMessage(w, "Password changed.", nil)
}
