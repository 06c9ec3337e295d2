// internal/app/features/nfc/handler.go
package nfc

// Tag registration. An admin selects a holder and taps a blank tag on the
// desk reader; this endpoint claims the hardware UID, computes the
// encrypted payload, persists both together, and tells the desktop bridge
// to write the tag.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/bridge"
	"github.com/dalemusser/cardhub/internal/app/system/tagcodec"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Codec    *tagcodec.Codec
	Users    *userstore.Store
	Bridge   *bridge.Notifier
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(
	codec *tagcodec.Codec,
	users *userstore.Store,
	notifier *bridge.Notifier,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Codec:    codec,
		Users:    users,
		Bridge:   notifier,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

type registerRequest struct {
	UserID string `json:"user_id"`
	NfcUID string `json:"nfc_uid"`
}

type registerResponse struct {
	NdefURL        string `json:"ndef_url"`
	UserNo         int64  `json:"user_no"`
	BridgeNotified bool   `json:"bridge_notified"`
}

// HandleRegister handles POST /api/nfc/register. Admin only.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, ok := authz.UserCtx(r)
	if !ok {
		uierrors.Fail(w, http.StatusUnauthorized, "Sign in required.")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode register body failed", err, "Invalid request body.")
		return
	}

	req.NfcUID = strings.TrimSpace(req.NfcUID)
	if req.NfcUID == "" {
		uierrors.Fail(w, http.StatusBadRequest, "nfc_uid is required.")
		return
	}
	holderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.UserID))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "user_id is not a valid id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	holder, err := h.Users.GetByID(ctx, holderID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		uierrors.Fail(w, http.StatusNotFound, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load holder", err, "A server error occurred.")
		return
	}

	if holder.CompanyID == nil || !authz.CanAccessCompany(r, *holder.CompanyID) {
		h.AuditLog.AdminActionFailed(ctx, r, "nfc_register", actorID, holder.CompanyID, "tenant mismatch")
		uierrors.Fail(w, http.StatusForbidden, "You cannot register cards for this holder.")
		return
	}
	if holder.Role != "user" || !holder.IsActive() {
		h.AuditLog.AdminActionFailed(ctx, r, "nfc_register", actorID, holder.CompanyID, "holder not active")
		uierrors.Fail(w, http.StatusNotFound, "Card holder not found.")
		return
	}

	ndefURL, err := h.Codec.Encode(holder.FirstName, holder.LastName, holder.UserNo)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "encode tag payload", err, "Unable to encode the card payload.")
		return
	}

	err = h.Users.RegisterTag(ctx, holder.ID, req.NfcUID, ndefURL)
	switch {
	case errors.Is(err, userstore.ErrDuplicateNfcUID):
		h.AuditLog.AdminActionFailed(ctx, r, "nfc_register", actorID, holder.CompanyID, "duplicate nfc uid")
		uierrors.Fail(w, http.StatusBadRequest, "This card is already registered to another user.")
		return
	case errors.Is(err, userstore.ErrNotFound):
		uierrors.Fail(w, http.StatusNotFound, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB register tag", err, "A server error occurred.")
		return
	}

	// The bridge writes the physical tag. A notify failure leaves the
	// registration in place; the admin can re-tap to retry the write.
	notified := true
	if err := h.Bridge.NotifyRegister(ctx, holder.UserNo); err != nil {
		notified = false
		h.Log.Warn("bridge notify failed",
			zap.Int64("user_no", holder.UserNo),
			zap.Error(err))
	}

	h.AuditLog.TagRegistered(ctx, r, actorID, holder.ID, holder.CompanyID, req.NfcUID)

	uierrors.OK(w, registerResponse{
		NdefURL:        ndefURL,
		UserNo:         holder.UserNo,
		BridgeNotified: notified,
	})
}

type holderSummary struct {
	ID        string `json:"id"`
	UserNo    int64  `json:"user_no"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Position  string `json:"position,omitempty"`
	CompanyID string `json:"company_id,omitempty"`
	NdefURL   string `json:"ndef_url,omitempty"`
}

// HandleLookupByUID handles GET /api/nfc/user?uid=<hardware uid>.
// Admin only; used by the registration desk to show who holds a tag.
func (h *Handler) HandleLookupByUID(w http.ResponseWriter, r *http.Request) {
	uid := strings.TrimSpace(r.URL.Query().Get("uid"))
	if uid == "" {
		uierrors.Fail(w, http.StatusBadRequest, "uid is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	holder, err := h.Users.FindByNfcUID(ctx, uid)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB find by nfc uid", err, "A server error occurred.")
		return
	}
	if holder == nil || holder.CompanyID == nil || !authz.CanAccessCompany(r, *holder.CompanyID) {
		// Cross-tenant lookups answer the same as unknown UIDs.
		uierrors.Fail(w, http.StatusNotFound, "No holder registered for this card.")
		return
	}

	uierrors.OK(w, holderSummary{
		ID:        holder.ID.Hex(),
		UserNo:    holder.UserNo,
		FirstName: holder.FirstName,
		LastName:  holder.LastName,
		Position:  holder.Position,
		CompanyID: holder.CompanyID.Hex(),
		NdefURL:   holder.NdefURL,
	})
}
