// internal/app/features/socials/handler.go
package socials

// Social links for the admin's company profile and for individual
// holders. owner_kind picks which; holder links need an owner_id.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	socialstore "github.com/dalemusser/cardhub/internal/app/store/socials"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Socials  *socialstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(socials *socialstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Socials:  socials,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

func targetCompany(r *http.Request) (primitive.ObjectID, error) {
	if authz.IsSuperAdmin(r) {
		raw := strings.TrimSpace(r.URL.Query().Get("company_id"))
		if raw == "" {
			return primitive.NilObjectID, errors.New("company_id is required")
		}
		return primitive.ObjectIDFromHex(raw)
	}
	companyID := authz.UserCompanyID(r)
	if companyID.IsZero() {
		return primitive.NilObjectID, errors.New("no company on account")
	}
	return companyID, nil
}

func validLinkURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// HandleList handles GET /api/socials. With ?owner_id=<holder id> it
// lists that holder's links; otherwise the company-level links.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	var links []models.SocialLink
	if raw := strings.TrimSpace(r.URL.Query().Get("owner_id")); raw != "" {
		ownerID, err := primitive.ObjectIDFromHex(raw)
		if err != nil {
			uierrors.Fail(w, http.StatusBadRequest, "Invalid owner id.")
			return
		}
		links, err = h.Socials.ListForUser(ctx, companyID, ownerID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB list socials", err, "A server error occurred.")
			return
		}
	} else {
		links, err = h.Socials.ListForCompany(ctx, companyID)
		if err != nil {
			h.ErrLog.LogServerError(w, r, "DB list socials", err, "A server error occurred.")
			return
		}
	}
	uierrors.OK(w, links)
}

type linkRequest struct {
	OwnerKind string `json:"owner_kind"` // company | user
	OwnerID   string `json:"owner_id,omitempty"`
	Platform  string `json:"platform"`
	URL       string `json:"url"`
}

// HandleCreate handles POST /api/socials.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode social body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Platform is required.")
		return
	}
	if !validLinkURL(req.URL) {
		uierrors.Fail(w, http.StatusBadRequest, "URL must be a valid http(s) link.")
		return
	}

	link := models.SocialLink{
		CompanyID: companyID,
		Platform:  req.Platform,
		URL:       req.URL,
	}
	switch req.OwnerKind {
	case models.SocialOwnerCompany, "":
		link.OwnerKind = models.SocialOwnerCompany
	case models.SocialOwnerUser:
		ownerID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.OwnerID))
		if err != nil {
			uierrors.Fail(w, http.StatusBadRequest, "owner_id is required for holder links.")
			return
		}
		link.OwnerKind = models.SocialOwnerUser
		link.OwnerID = &ownerID
	default:
		uierrors.Fail(w, http.StatusBadRequest, `owner_kind must be "company" or "user".`)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Socials.Create(ctx, link)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB create social", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "social_created", actorID, nil, &companyID,
		map[string]string{"platform": created.Platform})
	uierrors.Created(w, created)
}

// HandleUpdate handles PUT /api/socials/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid link id.")
		return
	}

	var req linkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode social body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Platform) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Platform is required.")
		return
	}
	if !validLinkURL(req.URL) {
		uierrors.Fail(w, http.StatusBadRequest, "URL must be a valid http(s) link.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Socials.Update(ctx, id, companyID, req.Platform, req.URL)
	switch {
	case errors.Is(err, socialstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Social link not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update social", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "social_updated", actorID, nil, &companyID, nil)
	uierrors.OKMessage(w, "Social link updated.", nil)
}

// HandleDelete handles DELETE /api/socials/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid link id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Socials.Delete(ctx, id, companyID)
	switch {
	case errors.Is(err, socialstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Social link not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB delete social", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "social_deleted", actorID, nil, &companyID, nil)
	uierrors.OKMessage(w, "Social link deleted.", nil)
}
