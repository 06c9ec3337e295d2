// internal/app/features/companies/handler.go
package companies

// Superadmin management of tenant companies.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	companystore "github.com/dalemusser/cardhub/internal/app/store/companies"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Companies *companystore.Store
	Users     *userstore.Store
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(
	companies *companystore.Store,
	users *userstore.Store,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Companies: companies,
		Users:     users,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

// HandleList handles GET /api/companies.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	companies, err := h.Companies.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list companies", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, companies)
}

type companyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	About   string `json:"about"`
	LogoURL string `json:"logo_url"`
}

// HandleCreate handles POST /api/companies.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode company body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Company name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	created, err := h.Companies.Create(ctx, models.Company{
		Name:    req.Name,
		Address: htmlsanitize.StripTags(req.Address),
		Phone:   htmlsanitize.StripTags(req.Phone),
		Email:   req.Email,
		Website: req.Website,
		About:   htmlsanitize.Sanitize(req.About),
		LogoURL: req.LogoURL,
	})
	switch {
	case errors.Is(err, companystore.ErrDuplicateCompany):
		uierrors.Fail(w, http.StatusConflict, "A company with this name already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB create company", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "company_created", actorID, nil, &created.ID,
		map[string]string{"name": created.Name})
	uierrors.Created(w, created)
}

// HandleGet handles GET /api/companies/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid company id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	company, err := h.Companies.GetByID(ctx, id)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Company not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load company", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, company)
}

// HandleUpdate handles PUT /api/companies/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid company id.")
		return
	}

	var req companyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode company body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Company name is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	err = h.Companies.Update(ctx, id, companystore.Update{
		Name:    req.Name,
		Address: htmlsanitize.StripTags(req.Address),
		Phone:   htmlsanitize.StripTags(req.Phone),
		Email:   req.Email,
		Website: req.Website,
		About:   htmlsanitize.Sanitize(req.About),
		LogoURL: req.LogoURL,
	})
	switch {
	case errors.Is(err, companystore.ErrDuplicateCompany):
		uierrors.Fail(w, http.StatusConflict, "A company with this name already exists.")
		return
	case errors.Is(err, companystore.ErrNotFound):
		h.ErrLog.NotFound(w, "Company not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update company", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "company_updated", actorID, nil, &id, nil)
	uierrors.OKMessage(w, "Company updated.", nil)
}

// HandleDeactivate handles POST /api/companies/{id}/deactivate. Disables
// the company and every user in it, so logins and tag resolutions for the
// tenant stop together.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid company id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	err = h.Companies.Deactivate(ctx, id)
	switch {
	case errors.Is(err, companystore.ErrNotFound):
		h.ErrLog.NotFound(w, "Company not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB deactivate company", err, "A server error occurred.")
		return
	}

	disabled, err := h.Users.DeactivateCompanyUsers(ctx, id)
	if err != nil {
		// Company is already disabled; report but do not roll back.
		h.ErrLog.LogServerError(w, r, "DB deactivate company users", err, "Company disabled, but disabling its users failed.")
		return
	}

	h.Log.Info("company deactivated",
		zap.String("company_id", id.Hex()),
		zap.Int64("users_disabled", disabled))
	h.AuditLog.AdminAction(ctx, r, "company_deactivated", actorID, nil, &id, nil)
	uierrors.OKMessage(w, "Company deactivated.", nil)
}
