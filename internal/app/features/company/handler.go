// internal/app/features/company/handler.go
package company

// The acting admin's own company profile. Creation and deactivation of
// companies live in the superadmin companies feature.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	companystore "github.com/dalemusser/cardhub/internal/app/store/companies"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

type Handler struct {
	Companies *companystore.Store
	Log       *zap.Logger
	ErrLog    *uierrors.ErrorLogger
	AuditLog  *auditlog.Logger
}

func NewHandler(companies *companystore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Companies: companies,
		Log:       logger,
		ErrLog:    errLog,
		AuditLog:  audit,
	}
}

func ownCompany(r *http.Request) (primitive.ObjectID, bool) {
	companyID := authz.UserCompanyID(r)
	return companyID, !companyID.IsZero()
}

// HandleGet handles GET /api/company.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	companyID, ok := ownCompany(r)
	if !ok {
		uierrors.Fail(w, http.StatusBadRequest, "No company on account.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	company, err := h.Companies.GetByID(ctx, companyID)
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

type updateRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	Website string `json:"website"`
	About   string `json:"about"`
	LogoURL string `json:"logo_url"`
}

// HandleUpdate handles PUT /api/company.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, ok := ownCompany(r)
	if !ok {
		uierrors.Fail(w, http.StatusBadRequest, "No company on account.")
		return
	}

	var req updateRequest
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

	err := h.Companies.Update(ctx, companyID, companystore.Update{
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

	h.AuditLog.AdminAction(ctx, r, "company_updated", actorID, nil, &companyID, nil)
	uierrors.OKMessage(w, "Company profile updated.", nil)
}
