// internal/app/features/admins/handler.go
package admins

// Superadmin management of company admin accounts.

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authutil"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/mailer"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Users    *userstore.Store
	Mailer   *mailer.Mailer
	SiteName string
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(
	users *userstore.Store,
	mail *mailer.Mailer,
	siteName string,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:    users,
		Mailer:   mail,
		SiteName: siteName,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// HandleList handles GET /api/admins?company_id=<id>.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.URL.Query().Get("company_id")))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "company_id is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	admins, err := h.Users.ListByCompany(ctx, companyID, "admin")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list admins", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, admins)
}

type createRequest struct {
	CompanyID string `json:"company_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
}

// HandleCreate handles POST /api/admins. Credentials are generated and
// emailed, same as for card holders.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode admin body failed", err, "Invalid request body.")
		return
	}
	companyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(req.CompanyID))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "company_id is required.")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "First and last name are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	loginID, err := h.Users.GenerateLoginID(ctx, req.FirstName, req.LastName, time.Now().Year())
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate login id", err, "A server error occurred.")
		return
	}
	tempPassword, err := authutil.GenerateTempPassword(12)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "generate password", err, "A server error occurred.")
		return
	}
	hash, err := authutil.HashPassword(tempPassword)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "hash password", err, "A server error occurred.")
		return
	}

	created, err := h.Users.Create(ctx, models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		LoginID:   loginID,
		Password:  hash,
		Email:     req.Email,
		Role:      "admin",
		CompanyID: &companyID,
	})
	switch {
	case errors.Is(err, userstore.ErrDuplicateLoginID):
		uierrors.Fail(w, http.StatusConflict, "A user with this login ID already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB create admin", err, "A server error occurred.")
		return
	}

	if created.Email != "" {
		msg := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
			SiteName: h.SiteName,
			Name:     created.FirstName,
			LoginID:  created.LoginID,
			Password: tempPassword,
		})
		msg.To = created.Email
		if err := h.Mailer.Send(ctx, msg); err != nil {
			h.Log.Warn("welcome email failed",
				zap.String("admin_id", created.ID.Hex()),
				zap.Error(err))
		}
	}

	h.AuditLog.AdminAction(ctx, r, "admin_created", actorID, &created.ID, &companyID,
		map[string]string{"login_id": created.LoginID})
	uierrors.Created(w, created)
}

// HandleDeactivate handles POST /api/admins/{id}/deactivate?company_id=<id>.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := primitive.ObjectIDFromHex(strings.TrimSpace(r.URL.Query().Get("company_id")))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "company_id is required.")
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid admin id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Users.Deactivate(ctx, id, companyID)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Admin not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB deactivate admin", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "admin_deactivated", actorID, &id, &companyID, nil)
	uierrors.OKMessage(w, "Admin deactivated.", nil)
}
