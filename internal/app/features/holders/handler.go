// internal/app/features/holders/handler.go
package holders

// Admin CRUD for card holders. Every operation is scoped to the acting
// admin's company; superadmins pick the company explicitly.

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
	"github.com/dalemusser/cardhub/internal/app/system/htmlsanitize"
	"github.com/dalemusser/cardhub/internal/app/system/mailer"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"github.com/dalemusser/cardhub/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
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

// targetCompany resolves which company an admin request operates on.
// Admins are pinned to their own company; superadmins must name one via
// the company_id query parameter.
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

// HandleList handles GET /api/holders.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	holders, err := h.Users.ListByCompany(ctx, companyID, "user")
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list holders", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, holders)
}

type createRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Contact   string `json:"contact_number"`
	Position  string `json:"position"`
	Bio       string `json:"bio"`
}

type createResponse struct {
	Holder  models.User `json:"holder"`
	LoginID string      `json:"login_id"`
}

// HandleCreate handles POST /api/holders. Generates the login ID and a
// temporary password, and emails the credentials to the holder.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}

	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode holder body failed", err, "Invalid request body.")
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

	holder := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		LoginID:   loginID,
		Password:  hash,
		Email:     req.Email,
		Contact:   htmlsanitize.StripTags(req.Contact),
		Position:  htmlsanitize.StripTags(req.Position),
		Bio:       htmlsanitize.Sanitize(req.Bio),
		Role:      "user",
		CompanyID: &companyID,
	}

	created, err := h.Users.Create(ctx, holder)
	switch {
	case errors.Is(err, userstore.ErrDuplicateLoginID):
		uierrors.Fail(w, http.StatusConflict, "A user with this login ID already exists.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB create holder", err, "A server error occurred.")
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
				zap.String("holder_id", created.ID.Hex()),
				zap.Error(err))
		}
	}

	h.AuditLog.AdminAction(ctx, r, "holder_created", actorID, &created.ID, &companyID,
		map[string]string{"login_id": created.LoginID})

	uierrors.Created(w, createResponse{Holder: created, LoginID: created.LoginID})
}

// HandleGet handles GET /api/holders/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid holder id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	holder, err := h.Users.GetByID(ctx, id)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load holder", err, "A server error occurred.")
		return
	}
	if holder.Role != "user" || holder.CompanyID == nil || *holder.CompanyID != companyID {
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	}
	uierrors.OK(w, holder)
}

type updateRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Contact   string `json:"contact_number"`
	Position  string `json:"position"`
	Bio       string `json:"bio"`
	Status    string `json:"status"`
}

// HandleUpdate handles PUT /api/holders/{id}. Name changes invalidate any
// issued tag, so the response reminds the admin to re-register the card.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid holder id.")
		return
	}

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode holder body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.FirstName) == "" || strings.TrimSpace(req.LastName) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "First and last name are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	before, err := h.Users.GetByID(ctx, id)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load holder", err, "A server error occurred.")
		return
	}

	err = h.Users.UpdateHolder(ctx, id, companyID, userstore.HolderUpdate{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Contact:   htmlsanitize.StripTags(req.Contact),
		Position:  htmlsanitize.StripTags(req.Position),
		Bio:       htmlsanitize.Sanitize(req.Bio),
		Status:    req.Status,
	})
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB update holder", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "holder_updated", actorID, &id, &companyID, nil)

	nameChanged := before.FirstName != strings.TrimSpace(req.FirstName) ||
		before.LastName != strings.TrimSpace(req.LastName)
	if nameChanged && before.NfcUID != "" {
		uierrors.OKMessage(w, "Holder updated. The name changed; re-register their card so the tag matches.", nil)
		return
	}
	uierrors.OKMessage(w, "Holder updated.", nil)
}

// HandleDeactivate handles POST /api/holders/{id}/deactivate. Holders are
// never hard-deleted; their user number stays burned.
func (h *Handler) HandleDeactivate(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid holder id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	err = h.Users.Deactivate(ctx, id, companyID)
	switch {
	case errors.Is(err, userstore.ErrNotFound):
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB deactivate holder", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "holder_deactivated", actorID, &id, &companyID, nil)
	uierrors.OKMessage(w, "Holder deactivated.", nil)
}

// HandleResetPassword handles POST /api/holders/{id}/reset-password.
// Issues a fresh temporary password and emails it to the holder.
func (h *Handler) HandleResetPassword(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	companyID, err := targetCompany(r)
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, err.Error())
		return
	}
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.Fail(w, http.StatusBadRequest, "Invalid holder id.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	holder, err := h.Users.GetByID(ctx, id)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.ErrLog.NotFound(w, "Card holder not found.")
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB load holder", err, "A server error occurred.")
		return
	}
	if holder.CompanyID == nil || *holder.CompanyID != companyID {
		h.ErrLog.NotFound(w, "Card holder not found.")
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
	if err := h.Users.SetPassword(ctx, id, hash); err != nil {
		h.ErrLog.LogServerError(w, r, "DB set password", err, "A server error occurred.")
		return
	}

	if holder.Email != "" {
		msg := mailer.BuildWelcomeEmail(mailer.WelcomeEmailData{
			SiteName: h.SiteName,
			Name:     holder.FirstName,
			LoginID:  holder.LoginID,
			Password: tempPassword,
		})
		msg.To = holder.Email
		msg.Type = "password_reset"
		msg.Subject = "Your " + h.SiteName + " password was reset"
		if err := h.Mailer.Send(ctx, msg); err != nil {
			h.Log.Warn("password reset email failed",
				zap.String("holder_id", holder.ID.Hex()),
				zap.Error(err))
		}
	}

	h.AuditLog.AdminAction(ctx, r, "holder_password_reset", actorID, &id, &companyID, nil)
	uierrors.OKMessage(w, "Password reset and emailed to the holder.", nil)
}
