// internal/app/features/login/handler.go
package login

// Terminology: User Identifiers
//   - UserID / userID / user_id: The MongoDB ObjectID (_id) that uniquely identifies a user record
//   - LoginID / loginID / login_id: The human-readable string users type to log in

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	userstore "github.com/dalemusser/cardhub/internal/app/store/users"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/auth"
	"github.com/dalemusser/cardhub/internal/app/system/authutil"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// badCredentialsMsg is shared by the unknown-login and wrong-password
// paths so responses do not reveal which part was wrong.
const badCredentialsMsg = "Invalid login ID or password."

type Handler struct {
	Users      *userstore.Store
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		Log:        logger,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
	}
}

type loginRequest struct {
	LoginID  string `json:"login_id"`
	Password string `json:"password"`
}

type loginResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	LoginID   string `json:"login_id"`
	Role      string `json:"role"`
	CompanyID string `json:"company_id,omitempty"`
}

// HandleLogin handles POST /api/login.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode login body failed", err, "Invalid request body.")
		return
	}

	loginID := strings.TrimSpace(req.LoginID)
	if loginID == "" || req.Password == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Login ID and password are required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByLoginID(ctx, loginID)
	switch {
	case errors.Is(err, mongo.ErrNoDocuments):
		h.AuditLog.LoginFailed(ctx, r, loginID, "user not found")
		uierrors.Fail(w, http.StatusUnauthorized, badCredentialsMsg)
		return
	case err != nil:
		h.ErrLog.LogServerError(w, r, "DB find user", err, "A server error occurred.")
		return
	}

	if !u.IsActive() {
		h.AuditLog.LoginFailed(ctx, r, loginID, "user disabled")
		uierrors.Fail(w, http.StatusForbidden, "Your account is currently disabled. Please contact an administrator.")
		return
	}

	if u.Password == "" || !authutil.CheckPassword(req.Password, u.Password) {
		h.AuditLog.LoginFailed(ctx, r, loginID, "wrong password")
		uierrors.Fail(w, http.StatusUnauthorized, badCredentialsMsg)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, u.ID.Hex()); err != nil {
		h.ErrLog.LogServerError(w, r, "save session failed", err, "Unable to create session. Please try again.")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, u.ID, u.CompanyID, u.LoginID)

	resp := loginResponse{
		ID:      u.ID.Hex(),
		Name:    u.FirstName + " " + u.LastName,
		LoginID: u.LoginID,
		Role:    u.Role,
	}
	if u.CompanyID != nil {
		resp.CompanyID = u.CompanyID.Hex()
	}
	uierrors.OK(w, resp)
}
