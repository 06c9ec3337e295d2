// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/auth"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
	}
}

// HandleLogout handles POST /api/logout. Always succeeds; clearing an
// absent session is not an error.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if _, _, userID, ok := authz.UserCtx(r); ok {
		companyID := authz.UserCompanyID(r)
		if companyID.IsZero() {
			h.AuditLog.Logout(r.Context(), r, userID, nil)
		} else {
			h.AuditLog.Logout(r.Context(), r, userID, &companyID)
		}
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out failed", zap.Error(err))
	}
	uierrors.OKMessage(w, "Signed out.", nil)
}
