// internal/app/features/settings/handler.go
package settings

// Superadmin key/value system settings (audit verbosity, card text,
// SMTP defaults). Values take effect on next read; nothing is cached.

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	settingsstore "github.com/dalemusser/cardhub/internal/app/store/settings"
	"github.com/dalemusser/cardhub/internal/app/system/auditlog"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type Handler struct {
	Settings *settingsstore.Store
	Log      *zap.Logger
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
}

func NewHandler(settings *settingsstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Settings: settings,
		Log:      logger,
		ErrLog:   errLog,
		AuditLog: audit,
	}
}

// HandleList handles GET /api/settings.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	rows, err := h.Settings.List(ctx)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list settings", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, rows)
}

type setRequest struct {
	Key         string `json:"key"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// HandleSet handles PUT /api/settings.
func (h *Handler) HandleSet(w http.ResponseWriter, r *http.Request) {
	_, _, actorID, _ := authz.UserCtx(r)

	var req setRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.ErrLog.LogBadRequest(w, r, "decode setting body failed", err, "Invalid request body.")
		return
	}
	if strings.TrimSpace(req.Key) == "" {
		uierrors.Fail(w, http.StatusBadRequest, "Setting key is required.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Settings.Set(ctx, req.Key, req.Value, req.Description, &actorID); err != nil {
		h.ErrLog.LogServerError(w, r, "DB set setting", err, "A server error occurred.")
		return
	}

	h.AuditLog.AdminAction(ctx, r, "setting_updated", actorID, nil, nil,
		map[string]string{"key": strings.TrimSpace(req.Key)})
	uierrors.OKMessage(w, "Setting saved.", nil)
}
