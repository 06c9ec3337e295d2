// internal/app/features/auditlog/handler.go
package auditlog

// Admin view of the activity log for their company.

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	uierrors "github.com/dalemusser/cardhub/internal/app/features/errors"
	"github.com/dalemusser/cardhub/internal/app/store/audit"
	"github.com/dalemusser/cardhub/internal/app/system/authz"
	"github.com/dalemusser/cardhub/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const defaultLimit = 100

type Handler struct {
	Audit  *audit.Store
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
}

func NewHandler(store *audit.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Audit:  store,
		Log:    logger,
		ErrLog: errLog,
	}
}

// HandleList handles GET /api/activity. Admins see their own company's
// events; superadmins pass company_id.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	var companyID primitive.ObjectID
	if authz.IsSuperAdmin(r) {
		var err error
		companyID, err = primitive.ObjectIDFromHex(strings.TrimSpace(r.URL.Query().Get("company_id")))
		if err != nil {
			uierrors.Fail(w, http.StatusBadRequest, "company_id is required.")
			return
		}
	} else {
		companyID = authz.UserCompanyID(r)
		if companyID.IsZero() {
			uierrors.Fail(w, http.StatusBadRequest, "No company on account.")
			return
		}
	}

	limit := int64(defaultLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 1000 {
			uierrors.Fail(w, http.StatusBadRequest, "limit must be between 1 and 1000.")
			return
		}
		limit = n
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	events, err := h.Audit.ListByCompany(ctx, companyID, limit)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "DB list activity", err, "A server error occurred.")
		return
	}
	uierrors.OK(w, events)
}
