// internal/app/features/auditlog/routes.go
package auditlog

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the activity log routes. The caller wraps these in
// the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
}
