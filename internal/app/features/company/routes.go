// internal/app/features/company/routes.go
package company

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the own-company routes. The caller wraps these in
// the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleGet)
	r.Put("/", h.HandleUpdate)
}
