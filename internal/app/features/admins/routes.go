// internal/app/features/admins/routes.go
package admins

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the admin-account management routes. The caller
// wraps these in the superadmin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Post("/{id}/deactivate", h.HandleDeactivate)
}
