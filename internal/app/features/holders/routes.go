// internal/app/features/holders/routes.go
package holders

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the holder management routes. The caller wraps these
// in the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Post("/{id}/deactivate", h.HandleDeactivate)
	r.Post("/{id}/reset-password", h.HandleResetPassword)
}
