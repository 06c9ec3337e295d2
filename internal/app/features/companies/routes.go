// internal/app/features/companies/routes.go
package companies

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the company management routes. The caller wraps
// these in the superadmin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Post("/{id}/deactivate", h.HandleDeactivate)
}
