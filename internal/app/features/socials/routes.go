// internal/app/features/socials/routes.go
package socials

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the social link routes. The caller wraps these in
// the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}
