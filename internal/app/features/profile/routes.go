// internal/app/features/profile/routes.go
package profile

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the self-service profile routes. The caller wraps
// these in the signed-in middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleGet)
	r.Put("/", h.HandleUpdate)
	r.Post("/password", h.HandleChangePassword)
}
