// internal/app/features/photos/routes.go
package photos

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the photo upload route. The caller wraps it in the
// signed-in middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.HandleUpload)
}
