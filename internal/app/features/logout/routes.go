// internal/app/features/logout/routes.go
package logout

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the logout route on the given router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/", h.HandleLogout)
}
