// internal/app/features/card/routes.go
package card

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the public card resolution route. No authentication:
// tapping a card must open the profile without login.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.Serve)
}
