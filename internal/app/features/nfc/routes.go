// internal/app/features/nfc/routes.go
package nfc

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the tag registration routes. The caller wraps these
// in the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/register", h.HandleRegister)
	r.Get("/user", h.HandleLookupByUID)
}
