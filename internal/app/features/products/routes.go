// internal/app/features/products/routes.go
package products

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the product management routes. The caller wraps
// these in the admin-role middleware.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.HandleList)
	r.Post("/", h.HandleCreate)
	r.Get("/{id}", h.HandleGet)
	r.Put("/{id}", h.HandleUpdate)
	r.Delete("/{id}", h.HandleDelete)
}
