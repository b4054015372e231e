// internal/app/features/settings/routes.go
package settings

import "github.com/go-chi/chi/v5"

// MountRoutes mounts the settings routes on r. Admin gating is applied by
// the caller.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.ServeSettings)
	r.Post("/", h.HandleSettings)
	r.Post("/reset", h.HandleReset)
}
