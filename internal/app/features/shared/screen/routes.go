// internal/app/features/shared/screen/routes.go
package screen

import (
	"github.com/go-chi/chi/v5"
)

// Routes mounts the screen under its path (for example "/venues" from
// bootstrap). Sign-in and admin gating are applied by the caller.
func Routes[T any](h *Handler[T]) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ServeList)
	r.Get("/export", h.ServeExport)

	// selection
	r.Post("/select/{id}", h.HandleSelect)
	r.Post("/select-all", h.HandleSelectAll)

	// dialogs
	r.Get("/bulk/dialog/{action}", h.ServeDialog)
	r.Get("/{id}/dialog/{action}", h.ServeDialog)
	r.Post("/dialog/close", h.HandleCloseDialog)
	r.Post("/{id}/dialog/close", h.HandleCloseDialog)

	// actions
	r.Post("/bulk/{action}", h.HandleBulk)
	r.Post("/{id}/{action}", h.HandleAction)

	if h.Def.Download {
		r.Get("/{id}/download", h.ServeDownload)
	}
	return r
}
