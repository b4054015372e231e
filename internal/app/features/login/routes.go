// internal/app/features/login/routes.go
package login

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeLogin)
	r.Post("/", h.HandleRequest)
	r.Get("/countdown", h.ServeCountdown)
	r.Post("/verify", h.HandleVerify)
	r.Post("/resend", h.HandleResend)
	r.Post("/back", h.HandleBack)
	return r
}
