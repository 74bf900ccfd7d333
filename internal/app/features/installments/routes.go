// internal/app/features/installments/routes.go
package installments

import "github.com/go-chi/chi/v5"

func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeTracker)
	r.Post("/lookup", h.HandleLookup)
	r.Post("/refresh", h.HandleRefresh)
	r.Post("/forget", h.HandleForget)
	r.Post("/pay", h.HandlePay)
	return r
}
