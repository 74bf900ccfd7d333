// internal/app/features/register/routes.go
package register

import "github.com/go-chi/chi/v5"

// Routes mounts the registration form and its confirmation page.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeForm)
	r.Post("/", h.HandleSubmit)
	r.Get("/success", h.ServeSuccess)
	return r
}
