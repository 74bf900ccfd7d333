// internal/app/features/admin/routes.go
package admin

import (
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes mounts the review dashboard (typically at "/admin"). Sign-in,
// sign-out and the activity page are mounted beside it by bootstrap.
func Routes(h *Handler, sm *auth.SessionManager) chi.Router {
	r := chi.NewRouter()

	r.Group(func(pr chi.Router) {
		pr.Use(sm.RequireAdmin)

		pr.Get("/", h.ServeMembers)
		pr.Get("/members/{id}", h.ServeMember)

		pr.Get("/payments", h.ServePayments)
		pr.Get("/payments/{id}/{phase}", h.ServeReview)
		pr.Post("/payments/{id}/{phase}/approve", h.HandleApprove)
		pr.Post("/payments/{id}/{phase}/reject", h.HandleReject)

		pr.Get("/stats", h.ServeStats)
	})

	return r
}
