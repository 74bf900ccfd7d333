// internal/app/features/errors/errors.go
package errors

import (
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
)

// pageData is the view model for error pages.
type pageData struct {
	viewdata.BaseVM
	Heading string
	Message string
}

// Handler serves the standalone error pages.
type Handler struct{}

// NewHandler constructs an errors Handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Forbidden renders a friendly "access denied" page.
// GET /forbidden
func (h *Handler) Forbidden(w http.ResponseWriter, r *http.Request) {
	RenderPage(w, r, http.StatusForbidden, "Access denied", "You don't have permission to view this page.", "/")
}

// NotFound renders the 404 page. Mounted as the router's NotFound handler.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	RenderPage(w, r, http.StatusNotFound, "Page not found", "We couldn't find that page.", "/")
}

// RenderPage writes status and renders the shared error page.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, heading, msg, backDefault string) {
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, heading, backDefault),
		Heading: heading,
		Message: msg,
	}
	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
