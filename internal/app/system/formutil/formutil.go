// Package formutil provides helpers for form re-rendering with validation errors.
//
// When a form submission fails, the form is re-rendered with the visitor's
// previous values echoed back and a single error message. Embed Base in the
// form's view model:
//
//	type formData struct {
//		formutil.Base
//		FullName string
//	}
//
//	data := formData{FullName: full}
//	formutil.SetBase(&data.Base, r, "Register", "/")
//	data.SetError("Please fill in all required fields.")
//	templates.Render(w, r, "register_form", data)
package formutil

import (
	"html/template"
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
)

// Base contains common fields for form pages.
type Base struct {
	viewdata.BaseVM
	Error template.HTML
}

// SetBase populates the common Base fields from the request.
func SetBase(b *Base, r *http.Request, title, backDefault string) {
	b.BaseVM = viewdata.NewBaseVM(r, title, backDefault)
}

// SetError sets the error message. msg is treated as plain text; backend
// messages pass through here and must not inject markup.
func (b *Base) SetError(msg string) {
	b.Error = template.HTML(template.HTMLEscapeString(msg))
}

// HasError reports whether an error is set.
func (b *Base) HasError() bool { return b.Error != "" }
