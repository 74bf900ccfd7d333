// internal/app/features/contact/handler.go
package contact

import (
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// question is one entry of the payment help list.
type question struct {
	Q string
	A string
}

type pageData struct {
	viewdata.BaseVM
	Questions []question
}

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeContact shows the organizers' contact details and payment help.
// GET /contact
func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	data := newPageData(r)
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "contact", data)
}

func newPageData(r *http.Request) pageData {
	return pageData{
		BaseVM:    viewdata.NewBaseVM(r, "Contact & Help", "/"),
		Questions: helpQuestions,
	}
}

var helpQuestions = []question{
	{
		Q: "My transaction code was rejected as already used.",
		A: "Each M-Pesa code can be used once. Check that you pasted the confirmation for this payment, not an earlier one.",
	},
	{
		Q: "I paid but my installment still shows Pending.",
		A: "Payments are checked by hand against the till statement. Approval usually takes less than a day.",
	},
	{
		Q: "I can't find my record on the installments page.",
		A: "Enter your name and phone number exactly as on your registration form.",
	},
	{
		Q: "I want to switch from installments to paying in full.",
		A: "Contact us and we will update your plan.",
	},
}
