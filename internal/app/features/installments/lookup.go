// internal/app/features/installments/lookup.go
package installments

import (
	"fmt"
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/policy/phasepolicy"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/htmlsanitize"
	"github.com/dalemusser/retreatreg/internal/app/system/normalize"
	"go.uber.org/zap"
)

// HandleLookup finds a member by name and phone and makes them the
// session's tracked member.
// POST /installments/lookup
func (h *Handler) HandleLookup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse lookup form", err, "We could not read your form. Please try again.", "/installments")
		return
	}
	l := auth.Lookup{
		FullName: normalize.Name(htmlsanitize.PlainText(r.PostFormValue("full_name"))),
		Phone:    normalize.Phone(htmlsanitize.PlainText(r.PostFormValue("phone"))),
	}
	if l.FullName == "" || l.Phone == "" {
		h.flashError(w, r, msgLookupRequired)
		backToTracker(w, r)
		return
	}

	viewID, err := h.SessionMgr.ViewID(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mint view id", err, "We could not start your session. Please try again.", "/installments")
		return
	}

	m, err := h.fetch(r.Context(), viewID, l)
	if err != nil {
		h.Log.Info("lookup failed", zap.String("full_name", l.FullName), zap.Error(err))
		h.flashError(w, r, backend.UserMessage(err, msgLookupFailed))
		backToTracker(w, r)
		return
	}

	if err := h.SessionMgr.SetLookup(w, r, l); err != nil {
		h.Log.Warn("failed to remember lookup", zap.Error(err))
	}
	p := phasepolicy.Evaluate(m, h.Plan)
	h.flashSuccess(w, r, fmt.Sprintf("Found payment record for %s. Remaining balance: KSH %s", m.FullName, p.Remaining))
	backToTracker(w, r)
}

// HandleRefresh re-reads the tracked member from the backend.
// POST /installments/refresh
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	l, ok := h.SessionMgr.Lookup(r)
	if !ok {
		backToTracker(w, r)
		return
	}
	viewID, err := h.SessionMgr.ViewID(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mint view id", err, "We could not start your session. Please try again.", "/installments")
		return
	}

	if _, err := h.fetch(r.Context(), viewID, l); err != nil {
		h.Log.Info("refresh failed", zap.String("view_id", viewID), zap.Error(err))
		h.flashError(w, r, backend.UserMessage(err, msgLookupFailed))
		backToTracker(w, r)
		return
	}
	h.flashSuccess(w, r, msgRefreshed)
	backToTracker(w, r)
}

// HandleForget drops the tracked member so another can be looked up.
// POST /installments/forget
func (h *Handler) HandleForget(w http.ResponseWriter, r *http.Request) {
	if viewID := h.SessionMgr.PeekViewID(r); viewID != "" {
		h.Views.Delete(viewID)
	}
	if err := h.SessionMgr.ClearLookup(w, r); err != nil {
		h.Log.Warn("failed to clear lookup", zap.Error(err))
	}
	backToTracker(w, r)
}
