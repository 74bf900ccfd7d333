// internal/app/features/installments/tracker.go
package installments

import (
	"errors"
	"net/http"

	"github.com/dalemusser/retreatreg/internal/app/policy/phasepolicy"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// ServeTracker shows the lookup form, or the tracker for the member the
// session last found.
// GET /installments
func (h *Handler) ServeTracker(w http.ResponseWriter, r *http.Request) {
	lookup, ok := h.SessionMgr.Lookup(r)
	if !ok {
		data := lookupData{BaseVM: viewdata.NewBaseVM(r, "Installment Payment Tracker", "/")}
		data.WithFlashes(w, r, h.SessionMgr)
		templates.Render(w, r, "installments_lookup", data)
		return
	}

	viewID, err := h.SessionMgr.ViewID(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mint view id", err, "We could not start your session. Please try again.", "/")
		return
	}

	data := trackerData{BaseVM: viewdata.NewBaseVM(r, "Installment Payment Tracker", "/")}
	if data.TillNumber == "" {
		data.TillNumber = h.Plan.TillNumber
	}

	m, err := h.snapshot(r.Context(), viewID, lookup)
	switch {
	case err == nil:
		data.trackerView = buildTracker(m, h.Plan)
	case backend.IsNotFound(err):
		// The record is gone; start over from the lookup form.
		h.Views.Delete(viewID)
		if cerr := h.SessionMgr.ClearLookup(w, r); cerr != nil {
			h.Log.Warn("failed to clear lookup", zap.Error(cerr))
		}
		h.flashError(w, r, backend.UserMessage(err, msgLookupFailed))
		backToTracker(w, r)
		return
	default:
		level := h.Log.Warn
		if errors.Is(err, backend.ErrMalformedResponse) {
			level = h.Log.Error
		}
		level("tracker load failed", zap.String("view_id", viewID), zap.Error(err))
		data.LoadError = backend.UserMessage(err, msgLookupFailed)
		data.MemberName = lookup.FullName
		data.Phone = lookup.Phone
	}

	data.WithFlashes(w, r, h.SessionMgr)
	if data.LoadError != "" {
		w.WriteHeader(http.StatusBadGateway)
	}
	templates.Render(w, r, "installments_tracker", data)
}

// buildTracker derives the tracker from a member snapshot.
func buildTracker(m models.Member, plan models.PlanConfig) trackerView {
	p := phasepolicy.Evaluate(m, plan)

	v := trackerView{
		MemberName: m.FullName,
		Phone:      m.Phone,
		Plan:       m.PaymentPlan,
		NoPhases:   len(p.Phases) == 0,
		Paid:       p.Paid,
		Total:      p.Total,
		Remaining:  p.Remaining,
		Percent:    p.Percent,
		Complete:   p.Complete,
		HasCurrent: p.HasCurrent,
		Blocked:    p.Blocked,
	}
	for _, ph := range p.Phases {
		row := newPhaseRow(ph)
		row.Current = p.HasCurrent && ph.PhaseNumber == p.Current.PhaseNumber
		v.Phases = append(v.Phases, row)
	}
	if p.HasCurrent {
		v.Current = newPhaseRow(p.Current)
		v.Current.Current = true
	}
	if !v.NoPhases && !p.Complete && !p.HasCurrent {
		v.StatusError = p.Diagnosis.Message()
	}
	return v
}

func newPhaseRow(p models.PaymentPhase) phaseRow {
	row := phaseRow{
		Number:      p.PhaseNumber,
		Description: p.Description,
		Amount:      p.Amount,
		Badge:       p.Badge(),
		Code:        p.Code(),
	}
	switch {
	case p.Settled():
		row.BadgeClass = "badge-paid"
	case p.AwaitingApproval():
		row.BadgeClass = "badge-pending"
	default:
		row.BadgeClass = "badge-notpaid"
	}
	return row
}
