// internal/app/features/installments/pay.go
package installments

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/dalemusser/retreatreg/internal/app/policy/phasepolicy"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/htmlsanitize"
	"github.com/dalemusser/retreatreg/internal/app/system/mpesa"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"go.uber.org/zap"
)

// HandlePay submits a transaction code for the current phase.
//
// The snapshot is marked submitted before the backend is called. On
// failure only that phase is put back; on success the whole snapshot is
// replaced with the backend's record, provided no later request for the
// same view has landed first. A success without a record re-reads the
// member.
// POST /installments/pay
func (h *Handler) HandlePay(w http.ResponseWriter, r *http.Request) {
	l, ok := h.SessionMgr.Lookup(r)
	if !ok {
		backToTracker(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse payment form", err, "We could not read your form. Please try again.", "/installments")
		return
	}
	viewID, err := h.SessionMgr.ViewID(w, r)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "mint view id", err, "We could not start your session. Please try again.", "/installments")
		return
	}

	code := mpesa.NormalizeCode(htmlsanitize.PlainText(r.PostFormValue("mpesa_code")))
	if code == "" {
		h.flashError(w, r, msgCodeRequired)
		backToTracker(w, r)
		return
	}
	if !h.Limiter.Allow(viewID) {
		h.Log.Warn("payment rate limited", zap.String("view_id", viewID))
		h.flashError(w, r, msgRateLimited)
		backToTracker(w, r)
		return
	}

	m, err := h.snapshot(r.Context(), viewID, l)
	if err != nil {
		h.flashError(w, r, backend.UserMessage(err, msgLookupFailed))
		backToTracker(w, r)
		return
	}

	p := phasepolicy.Evaluate(m, h.Plan)
	switch {
	case !p.HasCurrent:
		h.flashError(w, r, msgNoCurrentPhase)
		backToTracker(w, r)
		return
	case p.Blocked:
		h.flashError(w, r, msgBlocked)
		backToTracker(w, r)
		return
	}
	// The form names the phase it was rendered for; a stale page must not
	// pay a different one.
	if raw := r.PostFormValue("phase_number"); raw != "" {
		if n, err := strconv.Atoi(raw); err != nil || n != p.Current.PhaseNumber {
			h.flashError(w, r, msgPhaseChanged)
			backToTracker(w, r)
			return
		}
	}
	phase := p.Current

	tk := h.Views.Begin(viewID)
	var prior models.PaymentPhase
	h.Views.Mutate(viewID, func(s *models.Member) bool {
		var changed bool
		prior, changed = markSubmitted(s, phase.PhaseNumber, code)
		return changed
	})

	res, err := h.Backend.ProcessPayment(r.Context(), backend.PaymentRequest{
		Phone:       m.Phone,
		MpesaCode:   code,
		PhaseNumber: phase.PhaseNumber,
		Amount:      phase.Amount,
	})
	if err != nil {
		h.Views.Mutate(viewID, func(s *models.Member) bool {
			return revertSubmission(s, code, prior)
		})
		msg := backend.UserMessage(err, msgPayFailed)
		if backend.IsDuplicateCode(err) {
			msg = backend.DuplicateCodeMessage
		}
		h.Log.Info("payment refused",
			zap.String("member_id", m.ID),
			zap.Int("phase", phase.PhaseNumber),
			zap.Error(err),
		)
		h.AuditLog.PaymentFailed(r.Context(), r, m.ID, phase.PhaseNumber, code, err.Error())
		h.flashError(w, r, msg)
		backToTracker(w, r)
		return
	}

	switch {
	case res.Record == nil:
		// Accepted without a record; read it back. If that fails the
		// submitted snapshot stands until the next refresh.
		if _, err := h.fetch(r.Context(), viewID, l); err != nil {
			h.Log.Warn("re-read after payment failed", zap.String("member_id", m.ID), zap.Error(err))
		}
	case !h.Views.Replace(viewID, tk, *res.Record):
		h.Log.Debug("dropped stale payment response",
			zap.String("view_id", viewID),
			zap.Uint64("seq", tk.Seq()),
		)
	}
	h.AuditLog.PaymentSubmitted(r.Context(), r, m.ID, phase.PhaseNumber, phase.Amount, code)
	h.flashSuccess(w, r, fmt.Sprintf("Phase %d payment of KSH %s submitted, awaiting approval.", phase.PhaseNumber, phase.Amount))
	backToTracker(w, r)
}

// markSubmitted sets phase to PENDING with code attached. It returns the
// phase as it was and whether the phase exists.
func markSubmitted(m *models.Member, phase int, code string) (models.PaymentPhase, bool) {
	for i := range m.Phases {
		if m.Phases[i].PhaseNumber != phase {
			continue
		}
		prior := m.Phases[i].Clone()
		m.Phases[i].Status = models.PhasePending
		m.Phases[i].MpesaCode = models.StringPtr(code)
		return prior, true
	}
	return models.PaymentPhase{}, false
}

// revertSubmission undoes markSubmitted: prior's status and code come
// back. A phase that no longer carries code was rewritten by a newer
// response and is left alone.
func revertSubmission(m *models.Member, code string, prior models.PaymentPhase) bool {
	for i := range m.Phases {
		p := &m.Phases[i]
		if p.PhaseNumber != prior.PhaseNumber {
			continue
		}
		if p.Code() != code {
			return false
		}
		p.Status = prior.Status
		p.MpesaCode = prior.Clone().MpesaCode
		return true
	}
	return false
}
