// internal/app/features/admin/payments.go
package admin

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/viewdata"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var (
	errPhaseNotFound = errors.New("phase not found")
	errNotAwaiting   = errors.New("payment is no longer awaiting approval")
)

// ServePayments renders the approval queue.
// GET /admin/payments
func (h *Handler) ServePayments(w http.ResponseWriter, r *http.Request) {
	data := paymentsData{BaseVM: viewdata.NewBaseVM(r, "Payment approvals", "/admin")}

	all, err := h.members(r.Context())
	if err != nil {
		data.LoadError = backend.UserMessage(err, msgListFailed)
		data.WithFlashes(w, r, h.SessionMgr)
		w.WriteHeader(http.StatusBadGateway)
		templates.Render(w, r, "admin_payments", data)
		return
	}
	for _, p := range models.PendingPayments(all) {
		data.Rows = append(data.Rows, h.newPendingRow(p))
	}

	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "admin_payments", data)
}

func (h *Handler) newPendingRow(p models.PendingPayment) pendingRow {
	raw := ""
	if p.SubmittedAt.IsZero() {
		raw = "N/A"
	}
	return pendingRow{
		MemberID:       p.MemberID,
		MemberName:     p.MemberName,
		Phone:          p.Phone,
		PhaseNumber:    p.PhaseNumber,
		Description:    p.Description,
		Amount:         p.Amount,
		ExpectedAmount: p.ExpectedAmount,
		Code:           p.MpesaCode,
		Submitted:      h.formatTime(p.SubmittedAt, raw),
	}
}

// ServeReview renders the approve/reject page for one submission.
// GET /admin/payments/{id}/{phase}
func (h *Handler) ServeReview(w http.ResponseWriter, r *http.Request) {
	id, phase, ok := pathTarget(r)
	if !ok {
		h.ErrLog.LogBadRequest(w, r, "bad review target", nil, "That payment link is not valid.", "/admin/payments")
		return
	}

	all, err := h.members(r.Context())
	if err != nil {
		h.ErrLog.LogBadGateway(w, r, "review page", err, backend.UserMessage(err, msgListFailed), "/admin/payments")
		return
	}
	m, found := findMember(all, id)
	if !found {
		h.ErrLog.LogNotFound(w, r, "review member not found", nil, msgMemberNotFound, "/admin/payments")
		return
	}

	var row *pendingRow
	for _, p := range models.PendingPayments([]models.Member{m}) {
		if p.PhaseNumber == phase {
			pr := h.newPendingRow(p)
			row = &pr
			break
		}
	}
	if row == nil {
		// Decided by someone else since the queue was drawn.
		h.flashError(w, r, msgNotAwaiting)
		http.Redirect(w, r, "/admin/payments", http.StatusSeeOther)
		return
	}

	data := reviewData{
		BaseVM:     viewdata.NewBaseVM(r, "Review payment", "/admin/payments"),
		pendingRow: *row,
	}
	data.WithFlashes(w, r, h.SessionMgr)
	templates.Render(w, r, "admin_review", data)
}

// HandleApprove confirms a submitted payment.
// POST /admin/payments/{id}/{phase}/approve
func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, true)
}

// HandleReject fails a submitted payment.
// POST /admin/payments/{id}/{phase}/reject
func (h *Handler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, false)
}

// decide applies an admin decision. The member is read fresh, the whole
// phase array goes back to the backend, and only the backend's answer
// counts as success. Nothing is shown as decided before that.
func (h *Handler) decide(w http.ResponseWriter, r *http.Request, approve bool) {
	verb, past := "reject", "rejected"
	if approve {
		verb, past = "approve", "approved"
	}
	who := actor(r)

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse decision form", err, "We could not read your form. Please try again.", "/admin/payments")
		return
	}
	back := urlutil.SafeReturn(r.PostFormValue("return"), "", "/admin/payments")

	id, phase, ok := pathTarget(r)
	if !ok {
		h.flashError(w, r, fmt.Sprintf("Failed to %s payment: invalid payment reference", verb))
		http.Redirect(w, r, back, http.StatusSeeOther)
		return
	}

	fail := func(reason string) {
		h.AuditLog.ReviewFailed(r.Context(), r, who, id, phase, verb, reason)
		h.flashError(w, r, fmt.Sprintf("Failed to %s payment: %s", verb, reason))
		http.Redirect(w, r, back, http.StatusSeeOther)
	}

	all, err := h.members(r.Context())
	if err != nil {
		fail(backend.UserMessage(err, msgListFailed))
		return
	}
	m, found := findMember(all, id)
	if !found {
		fail(msgMemberNotFound)
		return
	}
	phases, code, err := applyDecision(m.Phases, phase, approve)
	if err != nil {
		fail(err.Error())
		return
	}

	res, err := h.Backend.UpdatePhases(r.Context(), m.ID, phases)
	if err != nil {
		h.Log.Warn("decision refused",
			zap.String("member_id", m.ID),
			zap.Int("phase", phase),
			zap.String("decision", verb),
			zap.Error(err),
		)
		fail(backend.UserMessage(err, "Failed to "+verb+" payment"))
		return
	}

	fields := []zap.Field{
		zap.String("member_id", m.ID),
		zap.Int("phase", phase),
		zap.String("decision", verb),
		zap.String("actor", who),
	}
	if res.Record != nil {
		fields = append(fields, zap.String("status", string(res.Record.Status())))
	}
	h.Log.Info("payment decided", fields...)
	h.AuditLog.PaymentDecided(r.Context(), r, who, m.ID, phase, approve, code)
	h.flashSuccess(w, r, fmt.Sprintf("Payment for phase %d has been %s successfully.", phase, past))
	http.Redirect(w, r, back, http.StatusSeeOther)
}

// applyDecision returns a copy of phases with the target set to
// CONFIRMED/paid (approve) or FAILED/unpaid (reject). Every other phase
// is passed through untouched. Only a phase awaiting approval can be
// decided. The second return is the decided phase's code.
func applyDecision(phases []models.PaymentPhase, number int, approve bool) ([]models.PaymentPhase, string, error) {
	out := make([]models.PaymentPhase, len(phases))
	idx := -1
	for i, p := range phases {
		out[i] = p.Clone()
		if p.PhaseNumber == number {
			idx = i
		}
	}
	if idx < 0 {
		return nil, "", errPhaseNotFound
	}
	if !out[idx].AwaitingApproval() {
		return nil, "", errNotAwaiting
	}

	if approve {
		out[idx].Status = models.PhaseConfirmed
		out[idx].Paid = true
	} else {
		out[idx].Status = models.PhaseFailed
		out[idx].Paid = false
	}
	return out, out[idx].Code(), nil
}

func pathTarget(r *http.Request) (string, int, bool) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	phase, err := strconv.Atoi(chi.URLParam(r, "phase"))
	if id == "" || err != nil || phase < 1 {
		return "", 0, false
	}
	return id, phase, true
}
