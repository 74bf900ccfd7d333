// Package phasepolicy decides which installment a registrant may pay next.
//
// It is the single place eligibility is computed; the registration
// redirect, the installment tracker and the admin views all call it.
//
// Rules:
//   - Phases are evaluated in phase-number order.
//   - The current phase is the first unpaid phase that is either a
//     PENDING stub with no code, or has no earlier phase awaiting approval
//     (PENDING with a code attached).
//   - A phase awaiting approval is not skipped. It stays current and
//     blocks payment until an admin approves or rejects it.
//   - Payment is blocked when any phase at or before the current one is
//     awaiting approval. With no current phase, any awaiting phase blocks.
//   - A plan is complete only when it has phases and every one is
//     CONFIRMED and paid. An empty plan is a configuration error.
//   - Total paid counts CONFIRMED phases only.
package phasepolicy

import (
	"strings"

	"github.com/dalemusser/retreatreg/internal/domain/models"
)

// Diagnosis classifies why a plan has no payable phase.
type Diagnosis int

const (
	// DiagnosisNone means a phase is payable or the plan is complete.
	DiagnosisNone Diagnosis = iota
	// DiagnosisNoPhases means the backend returned a plan without phases.
	DiagnosisNoPhases
	// DiagnosisAwaitingConsistency means every phase is paid but not all are confirmed.
	DiagnosisAwaitingConsistency
	// DiagnosisBlockedPendingApproval means a submitted payment awaits review.
	DiagnosisBlockedPendingApproval
	// DiagnosisInvalidConfiguration covers every other combination.
	DiagnosisInvalidConfiguration
)

// Message is the user-facing text for the diagnosis.
func (d Diagnosis) Message() string {
	switch d {
	case DiagnosisNoPhases:
		return "Payment Setup Error: No payment phases found for your plan. Please contact support to set up your payment plan."
	case DiagnosisAwaitingConsistency:
		return "All phases are marked as paid, but not all are confirmed."
	case DiagnosisBlockedPendingApproval:
		return "One or more phases are pending approval, blocking further payments."
	case DiagnosisInvalidConfiguration:
		return "Invalid phase configuration detected."
	default:
		return ""
	}
}

// String returns a short machine-friendly name, used in logs.
func (d Diagnosis) String() string {
	switch d {
	case DiagnosisNone:
		return "none"
	case DiagnosisNoPhases:
		return "no_phases"
	case DiagnosisAwaitingConsistency:
		return "awaiting_consistency"
	case DiagnosisBlockedPendingApproval:
		return "blocked_pending_approval"
	case DiagnosisInvalidConfiguration:
		return "invalid_configuration"
	default:
		return "unknown"
	}
}

// CurrentPhase returns the phase the registrant should pay next.
func CurrentPhase(phases []models.PaymentPhase) (models.PaymentPhase, bool) {
	sorted := models.SortPhases(phases)
	for i, p := range sorted {
		if p.Paid {
			continue
		}
		if p.Stub() || !anyAwaiting(sorted[:i]) {
			return p, true
		}
	}
	return models.PaymentPhase{}, false
}

// Blocked reports whether a new submission must be refused because a
// payment at or before current is still awaiting approval.
func Blocked(phases []models.PaymentPhase, current models.PaymentPhase, hasCurrent bool) bool {
	for _, p := range phases {
		if !p.AwaitingApproval() {
			continue
		}
		if !hasCurrent || p.PhaseNumber <= current.PhaseNumber {
			return true
		}
	}
	return false
}

// Complete is true when every phase is confirmed and paid.
func Complete(phases []models.PaymentPhase) bool {
	if len(phases) == 0 {
		return false
	}
	for _, p := range phases {
		if !p.Settled() {
			return false
		}
	}
	return true
}

// Diagnose explains a plan that has no payable phase and is not complete.
func Diagnose(phases []models.PaymentPhase) Diagnosis {
	if len(phases) == 0 {
		return DiagnosisNoPhases
	}
	if _, ok := CurrentPhase(phases); ok || Complete(phases) {
		return DiagnosisNone
	}

	allPaid, allConfirmed := true, true
	for _, p := range phases {
		if !p.Paid {
			allPaid = false
		}
		if p.Status != models.PhaseConfirmed {
			allConfirmed = false
		}
	}
	switch {
	case allPaid && !allConfirmed:
		return DiagnosisAwaitingConsistency
	case anyAwaiting(phases):
		return DiagnosisBlockedPendingApproval
	default:
		return DiagnosisInvalidConfiguration
	}
}

// TotalPaid sums the amounts of CONFIRMED phases.
func TotalPaid(phases []models.PaymentPhase) models.Money {
	var sum models.Money
	for _, p := range phases {
		if p.Status == models.PhaseConfirmed {
			sum += p.Amount
		}
	}
	return sum
}

// Remaining is total minus paid, never below zero.
func Remaining(total, paid models.Money) models.Money {
	if r := total - paid; r > 0 {
		return r
	}
	return 0
}

// Percent is paid as a whole percentage of total, clamped to [0,100].
func Percent(paid, total models.Money) int {
	if total <= 0 {
		if paid > 0 {
			return 100
		}
		return 0
	}
	pct := int64(paid) * 100 / int64(total)
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	default:
		return int(pct)
	}
}

// Progress is everything the tracker needs to render one member.
type Progress struct {
	Phases     []models.PaymentPhase
	Current    models.PaymentPhase
	HasCurrent bool
	Blocked    bool
	Complete   bool
	Diagnosis  Diagnosis
	Total      models.Money
	Paid       models.Money
	Remaining  models.Money
	Percent    int
}

// Evaluate runs the calculator over a member. When the backend sends no
// total, the configured plan total is used.
func Evaluate(m models.Member, plan models.PlanConfig) Progress {
	phases := m.SortedPhases()
	current, ok := CurrentPhase(phases)

	total := m.TotalAmount
	if total <= 0 {
		total = plan.Total
	}
	paid := TotalPaid(phases)

	return Progress{
		Phases:     phases,
		Current:    current,
		HasCurrent: ok,
		Blocked:    Blocked(phases, current, ok),
		Complete:   Complete(phases),
		Diagnosis:  Diagnose(phases),
		Total:      total,
		Paid:       paid,
		Remaining:  Remaining(total, paid),
		Percent:    Percent(paid, total),
	}
}

// StatusLabel is the one-word status the admin member table shows: the
// status of the first phase carrying a code, else of the highest-numbered
// phase, lower-cased. A plan without phases reads "pending".
func StatusLabel(phases []models.PaymentPhase) string {
	sorted := models.SortPhases(phases)
	if len(sorted) == 0 {
		return "pending"
	}
	pick := sorted[len(sorted)-1]
	for _, p := range sorted {
		if p.HasCode() {
			pick = p
			break
		}
	}
	if pick.Status == "" {
		return "pending"
	}
	return strings.ToLower(string(pick.Status))
}

func anyAwaiting(phases []models.PaymentPhase) bool {
	for _, p := range phases {
		if p.AwaitingApproval() {
			return true
		}
	}
	return false
}
