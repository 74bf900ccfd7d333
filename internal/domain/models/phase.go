// internal/domain/models/phase.go
package models

import "strings"

// PhaseStatus is the backend's status for one payment phase.
type PhaseStatus string

const (
	PhasePending   PhaseStatus = "PENDING"
	PhaseConfirmed PhaseStatus = "CONFIRMED"
	PhaseFailed    PhaseStatus = "FAILED"
)

// Known reports whether s is one of the backend's statuses. The empty
// status is also accepted; a reverted submission can leave a phase blank.
func (s PhaseStatus) Known() bool {
	switch s {
	case PhasePending, PhaseConfirmed, PhaseFailed, "":
		return true
	}
	return false
}

// PaymentPhase is one installment within a member's plan.
type PaymentPhase struct {
	PhaseNumber int         `json:"phase_number"`
	Description string      `json:"description"`
	Amount      Money       `json:"amount"`
	Paid        bool        `json:"paid"`
	MpesaCode   *string     `json:"mpesa_code"`
	Status      PhaseStatus `json:"status"`
}

// Code returns the attached transaction code, or "" when none is present.
func (p PaymentPhase) Code() string {
	if p.MpesaCode == nil {
		return ""
	}
	return strings.TrimSpace(*p.MpesaCode)
}

// HasCode reports whether a non-empty transaction code is attached.
func (p PaymentPhase) HasCode() bool {
	return p.Code() != ""
}

// Settled is true once the backend has confirmed and marked the phase paid.
func (p PaymentPhase) Settled() bool {
	return p.Status == PhaseConfirmed && p.Paid
}

// AwaitingApproval is a submitted payment the admins have not decided on.
func (p PaymentPhase) AwaitingApproval() bool {
	return p.Status == PhasePending && p.HasCode()
}

// Stub is a phase the backend created but nobody has paid against yet.
func (p PaymentPhase) Stub() bool {
	return p.Status == PhasePending && !p.HasCode()
}

// Badge is the tracker label: Paid, Pending or Not Paid.
func (p PaymentPhase) Badge() string {
	switch {
	case p.Settled():
		return "Paid"
	case p.AwaitingApproval():
		return "Pending"
	default:
		return "Not Paid"
	}
}

// Clone copies the phase including its code pointer.
func (p PaymentPhase) Clone() PaymentPhase {
	out := p
	if p.MpesaCode != nil {
		c := *p.MpesaCode
		out.MpesaCode = &c
	}
	return out
}

// StringPtr returns a pointer to s, or nil when s is empty.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
