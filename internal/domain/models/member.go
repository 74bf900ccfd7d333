// internal/domain/models/member.go
package models

import (
	"sort"
	"strings"
	"time"
)

// PaymentPlan is the plan a registrant chose at sign-up.
type PaymentPlan string

const (
	PlanFull        PaymentPlan = "full"
	PlanInstallment PaymentPlan = "installment"
)

// NormalizePlan folds the spellings the backend and older forms emit
// ("FULL", "installments", " Installment ") to a canonical plan.
// The second return is false for anything unrecognised.
func NormalizePlan(s string) (PaymentPlan, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "full":
		return PlanFull, true
	case "installment", "installments":
		return PlanInstallment, true
	default:
		return PaymentPlan(strings.ToLower(strings.TrimSpace(s))), false
	}
}

// Label is the human-readable plan name.
func (p PaymentPlan) Label() string {
	switch p {
	case PlanFull:
		return "Full Payment"
	case PlanInstallment:
		return "Installments"
	default:
		return string(p)
	}
}

// MemberStatus is a view-layer classification derived from the totals.
// It is never sent to the backend.
type MemberStatus string

const (
	MemberCompleted MemberStatus = "completed"
	MemberActive    MemberStatus = "active"
	MemberPending   MemberStatus = "pending"
)

// Member is a registrant as returned by the retreat backend.
//
// Members own their phases exclusively; phases have no identity outside
// their parent record. The front end never creates, deletes, or persists
// members; it only renders what the backend returns.
type Member struct {
	ID                    string         `json:"id"`
	FullName              string         `json:"full_name"`
	Phone                 string         `json:"phone"`
	Location              string         `json:"location"`
	EmergencyContactName  string         `json:"e_contact_name"`
	EmergencyContactPhone string         `json:"e_contact_phone"`
	PaymentPlan           PaymentPlan    `json:"payment_plan"`
	TotalAmount           Money          `json:"total_amount"`
	TotalPaid             Money          `json:"total_paid"`
	RemainingAmount       Money          `json:"remaining_amount"`
	Phases                []PaymentPhase `json:"phases"`
	CreatedAt             string         `json:"created_at,omitempty"`
	UpdatedAt             string         `json:"updated_at,omitempty"`
}

// Status derives completed / active / pending from the backend totals.
func (m Member) Status() MemberStatus {
	switch {
	case m.RemainingAmount <= 0:
		return MemberCompleted
	case m.TotalPaid > 0:
		return MemberActive
	default:
		return MemberPending
	}
}

// SortedPhases returns a copy of the phases ordered by phase number.
func (m Member) SortedPhases() []PaymentPhase {
	return SortPhases(m.Phases)
}

// Phase returns the phase with the given number.
func (m Member) Phase(number int) (PaymentPhase, bool) {
	for _, p := range m.Phases {
		if p.PhaseNumber == number {
			return p, true
		}
	}
	return PaymentPhase{}, false
}

// Clone returns a deep copy so snapshot mutations never alias the original.
func (m Member) Clone() Member {
	out := m
	out.Phases = make([]PaymentPhase, len(m.Phases))
	for i, p := range m.Phases {
		out.Phases[i] = p.Clone()
	}
	return out
}

// Created parses CreatedAt; the zero time is returned when it is absent or malformed.
func (m Member) Created() time.Time { return parseTimestamp(m.CreatedAt) }

// Updated parses UpdatedAt; the zero time is returned when it is absent or malformed.
func (m Member) Updated() time.Time { return parseTimestamp(m.UpdatedAt) }

// SortPhases returns a copy of phases ordered by phase number.
func SortPhases(phases []PaymentPhase) []PaymentPhase {
	out := make([]PaymentPhase, len(phases))
	copy(out, phases)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PhaseNumber < out[j].PhaseNumber
	})
	return out
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05.999999-07",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTimestamp(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
