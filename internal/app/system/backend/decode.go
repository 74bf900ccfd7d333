package backend

import (
	"fmt"
	"strings"

	"github.com/dalemusser/retreatreg/internal/domain/models"
)

// validateMember checks a decoded record before anything renders it and
// folds the plan to its canonical spelling. Members without phases pass;
// the tracker reports those through its own setup-error panel.
func validateMember(m *models.Member) error {
	if m == nil {
		return fmt.Errorf("%w: missing record", ErrMalformedResponse)
	}
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("%w: record has no id", ErrMalformedResponse)
	}
	if strings.TrimSpace(m.FullName) == "" {
		return fmt.Errorf("%w: record %s has no full_name", ErrMalformedResponse, m.ID)
	}
	if strings.TrimSpace(m.Phone) == "" {
		return fmt.Errorf("%w: record %s has no phone", ErrMalformedResponse, m.ID)
	}

	plan, ok := models.NormalizePlan(string(m.PaymentPlan))
	if !ok {
		return fmt.Errorf("%w: record %s has unknown payment_plan %q", ErrMalformedResponse, m.ID, m.PaymentPlan)
	}
	m.PaymentPlan = plan

	if m.TotalAmount < 0 || m.TotalPaid < 0 {
		return fmt.Errorf("%w: record %s has negative totals", ErrMalformedResponse, m.ID)
	}

	seen := make(map[int]struct{}, len(m.Phases))
	for i := range m.Phases {
		p := &m.Phases[i]
		if p.PhaseNumber < 1 {
			return fmt.Errorf("%w: record %s phase %d has invalid phase_number", ErrMalformedResponse, m.ID, p.PhaseNumber)
		}
		if _, dup := seen[p.PhaseNumber]; dup {
			return fmt.Errorf("%w: record %s repeats phase %d", ErrMalformedResponse, m.ID, p.PhaseNumber)
		}
		seen[p.PhaseNumber] = struct{}{}

		p.Status = models.PhaseStatus(strings.ToUpper(strings.TrimSpace(string(p.Status))))
		if !p.Status.Known() {
			return fmt.Errorf("%w: record %s phase %d has unknown status %q", ErrMalformedResponse, m.ID, p.PhaseNumber, p.Status)
		}
		if p.Amount < 0 {
			return fmt.Errorf("%w: record %s phase %d has negative amount", ErrMalformedResponse, m.ID, p.PhaseNumber)
		}
	}
	return nil
}

func validateMembers(ms []models.Member) error {
	for i := range ms {
		if err := validateMember(&ms[i]); err != nil {
			return err
		}
	}
	return nil
}
