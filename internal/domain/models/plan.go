// internal/domain/models/plan.go
package models

import (
	"errors"
	"fmt"
	"time"
)

// PlanConfig holds the business constants for the retreat. They come from
// app configuration; nothing in the calculator hard-codes them.
type PlanConfig struct {
	Total              Money   // full-plan price
	InstallmentAmounts []Money // per-phase amounts for the installment plan
	TillNumber         string  // M-Pesa Buy Goods till
}

// DefaultPlanConfig is the configuration used for the 2025 retreat.
func DefaultPlanConfig() PlanConfig {
	return PlanConfig{
		Total:              2200,
		InstallmentAmounts: []Money{500, 500, 500, 700},
		TillNumber:         "4941686",
	}
}

// Validate checks that installments are positive and add up to the total.
func (c PlanConfig) Validate() error {
	if c.Total <= 0 {
		return errors.New("plan total must be positive")
	}
	if len(c.InstallmentAmounts) == 0 {
		return errors.New("at least one installment amount is required")
	}
	var sum Money
	for i, a := range c.InstallmentAmounts {
		if a <= 0 {
			return fmt.Errorf("installment %d amount must be positive", i+1)
		}
		sum += a
	}
	if sum != c.Total {
		return fmt.Errorf("installments sum to %d, want plan total %d", sum, c.Total)
	}
	return nil
}

// PlanOption is one row of the plan sidebar and the registration radio group.
type PlanOption struct {
	Plan        PaymentPlan
	Label       string
	Description string
	Phases      []PhaseOption
}

// PhaseOption is one scheduled installment within a plan option.
type PhaseOption struct {
	Number int
	Amount Money
	Label  string
}

// Options describes both plans for display.
func (c PlanConfig) Options() []PlanOption {
	inst := make([]PhaseOption, 0, len(c.InstallmentAmounts))
	for i, a := range c.InstallmentAmounts {
		label := fmt.Sprintf("Installment %d", i+1)
		if i == 0 {
			label = "Deposit"
		}
		inst = append(inst, PhaseOption{Number: i + 1, Amount: a, Label: label})
	}
	return []PlanOption{
		{
			Plan:        PlanFull,
			Label:       PlanFull.Label(),
			Description: "Pay " + c.Total.KSH() + " once and you are fully registered.",
			Phases:      []PhaseOption{{Number: 1, Amount: c.Total, Label: "Full payment"}},
		},
		{
			Plan:        PlanInstallment,
			Label:       PlanInstallment.Label(),
			Description: fmt.Sprintf("Spread %s across %d payments.", c.Total.KSH(), len(c.InstallmentAmounts)),
			Phases:      inst,
		},
	}
}

// PendingPayment is one row of the admin approval queue: a phase with a
// submitted code that is still PENDING. It is derived on every render
// and never stored.
type PendingPayment struct {
	MemberID       string
	MemberName     string
	Phone          string
	PhaseNumber    int
	Description    string
	Amount         Money
	ExpectedAmount Money
	MpesaCode      string
	Status         PhaseStatus
	SubmittedAt    time.Time
}

// PendingPayments projects the approval queue from a member list.
// Order follows the member list, then phase number.
func PendingPayments(members []Member) []PendingPayment {
	var out []PendingPayment
	for _, m := range members {
		for _, p := range m.SortedPhases() {
			if !p.AwaitingApproval() {
				continue
			}
			out = append(out, PendingPayment{
				MemberID:       m.ID,
				MemberName:     m.FullName,
				Phone:          m.Phone,
				PhaseNumber:    p.PhaseNumber,
				Description:    p.Description,
				Amount:         p.Amount,
				ExpectedAmount: p.Amount,
				MpesaCode:      p.Code(),
				Status:         p.Status,
				SubmittedAt:    m.Updated(),
			})
		}
	}
	return out
}
