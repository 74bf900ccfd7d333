package testutil

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
// Calling it again on the same request adds to the existing params.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx, ok := r.Context().Value(chi.RouteCtxKey).(*chi.Context)
	if !ok || rctx == nil {
		rctx = chi.NewRouteContext()
	}
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// InstallmentMember builds a four-phase installment member on the default
// plan. statuses sets each phase's status in order and attaches code
// "CODE00000N"; phases beyond the list stay PENDING without a code.
func InstallmentMember(id, name, phone string, statuses ...models.PhaseStatus) models.Member {
	plan := models.DefaultPlanConfig()
	m := models.Member{
		ID:                    id,
		FullName:              name,
		Phone:                 phone,
		Location:              "Limuru",
		EmergencyContactName:  "Next of Kin",
		EmergencyContactPhone: "0700000000",
		PaymentPlan:           models.PlanInstallment,
		TotalAmount:           plan.Total,
	}
	for i, amt := range plan.InstallmentAmounts {
		p := models.PaymentPhase{
			PhaseNumber: i + 1,
			Description: phaseDescription(i + 1),
			Amount:      amt,
			Status:      models.PhasePending,
		}
		if i < len(statuses) {
			p.Status = statuses[i]
			p.MpesaCode = models.StringPtr(fmt.Sprintf("CODE%06d", i+1))
			p.Paid = statuses[i] == models.PhaseConfirmed
		}
		m.Phases = append(m.Phases, p)
	}
	Recompute(&m)
	return m
}

// FullMember builds a one-phase full-payment member.
func FullMember(id, name, phone string, status models.PhaseStatus) models.Member {
	plan := models.DefaultPlanConfig()
	m := models.Member{
		ID:          id,
		FullName:    name,
		Phone:       phone,
		PaymentPlan: models.PlanFull,
		TotalAmount: plan.Total,
		Phases: []models.PaymentPhase{{
			PhaseNumber: 1,
			Description: "Full payment",
			Amount:      plan.Total,
			Paid:        status == models.PhaseConfirmed,
			MpesaCode:   models.StringPtr("FULL000001"),
			Status:      status,
		}},
	}
	Recompute(&m)
	return m
}

// Recompute sets TotalPaid and RemainingAmount from confirmed phases.
func Recompute(m *models.Member) {
	var paid models.Money
	for _, p := range m.Phases {
		if p.Status == models.PhaseConfirmed {
			paid += p.Amount
		}
	}
	m.TotalPaid = paid
	m.RemainingAmount = m.TotalAmount - paid
	if m.RemainingAmount < 0 {
		m.RemainingAmount = 0
	}
}

func phaseDescription(n int) string {
	switch n {
	case 1:
		return "Deposit"
	case 4:
		return "Final installment"
	default:
		return fmt.Sprintf("Installment %d", n)
	}
}
