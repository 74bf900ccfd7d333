package admin

import (
	"testing"

	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/retreatreg/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestApplyDecision_ApproveTouchesOnlyTarget(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed, models.PhasePending)
	before := m.Clone()

	got, code, err := applyDecision(m.Phases, 2, true)
	if err != nil {
		t.Fatalf("applyDecision: %v", err)
	}
	if code != "CODE000002" {
		t.Errorf("code = %q", code)
	}

	want := before.Clone().Phases
	want[1].Status = models.PhaseConfirmed
	want[1].Paid = true
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("phases mismatch (-want +got):\n%s", diff)
	}
	// The input is not modified.
	if diff := cmp.Diff(before.Phases, m.Phases); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}

func TestApplyDecision_Reject(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhasePending)

	got, _, err := applyDecision(m.Phases, 1, false)
	if err != nil {
		t.Fatalf("applyDecision: %v", err)
	}
	if got[0].Status != models.PhaseFailed || got[0].Paid {
		t.Errorf("phase 1 = %+v, want FAILED unpaid", got[0])
	}
	if got[0].Code() != "CODE000001" {
		t.Errorf("code should be kept, got %q", got[0].Code())
	}
}

func TestApplyDecision_Errors(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed)

	if _, _, err := applyDecision(m.Phases, 9, true); err != errPhaseNotFound {
		t.Errorf("missing phase: err = %v", err)
	}
	if _, _, err := applyDecision(m.Phases, 1, true); err != errNotAwaiting {
		t.Errorf("confirmed phase: err = %v", err)
	}
	// Stub with no code.
	if _, _, err := applyDecision(m.Phases, 2, false); err != errNotAwaiting {
		t.Errorf("stub phase: err = %v", err)
	}
}

func TestComputeStats(t *testing.T) {
	members := []models.Member{
		testutil.FullMember("1", "A", "0700000001", models.PhaseConfirmed),
		testutil.FullMember("2", "B", "0700000002", models.PhasePending),
		testutil.InstallmentMember("3", "C", "0700000003", models.PhaseConfirmed, models.PhaseConfirmed, models.PhasePending),
		testutil.InstallmentMember("4", "D", "0700000004"),
	}
	members[3].PaymentPlan = "INSTALLMENTS"

	got := computeStats(members)
	want := statsView{
		Members:          4,
		Collected:        2200 + 1000,
		Outstanding:      2200 + 1200 + 2200,
		Completed:        1,
		Active:           1,
		NotStarted:       2,
		PendingApprovals: 2,
		FullPlan:         2,
		InstallmentPlan:  2,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("stats mismatch (-want +got):\n%s", diff)
	}
}

func TestNewMemberRow(t *testing.T) {
	m := testutil.InstallmentMember("3", "Jane", "0712345678", models.PhaseConfirmed, models.PhasePending)

	got := newMemberRow(m)
	want := memberRow{
		ID:          "3",
		Name:        "Jane",
		Phone:       "0712345678",
		Plan:        "installment",
		PlanLabel:   "Installments",
		Codes:       []string{"CODE000001", "CODE000002"},
		TotalPaid:   500,
		Remaining:   1700,
		PhaseStatus: "confirmed",
		Status:      "active",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("row mismatch (-want +got):\n%s", diff)
	}
}
