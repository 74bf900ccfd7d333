package installments

import (
	"testing"

	"github.com/dalemusser/retreatreg/internal/app/policy/phasepolicy"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/retreatreg/internal/testutil"
	"github.com/google/go-cmp/cmp"
)

func TestBuildTracker_FirstInstallmentPaid(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed)
	v := buildTracker(m, models.DefaultPlanConfig())

	if v.Paid != 500 || v.Total != 2200 || v.Remaining != 1700 {
		t.Errorf("totals = %v/%v remaining %v", v.Paid, v.Total, v.Remaining)
	}
	if v.Percent != 22 {
		t.Errorf("Percent = %d, want 22", v.Percent)
	}
	if !v.HasCurrent || v.Current.Number != 2 || v.Blocked {
		t.Errorf("current = %+v blocked=%v", v.Current, v.Blocked)
	}
	badges := make([]string, len(v.Phases))
	for i, p := range v.Phases {
		badges[i] = p.Badge
	}
	if diff := cmp.Diff([]string{"Paid", "Not Paid", "Not Paid", "Not Paid"}, badges); diff != "" {
		t.Errorf("badges mismatch (-want +got):\n%s", diff)
	}
	if !v.Phases[1].Current || v.Phases[0].Current {
		t.Error("only phase 2 should be marked current")
	}
	if v.StatusError != "" {
		t.Errorf("StatusError = %q", v.StatusError)
	}
}

func TestBuildTracker_AwaitingApprovalBlocks(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed, models.PhasePending)
	v := buildTracker(m, models.DefaultPlanConfig())

	if !v.HasCurrent || v.Current.Number != 2 {
		t.Fatalf("current = %+v", v.Current)
	}
	if !v.Blocked {
		t.Error("expected tracker to be blocked")
	}
	if v.Phases[1].BadgeClass != "badge-pending" {
		t.Errorf("BadgeClass = %q", v.Phases[1].BadgeClass)
	}
}

func TestBuildTracker_Complete(t *testing.T) {
	m := testutil.FullMember("1", "Jane", "0712345678", models.PhaseConfirmed)
	v := buildTracker(m, models.DefaultPlanConfig())
	if !v.Complete || v.HasCurrent || v.Percent != 100 || v.StatusError != "" {
		t.Errorf("view = %+v", v)
	}
}

func TestBuildTracker_NoPhases(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678")
	m.Phases = nil
	v := buildTracker(m, models.DefaultPlanConfig())
	if !v.NoPhases || v.Complete || v.HasCurrent {
		t.Errorf("view = %+v", v)
	}
	if v.StatusError != "" {
		t.Error("empty plans use the setup panel, not the status error")
	}
}

func TestBuildTracker_PaidButUnconfirmed(t *testing.T) {
	m := testutil.FullMember("1", "Jane", "0712345678", models.PhaseFailed)
	m.Phases[0].Paid = true
	v := buildTracker(m, models.DefaultPlanConfig())
	if want := phasepolicy.DiagnosisAwaitingConsistency.Message(); v.StatusError != want {
		t.Errorf("StatusError = %q, want %q", v.StatusError, want)
	}
}

func TestBuildTracker_ZeroTotalFallsBackToPlan(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed)
	m.TotalAmount = 0
	v := buildTracker(m, models.DefaultPlanConfig())
	if v.Total != 2200 {
		t.Errorf("Total = %v, want 2200", v.Total)
	}
}

func TestMarkAndRevert(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed, models.PhaseFailed)
	original := m.Clone()

	prior, ok := markSubmitted(&m, 2, "NEWCODE123")
	if !ok {
		t.Fatal("markSubmitted: phase not found")
	}
	if prior.Status != models.PhaseFailed {
		t.Errorf("prior status = %q", prior.Status)
	}
	p, _ := m.Phase(2)
	if p.Status != models.PhasePending || p.Code() != "NEWCODE123" {
		t.Errorf("after mark: %+v", p)
	}

	if !revertSubmission(&m, "NEWCODE123", prior) {
		t.Fatal("revertSubmission reported no change")
	}
	p, _ = m.Phase(2)
	if diff := cmp.Diff(original.Phases[1], p); diff != "" {
		t.Errorf("phase 2 not restored (-want +got):\n%s", diff)
	}
	// Other phases are untouched.
	if diff := cmp.Diff(original.Phases[0], m.Phases[0]); diff != "" {
		t.Errorf("phase 1 changed (-want +got):\n%s", diff)
	}
}

func TestRevertSubmission_RestoresRejectedCode(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed, models.PhaseFailed)
	m.Phases[1].MpesaCode = models.StringPtr("OLDCODE123")

	prior, ok := markSubmitted(&m, 2, "NEWCODE456")
	if !ok {
		t.Fatal("markSubmitted: phase not found")
	}
	if !revertSubmission(&m, "NEWCODE456", prior) {
		t.Fatal("revertSubmission reported no change")
	}
	p, _ := m.Phase(2)
	if p.Status != models.PhaseFailed {
		t.Errorf("status = %q, want %q", p.Status, models.PhaseFailed)
	}
	if p.Code() != "OLDCODE123" {
		t.Errorf("code = %q, want OLDCODE123", p.Code())
	}
}

func TestRevertSubmission_SkipsRewrittenPhase(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678", models.PhaseConfirmed, models.PhasePending)
	if revertSubmission(&m, "NEWCODE123", models.PaymentPhase{PhaseNumber: 2}) {
		t.Error("revert must not touch a phase carrying another code")
	}
	if p, _ := m.Phase(2); p.Code() != "CODE000002" {
		t.Errorf("code = %q", p.Code())
	}
}

func TestMarkSubmitted_UnknownPhase(t *testing.T) {
	m := testutil.InstallmentMember("1", "Jane", "0712345678")
	if _, ok := markSubmitted(&m, 9, "X"); ok {
		t.Error("expected unknown phase to report false")
	}
}
