package models

import (
	"encoding/json"
	"testing"
)

func TestMoney_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		in   string
		want Money
	}{
		{`500`, 500},
		{`"500"`, 500},
		{`"700.00"`, 700},
		{`"2,200"`, 2200},
		{`499.6`, 500},
		{`""`, 0},
		{`null`, 0},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var m Money
			if err := json.Unmarshal([]byte(tt.in), &m); err != nil {
				t.Fatalf("Unmarshal(%s) error: %v", tt.in, err)
			}
			if m != tt.want {
				t.Errorf("Unmarshal(%s) = %d, want %d", tt.in, m, tt.want)
			}
		})
	}
}

func TestMoney_UnmarshalJSON_Invalid(t *testing.T) {
	for _, in := range []string{`"abc"`, `true`, `{}`} {
		var m Money
		if err := json.Unmarshal([]byte(in), &m); err == nil {
			t.Errorf("Unmarshal(%s) expected error", in)
		}
	}
}

func TestMoney_String(t *testing.T) {
	tests := []struct {
		m    Money
		want string
	}{
		{0, "0"},
		{500, "500"},
		{2200, "2,200"},
		{1234567, "1,234,567"},
		{-1200, "-1,200"},
	}
	for _, tt := range tests {
		if got := tt.m.String(); got != tt.want {
			t.Errorf("Money(%d).String() = %q, want %q", int64(tt.m), got, tt.want)
		}
	}
	if got := Money(2200).KSH(); got != "KSH 2,200" {
		t.Errorf("KSH() = %q", got)
	}
}

func TestMember_Status(t *testing.T) {
	tests := []struct {
		name      string
		paid      Money
		remaining Money
		want      MemberStatus
	}{
		{"nothing paid", 0, 2200, MemberPending},
		{"part paid", 500, 1700, MemberActive},
		{"fully paid", 2200, 0, MemberCompleted},
		{"overpaid", 2300, -100, MemberCompleted},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Member{TotalPaid: tt.paid, RemainingAmount: tt.remaining}
			if got := m.Status(); got != tt.want {
				t.Errorf("Status() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMember_DecodeBackendShape(t *testing.T) {
	raw := `{
		"id": "42",
		"full_name": "Jane Wanjiru",
		"phone": "0712345678",
		"location": "Limuru",
		"e_contact_name": "Mary",
		"e_contact_phone": "0700000000",
		"payment_plan": "installment",
		"total_amount": "2200",
		"total_paid": 500,
		"remaining_amount": 1700,
		"phases": [
			{"phase_number": 2, "description": "Second", "amount": "500", "paid": false, "mpesa_code": null, "status": "PENDING"},
			{"phase_number": 1, "description": "Deposit", "amount": 500, "paid": true, "mpesa_code": "QWE1234567", "status": "CONFIRMED"}
		],
		"created_at": "2025-06-01T10:00:00Z",
		"updated_at": "2025-06-02T10:00:00Z"
	}`

	var m Member
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.TotalAmount != 2200 {
		t.Errorf("TotalAmount = %d", m.TotalAmount)
	}
	sorted := m.SortedPhases()
	if sorted[0].PhaseNumber != 1 || sorted[1].PhaseNumber != 2 {
		t.Errorf("SortedPhases order = %d,%d", sorted[0].PhaseNumber, sorted[1].PhaseNumber)
	}
	if m.Phases[0].PhaseNumber != 2 {
		t.Error("SortedPhases must not reorder the original slice")
	}
	if sorted[1].MpesaCode != nil {
		t.Error("null mpesa_code should decode to nil")
	}
	if m.Updated().IsZero() {
		t.Error("expected updated_at to parse")
	}
}

func TestPaymentPhase_NullCodeRoundTrip(t *testing.T) {
	b, err := json.Marshal(PaymentPhase{PhaseNumber: 1, Amount: 500, Status: PhasePending})
	if err != nil {
		t.Fatal(err)
	}
	want := `{"phase_number":1,"description":"","amount":500,"paid":false,"mpesa_code":null,"status":"PENDING"}`
	if string(b) != want {
		t.Errorf("Marshal = %s\nwant      %s", b, want)
	}
}

func TestPaymentPhase_Predicates(t *testing.T) {
	code := "QWE1234567"
	blank := "  "
	tests := []struct {
		name     string
		p        PaymentPhase
		settled  bool
		awaiting bool
		stub     bool
		badge    string
	}{
		{"confirmed paid", PaymentPhase{Status: PhaseConfirmed, Paid: true, MpesaCode: &code}, true, false, false, "Paid"},
		{"confirmed unpaid", PaymentPhase{Status: PhaseConfirmed}, false, false, false, "Not Paid"},
		{"pending with code", PaymentPhase{Status: PhasePending, MpesaCode: &code}, false, true, false, "Pending"},
		{"pending stub", PaymentPhase{Status: PhasePending}, false, false, true, "Not Paid"},
		{"pending blank code", PaymentPhase{Status: PhasePending, MpesaCode: &blank}, false, false, true, "Not Paid"},
		{"failed", PaymentPhase{Status: PhaseFailed, MpesaCode: &code}, false, false, false, "Not Paid"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Settled(); got != tt.settled {
				t.Errorf("Settled() = %v", got)
			}
			if got := tt.p.AwaitingApproval(); got != tt.awaiting {
				t.Errorf("AwaitingApproval() = %v", got)
			}
			if got := tt.p.Stub(); got != tt.stub {
				t.Errorf("Stub() = %v", got)
			}
			if got := tt.p.Badge(); got != tt.badge {
				t.Errorf("Badge() = %q, want %q", got, tt.badge)
			}
		})
	}
}

func TestMember_CloneIsDeep(t *testing.T) {
	code := "ABC1234567"
	m := Member{Phases: []PaymentPhase{{PhaseNumber: 1, MpesaCode: &code}}}
	c := m.Clone()
	*c.Phases[0].MpesaCode = "CHANGED000"
	c.Phases[0].Status = PhaseFailed
	if m.Phases[0].Code() != "ABC1234567" || m.Phases[0].Status != "" {
		t.Error("Clone shares state with the original")
	}
}

func TestNormalizePlan(t *testing.T) {
	tests := []struct {
		in   string
		want PaymentPlan
		ok   bool
	}{
		{"full", PlanFull, true},
		{"FULL", PlanFull, true},
		{"installment", PlanInstallment, true},
		{" Installments ", PlanInstallment, true},
		{"weekly", "weekly", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := NormalizePlan(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NormalizePlan(%q) = %q,%v want %q,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPlanConfig_Validate(t *testing.T) {
	if err := DefaultPlanConfig().Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
	bad := PlanConfig{Total: 2200, InstallmentAmounts: []Money{500, 500}}
	if err := bad.Validate(); err == nil {
		t.Error("expected mismatch error")
	}
	if err := (PlanConfig{Total: 0, InstallmentAmounts: []Money{0}}).Validate(); err == nil {
		t.Error("expected non-positive total error")
	}
}

func TestPendingPayments(t *testing.T) {
	code := "QWE1234567"
	members := []Member{
		{
			ID: "1", FullName: "A", UpdatedAt: "2025-06-02T10:00:00Z",
			Phases: []PaymentPhase{
				{PhaseNumber: 2, Amount: 500, Status: PhasePending, MpesaCode: &code},
				{PhaseNumber: 1, Amount: 500, Status: PhaseConfirmed, Paid: true},
			},
		},
		{
			ID: "2", FullName: "B",
			Phases: []PaymentPhase{{PhaseNumber: 1, Amount: 2200, Status: PhasePending}},
		},
	}
	got := PendingPayments(members)
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].MemberID != "1" || got[0].PhaseNumber != 2 || got[0].MpesaCode != code {
		t.Errorf("unexpected record: %+v", got[0])
	}
	if got[0].SubmittedAt.IsZero() {
		t.Error("SubmittedAt should come from the member's updated_at")
	}
}
