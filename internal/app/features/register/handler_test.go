package register_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/features/register"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/ratelimit"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/retreatreg/internal/testutil"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T, members ...models.Member) (*register.Handler, *testutil.FakeBackend) {
	t.Helper()
	logger := zap.NewNop()
	fb := testutil.NewFakeBackend(t, members...)
	h := register.NewHandler(
		testutil.NewBackendClient(t, fb),
		testutil.NewSessionManager(t),
		auditlog.New(nil, logger, auditlog.Config{}),
		models.DefaultPlanConfig(),
		uierrors.NewErrorLogger(logger),
		logger,
	)
	return h, fb
}

func validForm() url.Values {
	return url.Values{
		"full_name":       {"  Jane   Wanjiku "},
		"phone":           {"0712 345 678"},
		"location":        {"Limuru"},
		"emergency_name":  {"Mary Wanjiku"},
		"emergency_phone": {"0722-000-111"},
		"payment_plan":    {"installments"},
		"mpesa_message":   {"TFK3XY12AB Confirmed. Ksh500.00 paid to VAULT MINISTRIES"},
	}
}

func submit(h *register.Handler, form url.Values) *httptest.ResponseRecorder {
	req := testutil.NewFormRequest(http.MethodPost, "/register", form)
	rec := httptest.NewRecorder()
	testutil.Render(h.HandleSubmit, rec, req)
	return rec
}

func TestHandleSubmit_MissingFields_NoBackendCall(t *testing.T) {
	h, fb := newTestHandler(t)

	for _, field := range []string{"full_name", "phone", "location", "emergency_name", "emergency_phone", "payment_plan"} {
		form := validForm()
		form.Set(field, "   ")
		rec := submit(h, form)
		if rec.Code != http.StatusOK {
			t.Errorf("%s blank: status = %d, want 200", field, rec.Code)
		}
	}
	if n := fb.CallsTo("POST /retreatreg"); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestHandleSubmit_UnknownPlan_NoBackendCall(t *testing.T) {
	h, fb := newTestHandler(t)
	form := validForm()
	form.Set("payment_plan", "monthly")
	submit(h, form)
	if n := fb.CallsTo("POST /retreatreg"); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestHandleSubmit_MarkupOnlyFieldCountsAsEmpty(t *testing.T) {
	h, fb := newTestHandler(t)
	form := validForm()
	form.Set("location", "<script>alert(1)</script>")
	submit(h, form)
	if n := fb.CallsTo("POST /retreatreg"); n != 0 {
		t.Errorf("backend called %d times, want 0", n)
	}
}

func TestHandleSubmit_Success(t *testing.T) {
	h, fb := newTestHandler(t)

	rec := submit(h, validForm())
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/register/success" {
		t.Errorf("Location = %q", loc)
	}

	calls := fb.Calls()
	if len(calls) != 1 {
		t.Fatalf("backend calls = %d, want 1", len(calls))
	}
	var body map[string]any
	if err := json.Unmarshal(calls[0].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := map[string]any{
		"fullName":         "Jane Wanjiku",
		"phoneNumber":      "0712345678",
		"location":         "Limuru",
		"emergencyContact": "Mary Wanjiku",
		"emergencyPhone":   "0722000111",
		"paymentPlan":      "installment",
		"mpesaCode":        "TFK3XY12AB",
	}
	if diff := cmp.Diff(want, body); diff != "" {
		t.Errorf("request body mismatch (-want +got):\n%s", diff)
	}

	// The tracker can find the new registrant without asking again.
	next := testutil.Carry(rec, testutil.NewRequest(http.MethodGet, "/installments"))
	lookup, ok := h.SessionMgr.Lookup(next)
	if !ok {
		t.Fatal("expected lookup identity in session")
	}
	if diff := cmp.Diff(auth.Lookup{Phone: "0712345678", FullName: "Jane Wanjiku"}, lookup); diff != "" {
		t.Errorf("lookup mismatch (-want +got):\n%s", diff)
	}

	flashes := h.SessionMgr.TakeFlashes(httptest.NewRecorder(), next)
	if diff := cmp.Diff([]string{"Registration Successful!"}, flashes.Success); diff != "" {
		t.Errorf("flashes mismatch (-want +got):\n%s", diff)
	}
}

func TestHandleSubmit_NoCodeSendsNull(t *testing.T) {
	h, fb := newTestHandler(t)
	form := validForm()
	form.Set("mpesa_message", "I will pay later")

	rec := submit(h, form)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(fb.Calls()[0].Body, &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	v, present := body["mpesaCode"]
	if !present || v != nil {
		t.Errorf("mpesaCode = %v (present %v), want null", v, present)
	}
}

func TestHandleSubmit_DuplicateCode_ReRenders(t *testing.T) {
	existing := testutil.InstallmentMember("1", "Peter Kamau", "0700000000", models.PhasePending)
	existing.Phases[0].MpesaCode = models.StringPtr("TFK3XY12AB")
	h, fb := newTestHandler(t, existing)

	rec := submit(h, validForm())
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Header().Get("Location") != "" {
		t.Error("duplicate code must not redirect")
	}
	if n := fb.CallsTo("POST /retreatreg"); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
	next := testutil.Carry(rec, testutil.NewRequest(http.MethodGet, "/installments"))
	if _, ok := h.SessionMgr.Lookup(next); ok {
		t.Error("failed registration must not set a lookup identity")
	}
}

func TestHandleSubmit_RateLimited(t *testing.T) {
	h, fb := newTestHandler(t)
	h.Limiter = ratelimit.New(1, time.Hour)

	submit(h, validForm())
	form := validForm()
	form.Set("mpesa_message", "")
	rec := submit(h, form)

	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rec.Code)
	}
	if n := fb.CallsTo("POST /retreatreg"); n != 1 {
		t.Errorf("backend calls = %d, want 1", n)
	}
}

func TestServeSuccess_ConsumesFlash(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := submit(h, validForm())
	req := testutil.Carry(rec, testutil.NewRequest(http.MethodGet, "/register/success"))
	rec2 := httptest.NewRecorder()
	testutil.Render(h.ServeSuccess, rec2, req)

	after := testutil.Carry(rec2, testutil.NewRequest(http.MethodGet, "/register/success"))
	if f := h.SessionMgr.TakeFlashes(httptest.NewRecorder(), after); !f.Empty() {
		t.Errorf("flash shown twice: %+v", f)
	}
}
