package testutil

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/domain/models"
	"go.uber.org/zap"
)

// BackendCall is one request the fake backend received.
type BackendCall struct {
	Method string
	Path   string
	Query  string
	Body   []byte
}

type failure struct {
	status  int
	message string
}

// FakeBackend is an in-memory stand-in for the retreat REST backend.
type FakeBackend struct {
	Server *httptest.Server

	mu      sync.Mutex
	members []models.Member
	calls   []BackendCall
	fail    map[string]failure
	bare    map[string]bool
	nextID  int
}

// NewFakeBackend starts a fake backend seeded with members. It is closed
// when the test ends.
func NewFakeBackend(t *testing.T, members ...models.Member) *FakeBackend {
	t.Helper()
	fb := &FakeBackend{fail: map[string]failure{}, bare: map[string]bool{}, nextID: 100}
	for _, m := range members {
		fb.members = append(fb.members, m.Clone())
	}
	fb.Server = httptest.NewServer(http.HandlerFunc(fb.serve))
	t.Cleanup(fb.Server.Close)
	return fb
}

// URL returns the fake's base URL.
func (fb *FakeBackend) URL() string { return fb.Server.URL }

// FailNext makes the next request matching "METHOD /path" answer with
// status and {"error": message}.
func (fb *FakeBackend) FailNext(route string, status int, message string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.fail[route] = failure{status: status, message: message}
}

// OmitRecordNext makes the next successful write matching "METHOD /path"
// answer with a message but no record.
func (fb *FakeBackend) OmitRecordNext(route string) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	fb.bare[route] = true
}

// Calls returns the requests received so far.
func (fb *FakeBackend) Calls() []BackendCall {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	return append([]BackendCall(nil), fb.calls...)
}

// CallsTo counts requests matching "METHOD /path".
func (fb *FakeBackend) CallsTo(route string) int {
	n := 0
	for _, c := range fb.Calls() {
		if c.Method+" "+c.Path == route {
			n++
		}
	}
	return n
}

// Member returns the stored record with id.
func (fb *FakeBackend) Member(id string) (models.Member, bool) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for _, m := range fb.members {
		if m.ID == id {
			return m.Clone(), true
		}
	}
	return models.Member{}, false
}

// SetMember replaces or appends a record.
func (fb *FakeBackend) SetMember(m models.Member) {
	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.members {
		if fb.members[i].ID == m.ID {
			fb.members[i] = m.Clone()
			return
		}
	}
	fb.members = append(fb.members, m.Clone())
}

func (fb *FakeBackend) serve(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	route := r.Method + " " + r.URL.Path

	fb.mu.Lock()
	fb.calls = append(fb.calls, BackendCall{Method: r.Method, Path: r.URL.Path, Query: r.URL.RawQuery, Body: body})
	f, failing := fb.fail[route]
	if failing {
		delete(fb.fail, route)
	}
	bare := false
	if !failing {
		bare = fb.bare[route]
		delete(fb.bare, route)
	}
	fb.mu.Unlock()

	if failing {
		writeJSON(w, f.status, map[string]string{"error": f.message})
		return
	}

	switch route {
	case "GET /":
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	case "GET /retreatreg":
		fb.get(w, r)
	case "POST /retreatreg":
		fb.register(w, body)
	case "PATCH /retreatreg":
		fb.patch(w, body, bare)
	case "POST /payments/process":
		fb.pay(w, body, bare)
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	}
}

func (fb *FakeBackend) get(w http.ResponseWriter, r *http.Request) {
	fb.mu.Lock()
	defer fb.mu.Unlock()

	phone := r.URL.Query().Get("phoneNumber")
	name := r.URL.Query().Get("fullName")
	if phone == "" && name == "" {
		writeJSON(w, http.StatusOK, fb.members)
		return
	}
	for _, m := range fb.members {
		if m.Phone == phone && strings.EqualFold(m.FullName, name) {
			writeJSON(w, http.StatusOK, m)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "No registration found with those details"})
}

func (fb *FakeBackend) register(w http.ResponseWriter, body []byte) {
	var in struct {
		FullName         string  `json:"fullName"`
		PhoneNumber      string  `json:"phoneNumber"`
		Location         string  `json:"location"`
		EmergencyContact string  `json:"emergencyContact"`
		EmergencyPhone   string  `json:"emergencyPhone"`
		PaymentPlan      string  `json:"paymentPlan"`
		MpesaCode        *string `json:"mpesaCode"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()

	if in.MpesaCode != nil {
		for _, m := range fb.members {
			for _, p := range m.Phases {
				if p.Code() == *in.MpesaCode {
					writeJSON(w, http.StatusConflict, map[string]string{"error": "Duplicate M-Pesa code"})
					return
				}
			}
		}
	}

	fb.nextID++
	var m models.Member
	if in.PaymentPlan == string(models.PlanFull) {
		m = FullMember(fmt.Sprint(fb.nextID), in.FullName, in.PhoneNumber, models.PhasePending)
		m.Phases[0].MpesaCode = in.MpesaCode
	} else {
		m = InstallmentMember(fmt.Sprint(fb.nextID), in.FullName, in.PhoneNumber)
		m.Phases[0].MpesaCode = in.MpesaCode
	}
	m.Location = in.Location
	m.EmergencyContactName = in.EmergencyContact
	m.EmergencyContactPhone = in.EmergencyPhone
	fb.members = append(fb.members, m)

	writeJSON(w, http.StatusCreated, map[string]any{"message": "Registration successful", "record": m})
}

func (fb *FakeBackend) patch(w http.ResponseWriter, body []byte, bare bool) {
	var in struct {
		ID     string                `json:"id"`
		Phases []models.PaymentPhase `json:"phases"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.members {
		if fb.members[i].ID == in.ID {
			fb.members[i].Phases = in.Phases
			Recompute(&fb.members[i])
			writeRecord(w, "Updated", fb.members[i], bare)
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Registration not found"})
}

func (fb *FakeBackend) pay(w http.ResponseWriter, body []byte, bare bool) {
	var in struct {
		Phone       string       `json:"phone"`
		MpesaCode   string       `json:"mpesa_code"`
		PhaseNumber int          `json:"phase_number"`
		Amount      models.Money `json:"amount"`
	}
	if err := json.Unmarshal(body, &in); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid body"})
		return
	}

	fb.mu.Lock()
	defer fb.mu.Unlock()
	for i := range fb.members {
		m := &fb.members[i]
		if m.Phone != in.Phone {
			continue
		}
		for j := range m.Phases {
			if m.Phases[j].PhaseNumber == in.PhaseNumber {
				m.Phases[j].MpesaCode = models.StringPtr(in.MpesaCode)
				m.Phases[j].Status = models.PhasePending
				m.Phases[j].Paid = false
				writeRecord(w, "Payment submitted", *m, bare)
				return
			}
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid phase"})
		return
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"error": "Registration not found"})
}

func writeRecord(w http.ResponseWriter, msg string, m models.Member, bare bool) {
	if bare {
		writeJSON(w, http.StatusOK, map[string]string{"message": msg})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": msg, "record": m})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// NewBackendClient returns a backend client pointed at fb.
func NewBackendClient(t *testing.T, fb *FakeBackend) *backend.Client {
	t.Helper()
	c, err := backend.New(backend.Config{BaseURL: fb.URL(), Timeout: 2 * time.Second}, nil, zap.NewNop())
	if err != nil {
		t.Fatalf("backend.New: %v", err)
	}
	return c
}
