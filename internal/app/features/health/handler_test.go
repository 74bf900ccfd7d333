package health_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/retreatreg/internal/app/features/health"
	"github.com/dalemusser/retreatreg/internal/testutil"
	"go.uber.org/zap"
)

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type healthBody struct {
	Status   string `json:"status"`
	Backend  string `json:"backend"`
	Database string `json:"database"`
	Message  string `json:"message"`
	Error    string `json:"error"`
}

func serve(t *testing.T, h *health.Handler) (int, healthBody) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.Serve(rec, httptest.NewRequest("GET", "/health", nil))

	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type: got %q, want %q", ct, "application/json")
	}
	var body healthBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to parse response: %v", err)
	}
	return rec.Code, body
}

func TestServe_BackendOnly(t *testing.T) {
	code, body := serve(t, health.NewHandler(fakePinger{}, nil, zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if body.Status != "ok" || body.Backend != "reachable" || body.Database != "not configured" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestServe_BackendDown(t *testing.T) {
	code, body := serve(t, health.NewHandler(fakePinger{err: errors.New("connection refused")}, nil, zap.NewNop()))

	if code != http.StatusServiceUnavailable {
		t.Errorf("expected status %d, got %d", http.StatusServiceUnavailable, code)
	}
	if body.Status != "error" || body.Backend != "unreachable" || body.Error != "connection refused" {
		t.Errorf("unexpected body: %+v", body)
	}
}

func TestServe_WithDatabase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	code, body := serve(t, health.NewHandler(fakePinger{}, db.Client(), zap.NewNop()))

	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if body.Database != "connected" {
		t.Errorf("database: got %q, want %q", body.Database, "connected")
	}
}

func TestServe_AgainstFakeBackend(t *testing.T) {
	fb := testutil.NewFakeBackend(t)
	client := testutil.NewBackendClient(t, fb)

	code, _ := serve(t, health.NewHandler(client, nil, zap.NewNop()))
	if code != http.StatusOK {
		t.Errorf("expected status %d, got %d", http.StatusOK, code)
	}
	if fb.CallsTo("GET /") != 1 {
		t.Errorf("expected one ping, got %d", fb.CallsTo("GET /"))
	}
}
