package bootstrap

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/gorilla/csrf"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
)

func testLogger() *zap.Logger {
	return zap.NewNop()
}

func validConfig() AppConfig {
	return AppConfig{
		BackendURL:       "http://backend.test/api",
		BackendTimeout:   5 * time.Second,
		SessionKey:       "test-session-key-must-be-32-chars-long",
		CSRFKey:          base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef")),
		AuditLogPayments: "log",
		AuditLogAdmin:    "log",
		ViewStateTTL:     time.Minute,
		Plan:             models.DefaultPlanConfig(),
		EventName:        "Vault Retreat 2025",
		EventTimezone:    "UTC",
		ContactPhone:     "0712 345 678",
	}
}

func TestParseAmounts(t *testing.T) {
	got, err := parseAmounts(" 500, 500,500 ,700,")
	if err != nil {
		t.Fatalf("parseAmounts: %v", err)
	}
	want := []models.Money{500, 500, 500, 700}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("amounts mismatch (-want +got):\n%s", diff)
	}

	if _, err := parseAmounts("500,abc"); err == nil {
		t.Error("expected error for non-numeric amount")
	}
}

func TestCSRFKey(t *testing.T) {
	if _, err := csrfKey(validConfig().CSRFKey); err != nil {
		t.Errorf("valid key rejected: %v", err)
	}
	if _, err := csrfKey(base64.StdEncoding.EncodeToString([]byte("short"))); err == nil {
		t.Error("expected error for short key")
	}
	if _, err := csrfKey("not base64!"); err == nil {
		t.Error("expected error for bad encoding")
	}
}

func TestValidateConfig_Accepts(t *testing.T) {
	if err := ValidateConfig(nil, validConfig(), testLogger()); err != nil {
		t.Fatalf("ValidateConfig: %v", err)
	}
}

func TestValidateConfig_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AppConfig)
		want   string
	}{
		{"no backend", func(c *AppConfig) { c.BackendURL = " " }, "backend_url"},
		{"token url", func(c *AppConfig) { c.BackendClientID = "svc" }, "backend_token_url"},
		{"plan sum", func(c *AppConfig) { c.Plan.Total = 2000 }, "payment plan"},
		{"empty plan", func(c *AppConfig) { c.Plan.InstallmentAmounts = nil }, "payment plan"},
		{"csrf", func(c *AppConfig) { c.CSRFKey = "" }, "csrf_key"},
		{"timezone", func(c *AppConfig) { c.EventTimezone = "Not/AZone" }, "event_timezone"},
		{"mongo", func(c *AppConfig) { c.MongoURI = "postgres://nope" }, "MongoDB URI"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(nil, cfg, testLogger())
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want it to mention %q", err, tt.want)
			}
		})
	}
}

func TestConnectDB_WithoutMongo(t *testing.T) {
	deps, err := ConnectDB(context.Background(), nil, validConfig(), testLogger())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.Backend == nil || deps.Registry == nil || deps.Views == nil || deps.Sweeper == nil {
		t.Fatalf("missing deps: %+v", deps)
	}
	if deps.MongoClient != nil || deps.MongoDatabase != nil {
		t.Error("expected no mongo client without mongo_uri")
	}
	if err := EnsureSchema(context.Background(), nil, validConfig(), deps, testLogger()); err != nil {
		t.Errorf("EnsureSchema: %v", err)
	}

	deps.Sweeper.Start()
	if err := Shutdown(context.Background(), nil, validConfig(), deps, testLogger()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestConnectDB_NoBackend(t *testing.T) {
	cfg := validConfig()
	cfg.BackendURL = ""
	if _, err := ConnectDB(context.Background(), nil, cfg, testLogger()); err == nil {
		t.Fatal("expected error without a backend URL")
	}
}

func TestSiteFromConfig(t *testing.T) {
	site := siteFromConfig(validConfig())
	if site.Name != "Vault Retreat 2025" || site.EventName != "Vault Retreat 2025" {
		t.Errorf("name = %q/%q", site.Name, site.EventName)
	}
	if site.TillNumber != models.DefaultPlanConfig().TillNumber {
		t.Errorf("till = %q", site.TillNumber)
	}
	if site.ContactPhone != "0712 345 678" {
		t.Errorf("contact phone = %q", site.ContactPhone)
	}
}

func TestCSRFMiddleware_PassesSafeRequests(t *testing.T) {
	mw, err := csrfMiddleware(validConfig(), false)
	if err != nil {
		t.Fatalf("csrfMiddleware: %v", err)
	}
	var token string
	h := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token = csrf.Token(r)
		w.WriteHeader(http.StatusNoContent)
	}))

	w := httptest.NewRecorder()
	h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/register", nil))

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
	if token == "" {
		t.Error("expected a CSRF token in the request context")
	}
}
