package logout_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dalemusser/retreatreg/internal/app/features/logout"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func newTestHandler(t *testing.T) (*logout.Handler, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zap.InfoLevel)
	logger := zap.New(core)
	return logout.NewHandler(testutil.NewSessionManager(t), auditlog.New(nil, logger, auditlog.Config{}), logger), logs
}

func TestServeLogout_RedirectsToHome(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, testutil.WithAdmin(httptest.NewRequest(http.MethodPost, "/admin/logout", nil)))

	if rec.Code != http.StatusSeeOther {
		t.Errorf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if location := rec.Header().Get("Location"); location != "/" {
		t.Errorf("Location: got %q, want %q", location, "/")
	}
}

func TestServeLogout_ClearsSessionCookie(t *testing.T) {
	handler, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, testutil.WithAdmin(httptest.NewRequest(http.MethodPost, "/admin/logout", nil)))

	found := false
	for _, c := range rec.Result().Cookies() {
		if c.Name == "test-session" {
			found = true
			if c.MaxAge != -1 {
				t.Errorf("cookie MaxAge: got %d, want -1 (delete)", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("expected session cookie to be set for deletion")
	}
}

func TestServeLogout_HTMX_ReturnsHXRedirect(t *testing.T) {
	handler, _ := newTestHandler(t)

	req := testutil.WithAdmin(httptest.NewRequest(http.MethodPost, "/admin/logout", nil))
	req.Header.Set("HX-Request", "true")
	rec := httptest.NewRecorder()
	handler.ServeLogout(rec, req)

	if hx := rec.Header().Get("HX-Redirect"); hx != "/" {
		t.Errorf("HX-Redirect: got %q, want %q", hx, "/")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status %d for HTMX, got %d", http.StatusOK, rec.Code)
	}
}

func TestServeLogout_Audited(t *testing.T) {
	handler, logs := newTestHandler(t)

	handler.ServeLogout(httptest.NewRecorder(), testutil.WithAdmin(httptest.NewRequest(http.MethodPost, "/admin/logout", nil)))

	entries := logs.FilterField(zap.String("event_type", "logout")).All()
	if len(entries) != 1 {
		t.Fatalf("logout audit entries = %d, want 1", len(entries))
	}
	if actor := entries[0].ContextMap()["actor"]; actor != "admin" {
		t.Errorf("actor = %v", actor)
	}
}

func TestRoutes_RequiresAdmin(t *testing.T) {
	handler, _ := newTestHandler(t)
	router := logout.Routes(handler, handler.SessionMgr)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept", "text/html")
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Errorf("status = %d, want redirect to sign-in", rec.Code)
	}
}
