// Package auth owns the session cookie: admin sign-in state plus the
// visitor state the registration and tracker pages keep between requests.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| Session keys                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

const (
	isAuthKey    = "is_authenticated"
	adminNameKey = "admin_name"
	signedInKey  = "signed_in_at"

	// RoleAdmin is the only role the site knows.
	RoleAdmin = "admin"

	adminLoginPath = "/admin/login"
)

/*─────────────────────────────────────────────────────────────────────────────*
| SessionManager                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionManager wraps the cookie store and the middleware built on it.
type SessionManager struct {
	store *sessions.CookieStore
	name  string
	log   *zap.Logger
}

// NewSessionManager builds the cookie store. ttl sets the cookie MaxAge
// (zero means a browser-session cookie). The secure flag controls the
// Secure attribute and SameSite mode: None over HTTPS, Lax for local
// http://localhost development.
func NewSessionManager(sessionKey, name, domain string, ttl time.Duration, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}
	if name == "" {
		name = "retreatreg-session"
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	opts := &sessions.Options{
		Domain:   domain,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Secure:   secure,
		HttpOnly: true,
	}
	if secure {
		opts.SameSite = http.SameSiteNoneMode
	} else {
		opts.SameSite = http.SameSiteLaxMode
	}
	store.Options = opts

	logger.Info("session store initialized",
		zap.String("name", name),
		zap.Bool("secure", secure),
		zap.String("domain", domain),
		zap.Duration("ttl", ttl))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying cookie store.
func (sm *SessionManager) Store() *sessions.CookieStore { return sm.store }

// Name returns the cookie name.
func (sm *SessionManager) Name() string { return sm.name }

// GetSession returns the request's session. On a decode error (rotated
// key, tampered cookie) it still returns a fresh usable session together
// with the error.
func (sm *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return sm.store.Get(r, sm.name)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the signed-in administrator, injected into r.Context().
type SessionUser struct {
	Name       string
	Role       string
	SignedInAt time.Time
}

// IsAdmin reports whether u holds the admin role.
func (u *SessionUser) IsAdmin() bool {
	return u != nil && strings.EqualFold(u.Role, RoleAdmin)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser puts u into r's context the way LoadSessionUser does.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

// SignIn marks the session as an authenticated administrator.
func (sm *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, username string) error {
	sess, err := sm.GetSession(r)
	if err != nil {
		sm.log.Debug("replacing undecodable session on sign-in", zap.Error(err))
	}
	sess.Values[isAuthKey] = true
	sess.Values[adminNameKey] = username
	sess.Values[signedInKey] = time.Now().Unix()
	return sess.Save(r, w)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// LoadSessionUser injects the administrator into context if signed in.
func (sm *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := sm.GetSession(r)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}
		if isAuth, _ := sess.Values[isAuthKey].(bool); isAuth {
			u := &SessionUser{
				Name: getString(sess, adminNameKey),
				Role: RoleAdmin,
			}
			if ts, ok := sess.Values[signedInKey].(int64); ok {
				u.SignedInAt = time.Unix(ts, 0)
			}
			r = withUser(r, u)
		}
		next.ServeHTTP(w, r)
	})
}

// RequireAdmin ensures an administrator is in context (set by
// LoadSessionUser). If not:
//   - HTMX: sends HX-Redirect to /admin/login?return=...
//   - HTML: 303 redirect to /admin/login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (sm *SessionManager) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := CurrentUser(r); ok && u.IsAdmin() {
			next.ServeHTTP(w, r)
			return
		}

		dest := adminLoginPath + "?return=" + url.QueryEscape(currentURI(r))

		if r.Header.Get("HX-Request") == "true" {
			w.Header().Set("HX-Redirect", dest)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if wantsHTML(r) {
			http.Redirect(w, r, dest, http.StatusSeeOther)
			return
		}
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

// getString safely extracts a string from a session value.
func getString(s *sessions.Session, key string) string {
	if v, ok := s.Values[key].(string); ok {
		return v
	}
	return ""
}

func wantsHTML(r *http.Request) bool {
	if r.Header.Get("HX-Request") == "true" {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

func currentURI(r *http.Request) string {
	u := *r.URL
	return u.RequestURI()
}
