// internal/app/features/login/handler.go
package login

import (
	"crypto/subtle"
	"net/http"

	uierrors "github.com/dalemusser/retreatreg/internal/app/features/errors"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/retreatreg/internal/app/system/authutil"
	"github.com/dalemusser/retreatreg/internal/app/system/formutil"
	"github.com/dalemusser/retreatreg/internal/app/system/normalize"
	"github.com/dalemusser/retreatreg/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
)

const msgBadCredentials = "Invalid username or password."

// Credentials is the single configured administrator.
type Credentials struct {
	Username     string
	PasswordHash string
}

type Handler struct {
	Log        *zap.Logger
	ErrLog     *uierrors.ErrorLogger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Limiter    *ratelimit.LoginLimiter
	Admin      Credentials
}

/*─────────────────────────────────────────────────────────────────────────────*
| Template-data                                                               |
*─────────────────────────────────────────────────────────────────────────────*/

type loginFormData struct {
	formutil.Base
	Username  string
	ReturnURL string
}

func NewHandler(
	sessionMgr *auth.SessionManager,
	admin Credentials,
	audit *auditlog.Logger,
	errLog *uierrors.ErrorLogger,
	logger *zap.Logger,
) *Handler {
	admin.Username = normalize.Username(admin.Username)
	return &Handler{
		Log:        logger,
		ErrLog:     errLog,
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Limiter:    ratelimit.NewLoginLimiter(),
		Admin:      admin,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/login                                                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if u, ok := auth.CurrentUser(r); ok && u.IsAdmin() {
		http.Redirect(w, r, urlutil.SafeReturn(query.Get(r, "return"), "", "/admin"), http.StatusSeeOther)
		return
	}
	h.render(w, r, "", query.Get(r, "return"), "")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/login                                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse login form", err, "We could not read your form. Please try again.", "/admin/login")
		return
	}
	username := normalize.Username(r.PostFormValue("username"))
	password := r.PostFormValue("password")
	ret := r.PostFormValue("return")

	if username == "" || password == "" {
		h.render(w, r, username, ret, "Please enter your username and password.")
		return
	}

	if allowed, reason := h.Limiter.Check(r, username); !allowed {
		h.Log.Warn("admin login rate limited", zap.String("username", username), zap.String("reason", reason))
		h.AuditLog.LoginRateLimited(r.Context(), r, username)
		w.WriteHeader(http.StatusTooManyRequests)
		h.render(w, r, username, ret, reason)
		return
	}

	if !h.valid(username, password) {
		h.Log.Info("admin login failed", zap.String("username", username))
		h.AuditLog.LoginFailed(r.Context(), r, username, "invalid credentials")
		h.render(w, r, username, ret, msgBadCredentials)
		return
	}

	if err := h.SessionMgr.SignIn(w, r, username); err != nil {
		h.Log.Error("save session failed", zap.Error(err), zap.String("username", username))
		h.render(w, r, username, ret, "Unable to create session. Please try again.")
		return
	}
	h.Limiter.ResetUser(username)
	h.AuditLog.LoginSuccess(r.Context(), r, username)

	http.Redirect(w, r, urlutil.SafeReturn(ret, "", "/admin"), http.StatusSeeOther)
}

// valid checks both fields and always pays for the bcrypt comparison, so a
// wrong username takes as long as a wrong password.
func (h *Handler) valid(username, password string) bool {
	if h.Admin.Username == "" || h.Admin.PasswordHash == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(h.Admin.Username)) == 1
	passOK := authutil.CheckPassword(password, h.Admin.PasswordHash)
	return userOK && passOK
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, username, ret, msg string) {
	data := loginFormData{Username: username, ReturnURL: ret}
	formutil.SetBase(&data.Base, r, "Admin sign in", "/")
	if msg != "" {
		data.SetError(msg)
	}
	templates.Render(w, r, "admin_login", data)
}
