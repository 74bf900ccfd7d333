// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"
	"time"

	adminfeature "github.com/dalemusser/retreatreg/internal/app/features/admin"
	auditlogfeature "github.com/dalemusser/retreatreg/internal/app/features/auditlog"
	contactfeature "github.com/dalemusser/retreatreg/internal/app/features/contact"
	errorsfeature "github.com/dalemusser/retreatreg/internal/app/features/errors"
	healthfeature "github.com/dalemusser/retreatreg/internal/app/features/health"
	homefeature "github.com/dalemusser/retreatreg/internal/app/features/home"
	installmentsfeature "github.com/dalemusser/retreatreg/internal/app/features/installments"
	loginfeature "github.com/dalemusser/retreatreg/internal/app/features/login"
	logoutfeature "github.com/dalemusser/retreatreg/internal/app/features/logout"
	registerfeature "github.com/dalemusser/retreatreg/internal/app/features/register"
	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/auditlog"
	"github.com/dalemusser/retreatreg/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/dalemusser/waffle/pantry/fileserver"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/gorilla/csrf"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, backend connections, schema setup,
// and the Startup hook have completed. It boots the template engine,
// applies the session and CSRF middleware, and mounts the public pages
// (home, registration, installment tracker) and the admin area.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, appCfg.SessionTTL, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Dev mode enables template reloading for faster iteration.
	eng := templates.New(coreCfg.Env == "dev")
	if err := eng.Boot(logger); err != nil {
		logger.Error("template engine boot failed", zap.Error(err))
		return nil, err
	}
	templates.UseEngine(eng, logger)

	csrfMW, err := csrfMiddleware(appCfg, secure)
	if err != nil {
		return nil, err
	}

	loc, err := time.LoadLocation(appCfg.EventTimezone)
	if err != nil {
		logger.Warn("unknown event timezone; using UTC", zap.String("tz", appCfg.EventTimezone), zap.Error(err))
		loc = time.UTC
	}

	var events *audit.Store
	if deps.MongoDatabase != nil {
		events = audit.New(deps.MongoDatabase)
	}
	auditLog := auditlog.New(events, logger, auditlog.Config{
		Payments: appCfg.AuditLogPayments,
		Admin:    appCfg.AuditLogAdmin,
	})
	errLog := errorsfeature.NewErrorLogger(logger)
	plan := appCfg.Plan

	r := chi.NewRouter()

	// Set before mounting so every subrouter inherits it.
	errorsHandler := errorsfeature.NewHandler()
	r.NotFound(errorsHandler.NotFound)

	// Health, metrics and static assets sit outside the session and CSRF layers.
	healthHandler := healthfeature.NewHandler(deps.Backend, deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))
	if deps.Registry != nil {
		r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}
	r.Handle("/static/*", fileserver.Handler("/static", "public"))

	r.Group(func(r chi.Router) {
		r.Use(csrfMW)
		// Loads the admin into context, if signed in.
		r.Use(sessionMgr.LoadSessionUser)

		homeHandler := homefeature.NewHandler(sessionMgr, homefeature.Event{
			Date:    appCfg.EventDate,
			Venue:   appCfg.EventVenue,
			Summary: appCfg.EventSummary,
		}, plan, logger)
		r.Mount("/", homefeature.Routes(homeHandler))

		contactHandler := contactfeature.NewHandler(sessionMgr, logger)
		r.Mount("/contact", contactfeature.Routes(contactHandler))

		registerHandler := registerfeature.NewHandler(deps.Backend, sessionMgr, auditLog, plan, errLog, logger)
		r.Mount("/register", registerfeature.Routes(registerHandler))

		installmentsHandler := installmentsfeature.NewHandler(deps.Backend, sessionMgr, deps.Views, auditLog, plan, errLog, logger)
		r.Mount("/installments", installmentsfeature.Routes(installmentsHandler))

		// Admin sign-in
		loginHandler := loginfeature.NewHandler(sessionMgr, loginfeature.Credentials{
			Username:     appCfg.AdminUsername,
			PasswordHash: appCfg.AdminPasswordHash,
		}, auditLog, errLog, logger)
		r.Mount("/admin/login", loginfeature.Routes(loginHandler))

		logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
		r.Mount("/admin/logout", logoutfeature.Routes(logoutHandler, sessionMgr))

		// Admin review
		activityHandler := auditlogfeature.NewHandler(events, loc, errLog, logger)
		r.Mount("/admin/activity", auditlogfeature.Routes(activityHandler, sessionMgr))

		adminHandler := adminfeature.NewHandler(deps.Backend, sessionMgr, auditLog, events, plan, loc, errLog, logger)
		r.Mount("/admin", adminfeature.Routes(adminHandler, sessionMgr))

		r.Get("/forbidden", errorsHandler.Forbidden)
	})

	return r, nil
}

// csrfMiddleware protects every form post. Outside production the site is
// served over plain HTTP, which gorilla/csrf must be told about.
func csrfMiddleware(appCfg AppConfig, secure bool) (func(http.Handler) http.Handler, error) {
	key, err := csrfKey(appCfg.CSRFKey)
	if err != nil {
		return nil, err
	}
	protect := csrf.Protect(key,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			errorsfeature.RenderPage(w, r, http.StatusForbidden, "Form expired",
				"Your form has expired. Please go back, reload the page and try again.", "/")
		})),
	)
	if secure {
		return protect, nil
	}
	return func(next http.Handler) http.Handler {
		h := protect(next)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}, nil
}
