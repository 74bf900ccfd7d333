// internal/app/bootstrap/config.go
package bootstrap

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dalemusser/retreatreg/internal/domain/models"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/gorilla/securecookie"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for the registration site.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, session_name, etc.
//   - Environment variables: RETREATREG_BACKEND_URL, RETREATREG_SESSION_NAME, etc.
//   - Command-line flags: --backend_url, --session_name, etc.
var appConfigKeys = []config.AppKey{
	// Backend
	{Name: "backend_url", Default: "", Desc: "Base URL of the registration backend (required)"},
	{Name: "backend_timeout", Default: "10s", Desc: "Per-call timeout for backend requests"},
	{Name: "backend_client_id", Default: "", Desc: "OAuth2 client ID for the backend (blank disables OAuth2)"},
	{Name: "backend_client_secret", Default: "", Desc: "OAuth2 client secret for the backend"},
	{Name: "backend_token_url", Default: "", Desc: "OAuth2 token endpoint for the backend"},

	// Session and CSRF
	{Name: "session_key", Default: "", Desc: "Session signing key (blank generates one per process)"},
	{Name: "session_name", Default: "retreatreg-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_ttl", Default: "24h", Desc: "Session cookie lifetime"},
	{Name: "csrf_key", Default: "", Desc: "32-byte CSRF key, base64 (blank generates one per process)"},

	// Administrator
	{Name: "admin_username", Default: "admin", Desc: "Admin sign-in name"},
	{Name: "admin_password_hash", Default: "", Desc: "bcrypt hash of the admin password (blank disables admin sign-in)"},

	// Audit database
	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for audit events (blank disables the audit store)"},
	{Name: "mongo_database", Default: "retreatreg", Desc: "MongoDB database name"},
	{Name: "audit_log_payments", Default: "all", Desc: "Registration/payment event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "viewstate_ttl", Default: "30m", Desc: "How long an idle tracker snapshot is kept"},

	// Payment plan
	{Name: "plan_total", Default: 2200, Desc: "Full plan price in KSH"},
	{Name: "installment_amounts", Default: "500,500,500,700", Desc: "Comma-separated installment amounts in KSH"},
	{Name: "till_number", Default: "4941686", Desc: "M-Pesa Buy Goods till number"},

	// Site text
	{Name: "event_name", Default: "", Desc: "Event name shown in the header"},
	{Name: "event_date", Default: "", Desc: "Event dates shown on the landing page"},
	{Name: "event_venue", Default: "", Desc: "Event venue shown on the landing page"},
	{Name: "event_summary", Default: "", Desc: "Short event description for the landing page"},
	{Name: "event_timezone", Default: "Africa/Nairobi", Desc: "IANA zone used to show admin timestamps"},
	{Name: "pickup_point", Default: "", Desc: "Transport pickup point"},
	{Name: "contact_phone", Default: "", Desc: "Organizer contact phone"},
	{Name: "contact_email", Default: "", Desc: "Organizer contact email"},
	{Name: "notice", Default: "", Desc: "Optional notice banner (sanitized HTML)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, RETREATREG_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "RETREATREG", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	amounts, err := parseAmounts(appValues.String("installment_amounts"))
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		BackendURL:          appValues.String("backend_url"),
		BackendTimeout:      appValues.Duration("backend_timeout", 10*time.Second),
		BackendClientID:     appValues.String("backend_client_id"),
		BackendClientSecret: appValues.String("backend_client_secret"),
		BackendTokenURL:     appValues.String("backend_token_url"),

		SessionKey:    appValues.String("session_key"),
		SessionName:   appValues.String("session_name"),
		SessionDomain: appValues.String("session_domain"),
		SessionTTL:    appValues.Duration("session_ttl", 24*time.Hour),
		CSRFKey:       appValues.String("csrf_key"),

		AdminUsername:     appValues.String("admin_username"),
		AdminPasswordHash: appValues.String("admin_password_hash"),

		MongoURI:      appValues.String("mongo_uri"),
		MongoDatabase: appValues.String("mongo_database"),

		AuditLogPayments: appValues.String("audit_log_payments"),
		AuditLogAdmin:    appValues.String("audit_log_admin"),

		ViewStateTTL: appValues.Duration("viewstate_ttl", 30*time.Minute),

		Plan: models.PlanConfig{
			Total:              models.Money(appValues.Int("plan_total")),
			InstallmentAmounts: amounts,
			TillNumber:         appValues.String("till_number"),
		},

		EventName:     appValues.String("event_name"),
		EventDate:     appValues.String("event_date"),
		EventVenue:    appValues.String("event_venue"),
		EventSummary:  appValues.String("event_summary"),
		EventTimezone: appValues.String("event_timezone"),
		PickupPoint:   appValues.String("pickup_point"),
		ContactPhone:  appValues.String("contact_phone"),
		ContactEmail:  appValues.String("contact_email"),
		NoticeHTML:    appValues.String("notice"),
	}

	// Dev convenience: random keys keep the site usable without config,
	// at the cost of signing everyone out on restart.
	if appCfg.SessionKey == "" {
		appCfg.SessionKey = base64.RawURLEncoding.EncodeToString(securecookie.GenerateRandomKey(48))
		logger.Warn("session_key not set; generated a per-process key")
	}
	if appCfg.CSRFKey == "" {
		appCfg.CSRFKey = base64.StdEncoding.EncodeToString(securecookie.GenerateRandomKey(32))
		logger.Warn("csrf_key not set; generated a per-process key")
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// The backend URL is required, the plan amounts must add up, and the
// optional MongoDB URI is checked before any connection is attempted.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	var errs []error

	if strings.TrimSpace(appCfg.BackendURL) == "" {
		errs = append(errs, errors.New("backend_url is required"))
	}
	if appCfg.BackendClientID != "" && appCfg.BackendTokenURL == "" {
		errs = append(errs, errors.New("backend_token_url is required when backend_client_id is set"))
	}
	if err := appCfg.Plan.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("invalid payment plan: %w", err))
	}
	if _, err := csrfKey(appCfg.CSRFKey); err != nil {
		errs = append(errs, err)
	}
	if _, err := time.LoadLocation(appCfg.EventTimezone); err != nil {
		errs = append(errs, fmt.Errorf("invalid event_timezone %q: %w", appCfg.EventTimezone, err))
	}
	if appCfg.MongoEnabled() {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			errs = append(errs, fmt.Errorf("invalid MongoDB URI: %w", err))
		}
	}
	if appCfg.AdminPasswordHash == "" {
		logger.Warn("admin_password_hash not set; admin sign-in is disabled")
	}

	return errors.Join(errs...)
}

// parseAmounts reads a comma-separated list of whole-shilling amounts.
func parseAmounts(s string) ([]models.Money, error) {
	var out []models.Money
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("installment_amounts: %q is not a whole number", part)
		}
		out = append(out, models.Money(n))
	}
	return out, nil
}

// csrfKey decodes the configured key. gorilla/csrf needs exactly 32 bytes.
func csrfKey(s string) ([]byte, error) {
	key, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("csrf_key must be base64: %w", err)
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("csrf_key must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}
