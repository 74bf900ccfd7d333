// internal/app/bootstrap/appconfig.go
package bootstrap

import (
	"time"

	"github.com/dalemusser/retreatreg/internal/domain/models"
)

// AppConfig holds service-specific configuration for this app.
// These values come from environment variables, config files, or
// command-line flags (loaded in LoadConfig), and are passed to every
// lifecycle hook alongside the WAFFLE core config.
type AppConfig struct {
	// Backend REST service holding the registrations
	BackendURL          string
	BackendTimeout      time.Duration
	BackendClientID     string
	BackendClientSecret string
	BackendTokenURL     string

	// Session and CSRF
	SessionKey    string
	SessionName   string
	SessionDomain string
	SessionTTL    time.Duration
	CSRFKey       string

	// Single administrator
	AdminUsername     string
	AdminPasswordHash string

	// Optional MongoDB for audit events; blank URI disables it
	MongoURI      string
	MongoDatabase string

	// Audit logging: "all", "db", "log", or "off"
	AuditLogPayments string
	AuditLogAdmin    string

	// Per-view snapshots idle longer than this are dropped
	ViewStateTTL time.Duration

	// Payment plan
	Plan models.PlanConfig

	// Site text
	EventName     string
	EventDate     string
	EventVenue    string
	EventSummary  string
	EventTimezone string
	PickupPoint   string
	ContactPhone  string
	ContactEmail  string
	NoticeHTML    string
}

// MongoEnabled reports whether an audit database is configured.
func (c AppConfig) MongoEnabled() bool {
	return c.MongoURI != ""
}
