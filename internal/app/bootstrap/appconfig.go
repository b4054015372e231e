// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// These values come from environment variables (MODCONSOLE_*), config files,
// or command-line flags (loaded in LoadConfig). WAFFLE's CoreConfig covers
// the framework-level settings: ports, TLS, logging, body limits.
type AppConfig struct {
	// Remote REST API the console administers.
	BackendURL     string        // API root, e.g. https://api.example.com/api
	BackendTimeout time.Duration // per-call bound for JSON requests

	// Role ids that count as administrators in addition to the built-in
	// admin role names.
	AdminRoleIDs []string

	// MongoDB holds UI preferences and audit events. Blank MongoURI keeps
	// preferences in memory and sends audit events to the log only.
	MongoURI      string
	MongoDatabase string

	// Session management configuration
	SessionKey    string // Secret the cookie and CSRF keys are derived from
	SessionName   string // Cookie name for sessions (default: modconsole-session)
	SessionDomain string // Cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Per-session screen state
	ScreenIdleTimeout   time.Duration // evict screen state unused this long
	ScreenSweepInterval time.Duration // how often the sweeper runs

	// Audit logging modes: all, db, log, off
	AuditLogAuth  string
	AuditLogAdmin string

	// Tracing
	OTelServiceName string
}
