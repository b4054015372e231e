// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/authz"
	"github.com/dalemusser/modconsole/internal/app/system/inputval"
	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// devSessionKey is the default session secret. ValidateConfig refuses it
// outside dev.
const devSessionKey = "dev-only-change-me-please-0123456789ABCDEF"

// appConfigKeys defines the configuration keys for the console.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: backend_url, mongo_uri, etc.
//   - Environment variables: MODCONSOLE_BACKEND_URL, MODCONSOLE_MONGO_URI, etc.
//   - Command-line flags: --backend_url, --mongo_uri, etc.
var appConfigKeys = []config.AppKey{
	{Name: "backend_url", Default: "", Desc: "Base URL of the REST API (e.g. https://api.example.com/api)"},
	{Name: "backend_timeout", Default: "15s", Desc: "Timeout for each backend JSON call"},
	{Name: "admin_role_ids", Default: "", Desc: "Comma-separated role ids treated as administrators"},

	{Name: "mongo_uri", Default: "", Desc: "MongoDB URI for preferences and audit events (blank keeps them in memory/log)"},
	{Name: "mongo_database", Default: "modconsole", Desc: "MongoDB database name"},

	{Name: "session_key", Default: devSessionKey, Desc: "Session signing key (must be strong in production)"},
	{Name: "session_name", Default: "modconsole-session", Desc: "Session cookie name"},
	{Name: "session_domain", Default: "", Desc: "Session cookie domain (blank means current host)"},
	{Name: "session_max_age", Default: "12h", Desc: "Session cookie lifetime"},

	{Name: "screen_idle_timeout", Default: "30m", Desc: "Evict a session's screen state after this much inactivity"},
	{Name: "screen_sweep_interval", Default: "5m", Desc: "How often idle screen state is swept"},

	// Audit logging settings
	{Name: "audit_log_auth", Default: "all", Desc: "Auth event logging: 'all' (db+log), 'db', 'log', or 'off'"},
	{Name: "audit_log_admin", Default: "all", Desc: "Admin event logging: 'all' (db+log), 'db', 'log', or 'off'"},

	{Name: "otel_service_name", Default: "modconsole", Desc: "service.name reported with traces"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, MODCONSOLE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "MODCONSOLE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}
	return coreCfg, appConfigFrom(appValues), nil
}

// valueSource is the subset of WAFFLE's loaded values LoadConfig reads.
type valueSource interface {
	String(key string) string
	Duration(key string, def time.Duration) time.Duration
}

func appConfigFrom(v valueSource) AppConfig {
	return AppConfig{
		BackendURL:     v.String("backend_url"),
		BackendTimeout: v.Duration("backend_timeout", 15*time.Second),
		AdminRoleIDs:   authz.ParseRoleIDs(v.String("admin_role_ids")),

		MongoURI:      v.String("mongo_uri"),
		MongoDatabase: v.String("mongo_database"),

		SessionKey:    v.String("session_key"),
		SessionName:   v.String("session_name"),
		SessionDomain: v.String("session_domain"),
		SessionMaxAge: v.Duration("session_max_age", 12*time.Hour),

		ScreenIdleTimeout:   v.Duration("screen_idle_timeout", 30*time.Minute),
		ScreenSweepInterval: v.Duration("screen_sweep_interval", 5*time.Minute),

		AuditLogAuth:  v.String("audit_log_auth"),
		AuditLogAdmin: v.String("audit_log_admin"),

		OTelServiceName: v.String("otel_service_name"),
	}
}

// ValidateConfig performs app-specific config validation.
//
// The backend URL is required and must be an absolute http(s) URL. A Mongo
// URI is optional but must parse when given.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if appCfg.BackendURL == "" {
		return fmt.Errorf("backend_url is required (set MODCONSOLE_BACKEND_URL)")
	}
	if !inputval.IsValidHTTPURL(appCfg.BackendURL) {
		logger.Error("invalid backend URL", zap.String("backend_url", appCfg.BackendURL))
		return fmt.Errorf("invalid backend_url %q: must be an absolute http or https URL", appCfg.BackendURL)
	}

	if appCfg.MongoURI != "" {
		if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
			logger.Error("invalid MongoDB URI", zap.Error(err))
			return fmt.Errorf("invalid MongoDB URI: %w", err)
		}
		if appCfg.MongoDatabase == "" {
			return fmt.Errorf("mongo_database is required when mongo_uri is set")
		}
	}

	if appCfg.SessionKey == "" {
		return fmt.Errorf("session_key is required")
	}
	if coreCfg != nil && coreCfg.Env == "prod" && appCfg.SessionKey == devSessionKey {
		return fmt.Errorf("session_key must be changed from the development default in prod")
	}

	for name, mode := range map[string]string{
		"audit_log_auth":  appCfg.AuditLogAuth,
		"audit_log_admin": appCfg.AuditLogAdmin,
	} {
		if !auditlog.ValidMode(mode) {
			return fmt.Errorf("%s must be one of all, db, log, off (got %q)", name, mode)
		}
	}

	if appCfg.ScreenIdleTimeout <= 0 || appCfg.ScreenSweepInterval <= 0 {
		return fmt.Errorf("screen_idle_timeout and screen_sweep_interval must be positive")
	}
	return nil
}
