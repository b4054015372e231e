package bootstrap

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/modconsole/internal/testutil"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeValues map[string]string

func (f fakeValues) String(key string) string { return f[key] }

func (f fakeValues) Duration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(f[key]); err == nil {
		return d
	}
	return def
}

func validConfig() AppConfig {
	return AppConfig{
		BackendURL:          "https://api.example.com/api",
		BackendTimeout:      15 * time.Second,
		SessionKey:          "a-strong-production-secret-0123456789",
		SessionName:         "modconsole-session",
		SessionMaxAge:       12 * time.Hour,
		ScreenIdleTimeout:   30 * time.Minute,
		ScreenSweepInterval: 5 * time.Minute,
		AuditLogAuth:        "all",
		AuditLogAdmin:       "log",
		OTelServiceName:     "modconsole",
	}
}

func TestAppConfigFrom(t *testing.T) {
	cfg := appConfigFrom(fakeValues{
		"backend_url":         "https://api.example.com/api",
		"backend_timeout":     "3s",
		"admin_role_ids":      " 1, 7 ,,",
		"mongo_database":      "console",
		"screen_idle_timeout": "bogus",
		"audit_log_auth":      "db",
	})

	if cfg.BackendTimeout != 3*time.Second {
		t.Errorf("BackendTimeout = %v", cfg.BackendTimeout)
	}
	if strings.Join(cfg.AdminRoleIDs, ",") != "1,7" {
		t.Errorf("AdminRoleIDs = %v", cfg.AdminRoleIDs)
	}
	if cfg.ScreenIdleTimeout != 30*time.Minute {
		t.Errorf("ScreenIdleTimeout = %v, want default", cfg.ScreenIdleTimeout)
	}
	if cfg.SessionMaxAge != 12*time.Hour || cfg.ScreenSweepInterval != 5*time.Minute {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.AuditLogAuth != "db" || cfg.MongoDatabase != "console" {
		t.Errorf("strings not copied: %+v", cfg)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		mutate  func(*AppConfig)
		wantErr string
	}{
		{name: "valid", mutate: func(*AppConfig) {}},
		{name: "valid with mongo", mutate: func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
			c.MongoDatabase = "modconsole"
		}},
		{name: "missing backend", mutate: func(c *AppConfig) { c.BackendURL = "" }, wantErr: "backend_url is required"},
		{name: "relative backend", mutate: func(c *AppConfig) { c.BackendURL = "/api" }, wantErr: "invalid backend_url"},
		{name: "ftp backend", mutate: func(c *AppConfig) { c.BackendURL = "ftp://api.example.com" }, wantErr: "invalid backend_url"},
		{name: "bad mongo uri", mutate: func(c *AppConfig) { c.MongoURI = "postgres://x" }, wantErr: "invalid MongoDB URI"},
		{name: "mongo without database", mutate: func(c *AppConfig) {
			c.MongoURI = "mongodb://localhost:27017"
		}, wantErr: "mongo_database is required"},
		{name: "dev key in prod", env: "prod", mutate: func(c *AppConfig) { c.SessionKey = devSessionKey }, wantErr: "development default"},
		{name: "dev key in dev", env: "dev", mutate: func(c *AppConfig) { c.SessionKey = devSessionKey }},
		{name: "bad audit mode", mutate: func(c *AppConfig) { c.AuditLogAdmin = "sometimes" }, wantErr: "audit_log_admin"},
		{name: "zero idle", mutate: func(c *AppConfig) { c.ScreenIdleTimeout = 0 }, wantErr: "must be positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(&cfg)
			err := ValidateConfig(&config.CoreConfig{Env: tt.env}, cfg, zap.NewNop())
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestConnectDB_WithoutMongo(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	deps, err := ConnectDB(context.Background(), &config.CoreConfig{}, validConfig(), zap.New(core))
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if deps.MongoClient != nil || deps.MongoDatabase != nil {
		t.Error("Mongo connected without a URI")
	}
	if deps.Backend == nil || deps.Backend.BaseURL() != "https://api.example.com/api" {
		t.Errorf("Backend = %v", deps.Backend)
	}
	ready := logs.FilterMessage("backend client ready").All()
	if len(ready) != 1 || ready[0].ContextMap()["base_url"] != "https://api.example.com/api" {
		t.Errorf("startup log = %+v, want the backend base URL", ready)
	}
}

func TestStartupShutdown_WithoutMongo(t *testing.T) {
	ctx := context.Background()
	cfg := validConfig()
	deps, err := ConnectDB(ctx, &config.CoreConfig{}, cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("ConnectDB: %v", err)
	}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	if err := Startup(ctx, &config.CoreConfig{}, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Startup: %v", err)
	}

	svc := deps.svc
	if svc.screens == nil || svc.audit == nil || svc.limiter == nil || svc.sweeper == nil {
		t.Fatalf("services not built: %+v", svc)
	}
	if svc.events != nil {
		t.Error("audit store built without Mongo")
	}

	if err := Shutdown(ctx, &config.CoreConfig{}, cfg, deps, zap.NewNop()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}

func TestEnsureSchema_CreatesIndexes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	deps := DBDeps{MongoDatabase: db, svc: &services{}}
	if err := EnsureSchema(ctx, &config.CoreConfig{}, validConfig(), deps, zap.NewNop()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}

	for _, coll := range []string{"ui_preferences", "audit_events"} {
		cur, err := db.Collection(coll).Indexes().List(ctx)
		if err != nil {
			t.Fatalf("list %s indexes: %v", coll, err)
		}
		var idx []map[string]any
		if err := cur.All(ctx, &idx); err != nil {
			t.Fatalf("decode %s indexes: %v", coll, err)
		}
		if len(idx) < 2 {
			t.Errorf("%s has %d indexes, want more than _id", coll, len(idx))
		}
	}
}
