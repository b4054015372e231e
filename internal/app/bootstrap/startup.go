// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/modconsole/internal/app/resources"
	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/ratelimit"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/telemetry"
	"github.com/dalemusser/modconsole/internal/app/system/timeouts"
	"github.com/dalemusser/modconsole/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Startup runs one-time application initialization after DB connections and
// schema setup are complete, but before the HTTP handler is built.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	resources.LoadSharedTemplates()

	if n := timeouts.ConfigureFromEnv(); n > 0 {
		logger.Info("timeouts overridden from env", zap.Int("count", n))
	}

	svc := deps.svc
	svc.shutdownTrace = telemetry.Setup(ctx, appCfg.OTelServiceName, logger)

	var prefs preferences.Repository = preferences.NewMemory()
	var sink auditlog.Sink
	if deps.MongoDatabase != nil {
		prefs = preferences.NewMongo(deps.MongoDatabase)
		svc.events = audit.New(deps.MongoDatabase)
		sink = svc.events
	}
	svc.audit = auditlog.New(sink, logger.Named("audit"), auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	svc.screens = screens.NewRegistry(prefs, logger)
	svc.sweeper = workers.NewScreenSweeper(svc.screens, logger, appCfg.ScreenSweepInterval, appCfg.ScreenIdleTimeout)
	svc.sweeper.Start()

	svc.limiter = ratelimit.NewOTPLimiter()
	limiterCtx, cancel := context.WithCancel(context.Background())
	svc.stopLimiter = cancel
	go svc.limiter.Run(limiterCtx)

	return nil
}
