// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/system/auditlog"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/modconsole/internal/app/system/ratelimit"
	"github.com/dalemusser/modconsole/internal/app/system/screens"
	"github.com/dalemusser/modconsole/internal/app/system/telemetry"
	"github.com/dalemusser/modconsole/internal/app/system/workers"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds database/back-end dependencies for the app.
type DBDeps struct {
	// Mongo is optional; both are nil when mongo_uri is blank.
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	// Backend is the REST API client, without a token.
	Backend *backend.Client

	// Services created in Startup. Hooks receive DBDeps by value, so they
	// share this pointer.
	svc *services
}

// services holds the in-process components built during Startup.
type services struct {
	screens *screens.Registry
	events  *audit.Store // nil without Mongo
	audit   *auditlog.Logger
	limiter *ratelimit.OTPLimiter

	sweeper       *workers.ScreenSweeper
	stopLimiter   context.CancelFunc
	shutdownTrace telemetry.Shutdown
}
