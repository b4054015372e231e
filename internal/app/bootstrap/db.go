// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/modconsole/internal/app/store/audit"
	"github.com/dalemusser/modconsole/internal/app/store/preferences"
	"github.com/dalemusser/modconsole/internal/app/system/backend"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const mongoConnectTimeout = 10 * time.Second

// ConnectDB builds the backend client and, when mongo_uri is set, connects
// to MongoDB.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	be, err := backend.New(appCfg.BackendURL,
		backend.WithLogger(logger.Named("backend")),
		backend.WithTimeout(appCfg.BackendTimeout),
	)
	if err != nil {
		return DBDeps{}, err
	}
	deps := DBDeps{Backend: be, svc: &services{}}
	logger.Info("backend client ready", zap.String("base_url", be.BaseURL()))

	if appCfg.MongoURI == "" {
		logger.Info("mongo_uri not set; preferences kept in memory and audit events logged only")
		return deps, nil
	}

	cctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("connect MongoDB: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("ping MongoDB: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps.MongoClient = client
	deps.MongoDatabase = client.Database(appCfg.MongoDatabase)
	return deps, nil
}

// EnsureSchema creates the preferences and audit indexes.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := preferences.NewMongo(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("preferences indexes: %w", err)
	}
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("audit indexes: %w", err)
	}
	logger.Info("indexes ensured")
	return nil
}
