// internal/app/bootstrap/shutdown.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"
)

// Shutdown stops background workers, flushes traces, and disconnects
// MongoDB.
func Shutdown(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if svc := deps.svc; svc != nil {
		if svc.sweeper != nil {
			svc.sweeper.Stop()
		}
		if svc.stopLimiter != nil {
			svc.stopLimiter()
		}
		if svc.shutdownTrace != nil {
			if err := svc.shutdownTrace(ctx); err != nil {
				logger.Warn("trace shutdown failed", zap.Error(err))
			}
		}
	}
	if deps.MongoClient != nil {
		logger.Info("disconnecting MongoDB client")
		if err := deps.MongoClient.Disconnect(ctx); err != nil {
			logger.Error("MongoDB disconnect failed", zap.Error(err))
			return err
		}
	}
	return nil
}
