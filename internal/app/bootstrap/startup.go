// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"

	"github.com/dalemusser/waffle/config"
	"go.uber.org/zap"

	"github.com/localchambers/localchambers/internal/app/projection"
	listingstore "github.com/localchambers/localchambers/internal/app/store/listings"
)

// Projection state shared across lifecycle hooks. Startup decides the
// delivery mode, BuildHandler installs the write hook when needed, and
// Shutdown stops the watcher.
var (
	projector      *projection.Projector
	projWatcher    *projection.Watcher
	projectionMode string
)

// Startup wires the listing projection. In "auto" mode the change stream
// is tried first; deployments without one (standalone mongod) fall back
// to the in-process write hook.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	projector = projection.New(listingstore.New(deps.MongoDatabase), logger)

	if appCfg.ProjectionMode == "hook" {
		projectionMode = "hook"
		logger.Info("listing projection using write hook")
		return nil
	}

	watcher := projection.NewWatcher(deps.MongoDatabase.Collection("organizations"), projector, logger)
	if err := watcher.Start(); err != nil {
		if appCfg.ProjectionMode == "stream" {
			return err
		}
		logger.Warn("change stream unavailable, falling back to write hook", zap.Error(err))
		projectionMode = "hook"
		return nil
	}

	projWatcher = watcher
	projectionMode = "stream"
	logger.Info("listing projection using change stream")
	return nil
}
