// internal/app/bootstrap/db.go
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/dalemusser/retreatreg/internal/app/store/audit"
	"github.com/dalemusser/retreatreg/internal/app/system/backend"
	"github.com/dalemusser/retreatreg/internal/app/system/timeouts"
	"github.com/dalemusser/retreatreg/internal/app/system/viewstate"
	"github.com/dalemusser/retreatreg/internal/app/system/workers"
	"github.com/dalemusser/waffle/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

const sweepInterval = time.Minute

// ConnectDB builds the backend client and, when configured, connects to
// the audit database. Member data lives only in the backend.
func ConnectDB(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) (DBDeps, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	client, err := backend.New(backend.Config{
		BaseURL:      appCfg.BackendURL,
		Timeout:      appCfg.BackendTimeout,
		ClientID:     appCfg.BackendClientID,
		ClientSecret: appCfg.BackendClientSecret,
		TokenURL:     appCfg.BackendTokenURL,
	}, backend.NewMetrics(reg), logger)
	if err != nil {
		return DBDeps{}, fmt.Errorf("backend client: %w", err)
	}
	timeouts.Configure(timeouts.Config{Backend: appCfg.BackendTimeout})

	views := viewstate.New()
	deps := DBDeps{
		Backend:  client,
		Registry: reg,
		Views:    views,
		Sweeper:  workers.NewViewStateSweeper(views, logger, sweepInterval, appCfg.ViewStateTTL),
	}

	if !appCfg.MongoEnabled() {
		logger.Info("no mongo_uri configured; audit events go to the log only")
		return deps, nil
	}

	cctx, cancel := context.WithTimeout(ctx, timeouts.Medium())
	defer cancel()
	mc, err := mongo.Connect(cctx, options.Client().ApplyURI(appCfg.MongoURI))
	if err != nil {
		return DBDeps{}, fmt.Errorf("mongo connect: %w", err)
	}
	if err := mc.Ping(cctx, nil); err != nil {
		_ = mc.Disconnect(context.Background())
		return DBDeps{}, fmt.Errorf("mongo ping: %w", err)
	}
	logger.Info("connected to MongoDB", zap.String("database", appCfg.MongoDatabase))

	deps.MongoClient = mc
	deps.MongoDatabase = mc.Database(appCfg.MongoDatabase)
	return deps, nil
}

// EnsureSchema creates the audit indexes when the audit database is on.
func EnsureSchema(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	if deps.MongoDatabase == nil {
		return nil
	}
	if err := audit.New(deps.MongoDatabase).EnsureIndexes(ctx); err != nil {
		logger.Error("audit index setup failed", zap.Error(err))
		return err
	}
	return nil
}
