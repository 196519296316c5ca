// internal/app/bootstrap/startup.go
package bootstrap

import (
	"context"
	"time"

	"github.com/dalemusser/stratawell/internal/app/analytics"
	apistatsstore "github.com/dalemusser/stratawell/internal/app/store/apistats"
	checkinstore "github.com/dalemusser/stratawell/internal/app/store/checkins"
	ledgerstore "github.com/dalemusser/stratawell/internal/app/store/ledger"
	profilestore "github.com/dalemusser/stratawell/internal/app/store/profiles"
	snapshotstore "github.com/dalemusser/stratawell/internal/app/store/snapshots"
	"github.com/dalemusser/stratawell/internal/app/system/apistats"
	"github.com/dalemusser/stratawell/internal/app/system/ledger"
	"github.com/dalemusser/stratawell/internal/app/system/seeding"
	"github.com/dalemusser/stratawell/internal/app/system/tasks"
	"github.com/dalemusser/stratawell/internal/app/system/timeouts"
	"github.com/dalemusser/stratawell/internal/app/system/timezones"
	"github.com/dalemusser/waffle/config"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Process-wide services created in Startup, used by BuildHandler and
// drained in Shutdown.
var (
	taskRunner       *tasks.Runner
	apiStatsRecorder *apistats.Recorder
	apiLedger        *ledger.Ledger
)

// Startup runs once after DB connections and schema/index setup are complete,
// but before the HTTP handler is built and requests are served.
//
// Returning a non-nil error aborts startup.
func Startup(ctx context.Context, coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) error {
	db := deps.MongoDatabase

	if err := timezones.Load(); err != nil {
		logger.Warn("some curated time zones are unavailable", zap.Error(err))
	}
	timeouts.Configure(timeouts.Config{Long: appCfg.RequestTimeout})

	if appCfg.SeedDemoUser != "" {
		today := time.Now().In(appCfg.Location())
		if err := seeding.SeedDemo(ctx, db, appCfg.SeedDemoUser, today, logger); err != nil {
			logger.Error("failed to seed demo user", zap.Error(err))
			return err
		}
	}

	apiStatsRecorder = apistats.NewRecorder(apistatsstore.New(db), logger, appCfg.APIStatsBucket)

	ledgerCfg := ledger.DefaultConfig(ledgerstore.New(db), logger)
	ledgerCfg.OnlyErrors = appCfg.LedgerOnlyErrors
	apiLedger = ledger.New(ledgerCfg)

	startTaskRunner(db, appCfg, logger)
	return nil
}

// startTaskRunner registers the background jobs and starts them.
func startTaskRunner(db *mongo.Database, appCfg AppConfig, logger *zap.Logger) {
	taskRunner = tasks.New(logger)

	if appCfg.SnapshotInterval > 0 {
		taskRunner.Register(tasks.InsightSnapshotJob(&tasks.Snapshotter{
			Checkins:        checkinstore.New(db),
			Profiles:        profilestore.New(db),
			Snapshots:       snapshotstore.New(db),
			Logger:          logger,
			Range:           analytics.DefaultRange,
			Window:          appCfg.TrendWindow,
			DefaultLocation: appCfg.Location(),
		}, appCfg.SnapshotInterval))
	} else {
		logger.Info("insight snapshots disabled (snapshot_interval is 0)")
	}

	taskRunner.Register(tasks.LedgerRetentionJob(ledgerstore.New(db), appCfg.LedgerRetention, logger))
	taskRunner.Register(tasks.APIStatsRetentionJob(apistatsstore.New(db), appCfg.APIStatsRetention, logger))

	taskRunner.Start()
}
