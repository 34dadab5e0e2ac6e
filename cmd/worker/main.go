package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"webwatch/internal/infra/db"
	"webwatch/internal/infra/pipeline"
	workerPkg "webwatch/internal/infra/worker"
	"webwatch/internal/observability/logging"
	"webwatch/internal/observability/tracing"
)

func main() {
	logger := initLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup("webwatch-worker", 1)
	defer func() { _ = shutdownTracing(context.Background()) }()

	// fail-open: invalid values fall back to defaults inside the loader
	workerMetrics := workerPkg.NewWorkerMetrics()
	cfg := workerPkg.LoadConfigFromEnv(logger, workerMetrics)
	if err := cfg.Validate(); err != nil {
		logger.Error("invalid worker configuration", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker configuration loaded",
		slog.String("cron_schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Duration("batch_timeout", cfg.BatchTimeout),
		slog.Int("health_port", cfg.HealthPort),
		slog.Int("metrics_port", cfg.MetricsPort))

	stores := initStores(ctx, logger)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	p := pipeline.Build(stores, pipeline.Options{}, logger)

	if err := run(ctx, logger, cfg, workerMetrics, stores, p); err != nil {
		logger.Error("worker stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("worker stopped")
}

// initLogger builds the JSON logger and installs it as the default.
func initLogger() *slog.Logger {
	logger := logging.NewLogger()
	slog.SetDefault(logger)
	return logger
}

// initStores connects to the configured backend, retrying while it comes up.
func initStores(ctx context.Context, logger *slog.Logger) *db.Stores {
	storageCfg := db.LoadStorageConfigFromEnv(logger)
	var lastErr error
	for attempt := 1; attempt <= 10; attempt++ {
		stores, err := db.OpenStores(ctx, storageCfg, logger)
		if err == nil {
			logger.Info("storage ready", slog.String("driver", stores.Driver))
			return stores
		}
		lastErr = err
		logger.Info("waiting for storage, retrying in 3s",
			slog.Int("attempt", attempt),
			slog.Any("error", err))
		select {
		case <-ctx.Done():
			logger.Error("interrupted while waiting for storage")
			os.Exit(1)
		case <-time.After(3 * time.Second):
		}
	}
	logger.Error("storage did not become available", slog.Any("error", lastErr))
	os.Exit(1)
	return nil
}

// run starts the cron loop and the health and metrics listeners, and blocks
// until ctx is cancelled. Cancellation also aborts a running batch, which
// is waited for before returning.
func run(
	ctx context.Context,
	logger *slog.Logger,
	cfg workerPkg.WorkerConfig,
	metrics *workerPkg.WorkerMetrics,
	stores *db.Stores,
	p *pipeline.Pipeline,
) error {
	job := workerPkg.NewBatchJob(ctx, p.Scheduler, cfg.BatchTimeout, metrics, logger)
	c, err := workerPkg.NewCron(cfg, job, logger)
	if err != nil {
		return fmt.Errorf("schedule batch: %w", err)
	}

	health := workerPkg.NewHealthServer(fmt.Sprintf(":%d", cfg.HealthPort), logger)
	health.Check = stores.Ping
	metricsSrv := workerPkg.NewMetricsServer(fmt.Sprintf(":%d", cfg.MetricsPort))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return health.Start(gctx) })
	g.Go(func() error { return workerPkg.Serve(gctx, metricsSrv, logger) })
	g.Go(func() error {
		c.Start()
		health.SetReady(true)
		logger.Info("worker started",
			slog.String("schedule", cfg.CronSchedule),
			slog.String("timezone", cfg.Timezone))

		<-gctx.Done()
		health.SetReady(false)
		logger.Info("stopping scheduler")
		<-c.Stop().Done()
		return nil
	})
	return g.Wait()
}
