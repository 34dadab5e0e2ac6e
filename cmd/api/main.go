package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	hhttp "webwatch/internal/handler/http"
	hproject "webwatch/internal/handler/http/project"
	hrecord "webwatch/internal/handler/http/record"
	"webwatch/internal/handler/http/requestid"
	hsrc "webwatch/internal/handler/http/source"
	"webwatch/internal/infra/db"
	"webwatch/internal/infra/pipeline"
	"webwatch/internal/observability/logging"
	"webwatch/internal/observability/tracing"
	"webwatch/internal/pkg/config"
	projUC "webwatch/internal/usecase/project"
	recUC "webwatch/internal/usecase/record"
	srcUC "webwatch/internal/usecase/source"
)

// apiConfig holds the listener settings of the REST process.
type apiConfig struct {
	Port           int
	Version        string
	RequestTimeout time.Duration
	// CrawlLimit manual crawls per client IP within CrawlWindow.
	CrawlLimit  int
	CrawlWindow time.Duration
}

// loadAPIConfig reads API_PORT (8080), VERSION (dev), API_REQUEST_TIMEOUT
// (2m), CRAWL_RATE_LIMIT (10) and CRAWL_RATE_WINDOW (1m).
func loadAPIConfig(logger *slog.Logger) apiConfig {
	var l config.Loader
	cfg := apiConfig{
		Port:           config.Get(&l, "API_PORT", config.LoadEnvInt("API_PORT", 8080, config.IntRange(1024, 65535))),
		Version:        config.LoadEnvString("VERSION", "dev"),
		RequestTimeout: config.Get(&l, "API_REQUEST_TIMEOUT", config.LoadEnvDuration("API_REQUEST_TIMEOUT", 2*time.Minute, config.DurationRange(time.Second, 30*time.Minute))),
		CrawlLimit:     config.Get(&l, "CRAWL_RATE_LIMIT", config.LoadEnvInt("CRAWL_RATE_LIMIT", 10, config.IntRange(1, 1000))),
		CrawlWindow:    config.Get(&l, "CRAWL_RATE_WINDOW", config.LoadEnvDuration("CRAWL_RATE_WINDOW", time.Minute, config.ValidatePositiveDuration)),
	}
	for _, w := range l.Warnings {
		logger.Warn("api configuration fallback", slog.String("warning", w))
	}
	return cfg
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing := tracing.Setup("webwatch-api", 1)
	defer func() { _ = shutdownTracing(context.Background()) }()

	cfg := loadAPIConfig(logger)

	stores, err := db.OpenStores(ctx, db.LoadStorageConfigFromEnv(logger), logger)
	if err != nil {
		logger.Error("failed to open storage", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := stores.Close(closeCtx); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	p := pipeline.Build(stores, pipeline.Options{}, logger)
	handler := applyMiddleware(logger, setupRoutes(stores, p, cfg), cfg)

	if err := runServer(ctx, logger, handler, cfg); err != nil {
		logger.Error("server failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("server stopped")
}

// setupRoutes registers the REST resources and the operational endpoints.
func setupRoutes(stores *db.Stores, p *pipeline.Pipeline, cfg apiConfig) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("GET /health", &hhttp.HealthHandler{Ping: stores.Ping, Driver: stores.Driver, Version: cfg.Version})
	mux.Handle("GET /ready", &hhttp.ReadyHandler{Ping: stores.Ping})
	mux.Handle("GET /live", &hhttp.LiveHandler{})
	mux.Handle("GET /metrics", hhttp.MetricsHandler())

	// レート制限: 手動クロールは外部サイトへの負荷になるため IP 単位で制限
	crawlLimiter := hhttp.NewRateLimiter(cfg.CrawlLimit, cfg.CrawlWindow)

	hsrc.Register(mux, &srcUC.Service{Repo: stores.Sources, Projects: stores.Projects}, p.Crawler, crawlLimiter.Limit)
	hproject.Register(mux, &projUC.Service{Repo: stores.Projects})
	hrecord.Register(mux, &recUC.Service{Repo: stores.Records})
	return mux
}

// applyMiddleware wraps the mux, outermost first:
// request ID, tracing, recovery, logging, input validation, timeout, metrics.
func applyMiddleware(logger *slog.Logger, handler http.Handler, cfg apiConfig) http.Handler {
	h := handler
	h = hhttp.MetricsMiddleware(h)
	h = hhttp.Timeout(cfg.RequestTimeout)(h)
	h = hhttp.InputValidation()(h)
	h = hhttp.Logging(logger)(h)
	h = hhttp.Recover(logger)(h)
	h = tracing.Middleware(h)
	h = requestid.Middleware(h)
	return h
}

// runServer serves until ctx is cancelled, then drains for up to 10s.
func runServer(ctx context.Context, logger *slog.Logger, handler http.Handler, cfg apiConfig) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Slowloris 対策
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("version", cfg.Version))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
