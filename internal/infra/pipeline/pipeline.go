// Package pipeline assembles the crawl orchestrator from environment
// configuration. The worker, the API and the CLI share it so a manual
// crawl behaves exactly like a scheduled one.
package pipeline

import (
	"log/slog"

	"webwatch/internal/infra/classifier"
	"webwatch/internal/infra/db"
	"webwatch/internal/infra/fetcher"
	"webwatch/internal/infra/notifier"
	"webwatch/internal/infra/scraper"
	"webwatch/internal/pkg/config"
	"webwatch/internal/usecase/crawl"
	"webwatch/internal/usecase/sentiment"
)

// Options are the process-level inputs that do not come from the
// per-component env loaders.
type Options struct {
	// DisableAlerts skips webhook delivery, used by one-off CLI runs.
	DisableAlerts bool
}

// Pipeline exposes the assembled orchestrator and the analyzer it uses.
type Pipeline struct {
	Crawler   *crawl.Service
	Scheduler *crawl.Scheduler
	Analyzer  *sentiment.FallbackAnalyzer
}

// Build wires fetcher, extractors, classifier and notifier around stores.
//
// Environment variables (besides the component ones):
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY
//   - CRAWL_LOCK_STALE_AFTER (30m)
func Build(stores *db.Stores, opts Options, logger *slog.Logger) *Pipeline {
	fetchCfg, contentCfg := fetcher.LoadConfigFromEnv(logger)
	if err := fetchCfg.Validate(); err != nil {
		logger.Warn("invalid fetch configuration, using defaults", slog.Any("error", err))
		fetchCfg = fetcher.DefaultConfig()
	}
	pages := fetcher.NewPageFetcher(fetchCfg, logger)

	analyzer := classifier.NewAnalyzer(
		classifier.LoadConfigFromEnv(logger),
		config.LoadEnvString("ANTHROPIC_API_KEY", ""),
		config.LoadEnvString("OPENAI_API_KEY", ""),
		logger,
	)

	cfg := crawl.DefaultConfig()
	var l config.Loader
	cfg.LockStaleAfter = config.Get(&l, "CRAWL_LOCK_STALE_AFTER",
		config.LoadEnvDuration("CRAWL_LOCK_STALE_AFTER", cfg.LockStaleAfter, config.ValidatePositiveDuration))
	for _, w := range l.Warnings {
		logger.Warn("crawl configuration fallback", slog.String("warning", w))
	}
	cfg.DeepFetchEnabled = contentCfg.Enabled
	cfg.DeepFetchThreshold = contentCfg.Threshold

	svc := crawl.NewService(
		stores.Sources,
		stores.Records,
		stores.Projects,
		pages,
		scraper.NewHTMLExtractor(logger),
		scraper.NewFeedExtractor(logger),
		analyzer,
		cfg,
	)
	if contentCfg.Enabled {
		svc.Content = fetcher.NewReadabilityFetcher(pages)
	}
	if !opts.DisableAlerts {
		svc.Alerter = notifier.New(notifier.LoadConfigFromEnv(logger), logger)
	}

	logger.Info("crawl pipeline assembled",
		slog.String("storage", stores.Driver),
		slog.Bool("deep_fetch", contentCfg.Enabled),
		slog.Int("deep_fetch_threshold", contentCfg.Threshold),
		slog.Bool("alerts", svc.Alerter != nil))

	return &Pipeline{
		Crawler:   svc,
		Scheduler: crawl.NewScheduler(stores.Sources, svc),
		Analyzer:  analyzer,
	}
}
