package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"webwatch/internal/domain/entity"
	"webwatch/internal/observability/metrics"
	"webwatch/internal/observability/tracing"
	"webwatch/internal/repository"
)

// SourceCrawler runs one batch crawl cycle. *Service implements it; a
// result with Skipped set means the source was no longer due.
type SourceCrawler interface {
	CrawlDue(ctx context.Context, src *entity.Source) (*SourceResult, error)
}

// BatchResult aggregates one scheduler run.
type BatchResult struct {
	Succeeded int
	Failed    int
	// Skipped counts listed sources that were no longer due or active once
	// locked.
	Skipped       int
	TotalArticles int
	// Failures maps source IDs to the error that failed them.
	Failures map[string]error
	Duration time.Duration
}

// Scheduler crawls due sources strictly one at a time, pausing between
// sources for the delay configured on the source just crawled.
type Scheduler struct {
	Sources repository.SourceRepository
	Crawler SourceCrawler
	Now     func() time.Time
	Sleep   func(ctx context.Context, d time.Duration) error
}

// NewScheduler creates a scheduler with the real clock.
func NewScheduler(sources repository.SourceRepository, crawler SourceCrawler) *Scheduler {
	return &Scheduler{
		Sources: sources,
		Crawler: crawler,
		Now:     time.Now,
		Sleep:   sleepContext,
	}
}

// RunDueSources crawls every active source whose next crawl is due.
// A failing or panicking source is counted and logged and the loop moves
// on. The only early exit is cancellation of ctx between sources, which
// leaves the remaining sources due for the next run.
func (s *Scheduler) RunDueSources(ctx context.Context) (*BatchResult, error) {
	ctx, span := tracing.GetTracer().Start(ctx, "crawl.batch")
	defer span.End()

	logger := slog.Default()
	start := s.Now()

	due, err := s.Sources.ListDue(ctx, start)
	if err != nil {
		return nil, fmt.Errorf("list due sources: %w", err)
	}

	res := &BatchResult{Failures: make(map[string]error)}
	for i, src := range due {
		n, skipped, err := s.runOne(ctx, src)
		switch {
		case skipped:
			res.Skipped++
			continue
		case err != nil:
			res.Failed++
			res.Failures[src.ID] = err
			logger.Warn("source crawl failed",
				slog.String("source_id", src.ID),
				slog.String("source_name", src.Name),
				slog.Any("error", err))
		default:
			res.Succeeded++
		}
		res.TotalArticles += n

		if i < len(due)-1 {
			if err := s.Sleep(ctx, src.CrawlSettings.Delay()); err != nil {
				logger.Warn("batch interrupted",
					slog.Int("remaining", len(due)-i-1),
					slog.Any("error", err))
				break
			}
		}
	}

	res.Duration = s.Now().Sub(start)
	metrics.RecordBatch(res.Succeeded, res.Failed)
	span.SetAttributes(
		attribute.Int("batch.sources", len(due)),
		attribute.Int("batch.succeeded", res.Succeeded),
		attribute.Int("batch.failed", res.Failed),
		attribute.Int("batch.articles", res.TotalArticles),
	)
	logger.Info("crawl batch completed",
		slog.Int("due", len(due)),
		slog.Int("succeeded", res.Succeeded),
		slog.Int("failed", res.Failed),
		slog.Int("skipped", res.Skipped),
		slog.Int("articles", res.TotalArticles),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// runOne isolates one source: panics become errors.
func (s *Scheduler) runOne(ctx context.Context, src *entity.Source) (n int, skipped bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic crawling source %s: %v", src.ID, r)
		}
	}()
	res, err := s.Crawler.CrawlDue(ctx, src)
	if res != nil {
		n = res.Persisted
		skipped = res.Skipped && err == nil
	}
	return n, skipped, err
}
