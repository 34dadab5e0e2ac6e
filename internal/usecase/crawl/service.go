package crawl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"webwatch/internal/domain/entity"
	"webwatch/internal/observability/metrics"
	"webwatch/internal/observability/tracing"
	"webwatch/internal/repository"
	"webwatch/internal/usecase/sentiment"
)

// Config tunes the orchestrator.
type Config struct {
	// LockStaleAfter lets a crawl take over a lock left behind by a crashed one.
	LockStaleAfter time.Duration
	// DeepFetchEnabled allows permalink fetches for sources with max_depth >= 1.
	DeepFetchEnabled bool
	// DeepFetchThreshold is the body length (runes) under which a deep fetch is tried.
	DeepFetchThreshold int
	// AlertTimeout bounds each alert delivery.
	AlertTimeout time.Duration
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		LockStaleAfter:     30 * time.Minute,
		DeepFetchEnabled:   true,
		DeepFetchThreshold: 1500,
		AlertTimeout:       10 * time.Second,
	}
}

// SourceResult summarizes one crawl cycle.
type SourceResult struct {
	SourceID   string
	Found      int
	Persisted  int
	Duplicates int
	Rejected   int
	// Skipped is set when the source was inactive, or no longer due for a
	// batch crawl, once its stored state was read under the lock.
	Skipped bool
	// Errors holds per-candidate failures; they never abort the crawl.
	Errors   []error
	Duration time.Duration
}

// Service is the source crawl orchestrator.
type Service struct {
	Sources    repository.SourceRepository
	Records    repository.RecordRepository
	Projects   repository.ProjectRepository // optional
	Fetcher    PageFetcher
	HTML       Extractor
	Feed       Extractor // used for rss sources
	Classifier sentiment.Analyzer

	Content ContentFetcher // optional deep fetch
	Alerter Alerter        // optional

	Config Config

	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
	NewID func() string
}

// NewService wires the orchestrator with real clock, sleep and UUIDs.
func NewService(
	sources repository.SourceRepository,
	records repository.RecordRepository,
	projects repository.ProjectRepository,
	fetcher PageFetcher,
	html, feed Extractor,
	classifier sentiment.Analyzer,
	cfg Config,
) *Service {
	return &Service{
		Sources:    sources,
		Records:    records,
		Projects:   projects,
		Fetcher:    fetcher,
		HTML:       html,
		Feed:       feed,
		Classifier: classifier,
		Config:     cfg,
		Now:        time.Now,
		Sleep:      sleepContext,
		NewID:      uuid.NewString,
	}
}

// CrawlByID loads a source and crawls it. It is the manual trigger used by
// the API and CLI.
func (s *Service) CrawlByID(ctx context.Context, id string) (*SourceResult, error) {
	src, err := s.Sources.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get source: %w", err)
	}
	if src == nil {
		return nil, entity.ErrNotFound
	}
	if !src.IsActive {
		return nil, ErrSourceInactive
	}
	res, err := s.CrawlSource(ctx, src)
	if err == nil && res.Skipped {
		// 取得後ロックまでの間に無効化された
		return nil, ErrSourceInactive
	}
	return res, err
}

// CrawlSource runs one full crawl cycle for src, whether or not it is due.
//
// Inactive sources are a no-op. A fetch or extraction failure is recorded
// on the source statistics and returned, but the source is still
// rescheduled. Per-candidate failures are collected in the result.
//
// src is only a hint: once the crawl lock is held the stored source is
// reloaded, and the cycle runs against (and saves) that row. On return src
// holds the saved state.
func (s *Service) CrawlSource(ctx context.Context, src *entity.Source) (*SourceResult, error) {
	return s.run(ctx, src, false)
}

// CrawlDue is CrawlSource for the batch loop. It also skips the source
// when the reloaded row is no longer due, e.g. because a manual crawl ran
// after the batch listed it.
func (s *Service) CrawlDue(ctx context.Context, src *entity.Source) (*SourceResult, error) {
	return s.run(ctx, src, true)
}

func (s *Service) run(ctx context.Context, hint *entity.Source, requireDue bool) (*SourceResult, error) {
	res := &SourceResult{SourceID: hint.ID}
	if !hint.IsActive {
		res.Skipped = true
		return res, nil
	}

	ctx, span := tracing.GetTracer().Start(ctx, "crawl.source")
	defer span.End()
	span.SetAttributes(attribute.String("source.id", hint.ID), attribute.String("source.url", hint.URL))

	logger := slog.Default().With(slog.String("source_id", hint.ID))
	start := s.Now()

	locked, err := s.Sources.TryLockCrawl(ctx, hint.ID, start, s.Config.LockStaleAfter)
	if err != nil {
		metrics.RecordSourceCrawlError(hint.ID, "lock_failed")
		return nil, fmt.Errorf("lock source: %w", err)
	}
	if !locked {
		metrics.RecordSourceCrawlError(hint.ID, "locked")
		span.SetStatus(codes.Error, ErrCrawlInProgress.Error())
		return nil, ErrCrawlInProgress
	}
	defer func() {
		if err := s.Sources.UnlockCrawl(context.WithoutCancel(ctx), hint.ID); err != nil {
			logger.Error("failed to release crawl lock", slog.Any("error", err))
		}
	}()

	// ロック取得後の最新状態で判定・集計する
	src, err := s.Sources.Get(ctx, hint.ID)
	if err != nil {
		return nil, fmt.Errorf("reload source: %w", err)
	}
	if src == nil {
		return nil, entity.ErrNotFound
	}
	if !src.IsActive || (requireDue && !src.IsDue(start)) {
		logger.Info("source skipped after lock",
			slog.Bool("active", src.IsActive),
			slog.Bool("require_due", requireDue))
		*hint = *src
		res.Skipped = true
		return res, nil
	}

	var crawlErr error
	if err := s.crawl(ctx, src, res, logger); err != nil {
		crawlErr = &PageError{Err: err}
	}

	finished := s.Now()
	res.Duration = finished.Sub(start)
	src.RecordCrawlAttempt(finished, res.Persisted, crawlErr)
	if err := s.Sources.SaveCrawlState(context.WithoutCancel(ctx), src); err != nil {
		return res, fmt.Errorf("save crawl state: %w", err)
	}
	*hint = *src

	metrics.RecordSourceCrawl(src.ID, res.Duration)
	span.SetAttributes(
		attribute.Int("crawl.found", res.Found),
		attribute.Int("crawl.persisted", res.Persisted),
		attribute.Int("crawl.candidate_errors", len(res.Errors)),
	)

	if crawlErr != nil {
		span.RecordError(crawlErr)
		span.SetStatus(codes.Error, "crawl failed")
		logger.Warn("source crawl failed", slog.String("url", src.URL), slog.Any("error", crawlErr))
		return res, crawlErr
	}

	logger.Info("source crawl completed",
		slog.Int("found", res.Found),
		slog.Int("persisted", res.Persisted),
		slog.Int("duplicates", res.Duplicates),
		slog.Int("rejected", res.Rejected),
		slog.Int("candidate_errors", len(res.Errors)),
		slog.Duration("duration", res.Duration))
	return res, nil
}

// crawl fetches and extracts the source page and runs every candidate
// through the pipeline. Only source-level failures are returned.
func (s *Service) crawl(ctx context.Context, src *entity.Source, res *SourceResult, logger *slog.Logger) error {
	page, err := s.Fetcher.Fetch(ctx, requestFor(src, src.URL))
	if err != nil {
		metrics.RecordSourceCrawlError(src.ID, "fetch_failed")
		return fmt.Errorf("fetch %s: %w", src.URL, err)
	}

	base := page.URL
	if base == "" {
		base = src.URL
	}
	candidates, err := s.extractorFor(src).Extract(page.Body, base, src.Selectors)
	if err != nil {
		metrics.RecordSourceCrawlError(src.ID, "extract_failed")
		return fmt.Errorf("extract %s: %w", src.URL, err)
	}
	res.Found = len(candidates)
	if len(candidates) == 0 {
		logger.Info("no candidates extracted", slog.String("url", src.URL))
		return nil
	}

	rules := RulesFor(src, s.project(ctx, src, logger))
	gate := DedupGate{Records: s.Records}

	for i := range candidates {
		c := &candidates[i]
		outcome, err := s.processCandidate(ctx, src, rules, gate, c, logger)
		metrics.RecordCandidate(outcome)
		switch outcome {
		case metrics.OutcomePersisted:
			res.Persisted++
		case metrics.OutcomeDuplicate:
			res.Duplicates++
		case metrics.OutcomeExcluded, metrics.OutcomeUnmatched:
			res.Rejected++
		case metrics.OutcomeFailed:
			logger.Warn("candidate failed", slog.String("url", c.URL), slog.Any("error", err))
			res.Errors = append(res.Errors, fmt.Errorf("%s: %w", c.URL, err))
		}
	}
	return nil
}

// processCandidate runs dedup, deep fetch, match, classify and persist for
// one candidate and returns the metrics outcome. A failed outcome carries
// the error.
func (s *Service) processCandidate(
	ctx context.Context,
	src *entity.Source,
	rules Rules,
	gate DedupGate,
	c *entity.ExtractedContent,
	logger *slog.Logger,
) (outcome string, err error) {
	defer func() {
		if r := recover(); r != nil {
			outcome, err = metrics.OutcomeFailed, fmt.Errorf("panic: %v", r)
		}
	}()

	isNew, hash, err := gate.Check(ctx, c.Body)
	if err != nil {
		return metrics.OutcomeFailed, err
	}
	if !isNew {
		return metrics.OutcomeDuplicate, nil
	}

	s.enhance(ctx, src, c, logger)

	m := Match(c.Body, c.Tags, rules)
	switch m.Verdict {
	case MatchExcluded:
		return metrics.OutcomeExcluded, nil
	case MatchUnmatched:
		return metrics.OutcomeUnmatched, nil
	}

	verdict := s.Classifier.Analyze(ctx, c.Body)

	record := entity.NewRecord(s.NewID(), src, c, hash, m.MatchedKeywords, m.MatchedHashtags, verdict, s.Now())
	if err := s.Records.Create(ctx, record); err != nil {
		if errors.Is(err, entity.ErrDuplicate) {
			return metrics.OutcomeDuplicate, nil
		}
		return metrics.OutcomeFailed, fmt.Errorf("persist record: %w", err)
	}
	metrics.RecordPersisted(verdict.Label)

	if verdict.Label == entity.SentimentNegative {
		s.alert(ctx, record, src, logger)
	}
	return metrics.OutcomePersisted, nil
}

// enhance replaces a short listing body with the readable text of the
// candidate permalink. Any failure keeps the listing body.
func (s *Service) enhance(ctx context.Context, src *entity.Source, c *entity.ExtractedContent, logger *slog.Logger) {
	if s.Content == nil || !s.Config.DeepFetchEnabled || src.CrawlSettings.MaxDepth < 1 {
		return
	}
	if utf8.RuneCountInString(c.Body) >= s.Config.DeepFetchThreshold || c.URL == "" || c.URL == src.URL {
		metrics.RecordContentFetchSkipped()
		return
	}
	if !src.CrawlSettings.FollowExternalLinks && !sameHost(src.URL, c.URL) {
		metrics.RecordContentFetchSkipped()
		return
	}

	if err := s.Sleep(ctx, src.CrawlSettings.Delay()); err != nil {
		return
	}

	start := time.Now()
	text, err := s.Content.FetchContent(ctx, requestFor(src, c.URL))
	if err != nil {
		metrics.RecordContentFetchFailed(time.Since(start))
		logger.Debug("deep fetch failed, keeping listing body", slog.String("url", c.URL), slog.Any("error", err))
		return
	}
	metrics.RecordContentFetchSuccess(time.Since(start))

	if utf8.RuneCountInString(text) > utf8.RuneCountInString(c.Body) {
		c.Body = text
	}
}

func (s *Service) alert(ctx context.Context, record *entity.Record, src *entity.Source, logger *slog.Logger) {
	if s.Alerter == nil {
		return
	}
	timeout := s.Config.AlertTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	if err := s.Alerter.NotifyMention(actx, record, src); err != nil {
		logger.Warn("failed to send mention alert", slog.String("record_id", record.ID), slog.Any("error", err))
	}
}

func (s *Service) project(ctx context.Context, src *entity.Source, logger *slog.Logger) *entity.Project {
	if src.ProjectID == "" || s.Projects == nil {
		return nil
	}
	p, err := s.Projects.Get(ctx, src.ProjectID)
	if err != nil {
		logger.Warn("failed to load project, using source rules only",
			slog.String("project_id", src.ProjectID), slog.Any("error", err))
		return nil
	}
	return p
}

func (s *Service) extractorFor(src *entity.Source) Extractor {
	if src.Type == entity.SourceTypeRSS && s.Feed != nil {
		return s.Feed
	}
	return s.HTML
}

func sameHost(a, b string) bool {
	ua, err := url.Parse(a)
	if err != nil {
		return false
	}
	ub, err := url.Parse(b)
	if err != nil {
		return false
	}
	return strings.EqualFold(ua.Hostname(), ub.Hostname())
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
