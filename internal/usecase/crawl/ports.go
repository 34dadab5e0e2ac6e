// Package crawl runs the scrape pipeline: one crawl cycle per source
// (fetch, extract, dedup, match, classify, persist) and the batch loop
// that drives due sources one at a time.
package crawl

import (
	"context"
	"time"

	"webwatch/internal/domain/entity"
)

// FetchRequest describes one page download. Zero values fall back to the
// fetcher's defaults.
type FetchRequest struct {
	URL           string
	UserAgent     string
	Headers       map[string]string
	Timeout       time.Duration
	MaxRedirects  int
	RespectRobots bool
}

// Page is a downloaded document decoded to UTF-8.
type Page struct {
	// URL is the final URL after redirects.
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// PageFetcher downloads source pages.
type PageFetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*Page, error)
}

// ContentFetcher downloads a permalink and returns its readable text.
type ContentFetcher interface {
	FetchContent(ctx context.Context, req FetchRequest) (string, error)
}

// Extractor turns a fetched document into article candidates.
type Extractor interface {
	Extract(document []byte, baseURL string, sel entity.Selectors) ([]entity.ExtractedContent, error)
}

// Alerter is notified after a negative mention is persisted.
type Alerter interface {
	NotifyMention(ctx context.Context, record *entity.Record, source *entity.Source) error
}

func requestFor(src *entity.Source, url string) FetchRequest {
	cs := src.CrawlSettings
	return FetchRequest{
		URL:           url,
		UserAgent:     cs.UserAgent,
		Headers:       cs.Headers,
		Timeout:       cs.Timeout(),
		MaxRedirects:  cs.MaxRedirects,
		RespectRobots: cs.RespectRobots,
	}
}
