package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"webwatch/internal/resilience/circuitbreaker"
	"webwatch/internal/usecase/crawl"

	"github.com/go-shiori/go-readability"
)

var _ crawl.ContentFetcher = (*ReadabilityFetcher)(nil)

// ReadabilityFetcher downloads an article permalink and extracts its main
// text with the Mozilla Readability algorithm. Calls go through a circuit
// breaker so a misbehaving site does not stall every crawl.
type ReadabilityFetcher struct {
	pages   *PageFetcher
	breaker *circuitbreaker.CircuitBreaker
}

// NewReadabilityFetcher reuses pages for transport, limits and SSRF checks.
func NewReadabilityFetcher(pages *PageFetcher) *ReadabilityFetcher {
	return &ReadabilityFetcher{
		pages:   pages,
		breaker: circuitbreaker.New(circuitbreaker.ContentFetchConfig()),
	}
}

// FetchContent returns the readable plain text of req.URL.
func (f *ReadabilityFetcher) FetchContent(ctx context.Context, req Request) (string, error) {
	return circuitbreaker.Do(f.breaker, func() (string, error) {
		return f.doFetch(ctx, req)
	})
}

func (f *ReadabilityFetcher) doFetch(ctx context.Context, req Request) (string, error) {
	page, err := f.pages.Fetch(ctx, req)
	if err != nil {
		return "", err
	}

	pageURL, err := url.Parse(page.URL)
	if err != nil {
		pageURL = nil
	}
	article, err := readability.FromReader(bytes.NewReader(page.Body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrReadabilityFailed, err)
	}

	text := collapseBlankLines(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("%w: no readable content found", ErrReadabilityFailed)
	}
	return text, nil
}

// collapseBlankLines trims each line and keeps single blank lines between
// paragraphs.
func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	blank := false
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line == "" {
			if !blank && len(out) > 0 {
				out = append(out, "")
			}
			blank = true
			continue
		}
		blank = false
		out = append(out, line)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}
