package fetcher

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/temoto/robotstxt"
)

type robotsEntry struct {
	data    *robotstxt.RobotsData // nil means allow all
	expires time.Time
}

// RobotsChecker answers robots.txt queries with a per-host cache.
// Unreachable robots.txt files allow everything; a 5xx robots.txt
// disallows everything, as robotstxt.FromResponse decides.
type RobotsChecker struct {
	client *http.Client
	ttl    time.Duration
	logger *slog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]robotsEntry
}

// NewRobotsChecker creates a checker. ttl <= 0 disables caching.
func NewRobotsChecker(client *http.Client, ttl time.Duration, logger *slog.Logger) *RobotsChecker {
	return &RobotsChecker{
		client: client,
		ttl:    ttl,
		logger: logger,
		now:    time.Now,
		cache:  make(map[string]robotsEntry),
	}
}

// Allowed reports whether userAgent may fetch rawURL.
func (r *RobotsChecker) Allowed(ctx context.Context, rawURL, userAgent string) (bool, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false, err
	}
	data := r.get(ctx, u, userAgent)
	if data == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.TestAgent(path, userAgent), nil
}

func (r *RobotsChecker) get(ctx context.Context, u *url.URL, userAgent string) *robotstxt.RobotsData {
	key := u.Scheme + "://" + u.Host
	now := r.now()

	r.mu.Lock()
	if e, ok := r.cache[key]; ok && now.Before(e.expires) {
		r.mu.Unlock()
		return e.data
	}
	r.mu.Unlock()

	data := r.fetch(ctx, key, userAgent)

	if r.ttl > 0 {
		r.mu.Lock()
		r.cache[key] = robotsEntry{data: data, expires: now.Add(r.ttl)}
		r.mu.Unlock()
	}
	return data
}

func (r *RobotsChecker) fetch(ctx context.Context, origin, userAgent string) *robotstxt.RobotsData {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+"/robots.txt", nil)
	if err != nil {
		return nil
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		r.logger.Debug("robots.txt unreachable, allowing", slog.String("origin", origin), slog.Any("error", err))
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := robotstxt.FromResponse(resp)
	if err != nil {
		r.logger.Debug("robots.txt unparsable, allowing", slog.String("origin", origin), slog.Any("error", err))
		return nil
	}
	return data
}
