package fetcher

import (
	"fmt"
	"log/slog"
	"time"

	"webwatch/internal/pkg/config"
)

// DefaultUserAgent identifies the crawler when a source sets none.
const DefaultUserAgent = "WebWatchBot/1.0 (+https://github.com/webwatch)"

// Config holds page fetch limits. Per-source crawl settings override
// Timeout, MaxRedirects and UserAgent for individual requests.
type Config struct {
	Timeout        time.Duration
	MaxRedirects   int
	MaxBodySize    int64
	DenyPrivateIPs bool
	UserAgent      string
	// RobotsCacheTTL is how long a parsed robots.txt is reused per host.
	RobotsCacheTTL time.Duration
}

// ContentFetchConfig controls deep fetching of article permalinks.
type ContentFetchConfig struct {
	// Enabled toggles deep fetching globally; sources also need max_depth >= 1.
	Enabled bool
	// Threshold is the body length (runes) under which a deep fetch is tried.
	Threshold int
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		Timeout:        30 * time.Second,
		MaxRedirects:   5,
		MaxBodySize:    10 * 1024 * 1024, // 10MB
		DenyPrivateIPs: true,
		UserAgent:      DefaultUserAgent,
		RobotsCacheTTL: time.Hour,
	}
}

// DefaultContentFetchConfig returns deep fetch defaults.
func DefaultContentFetchConfig() ContentFetchConfig {
	return ContentFetchConfig{Enabled: true, Threshold: 1500}
}

// Validate checks the limits are usable.
func (c Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %v", c.Timeout)
	}
	if c.MaxRedirects < 0 || c.MaxRedirects > 10 {
		return fmt.Errorf("max redirects must be between 0 and 10, got %d", c.MaxRedirects)
	}
	if c.MaxBodySize < 1024 || c.MaxBodySize > 100*1024*1024 {
		return fmt.Errorf("max body size must be between 1KB and 100MB, got %d", c.MaxBodySize)
	}
	return nil
}

// LoadConfigFromEnv loads fetch settings. Invalid values fall back to the
// defaults and are logged as warnings.
//
// Environment variables:
//   - FETCH_TIMEOUT (30s), FETCH_MAX_REDIRECTS (5), FETCH_MAX_BODY_SIZE (10MB)
//   - FETCH_DENY_PRIVATE_IPS (true), FETCH_USER_AGENT, FETCH_ROBOTS_CACHE_TTL (1h)
//   - CONTENT_FETCH_ENABLED (true), CONTENT_FETCH_THRESHOLD (1500)
func LoadConfigFromEnv(logger *slog.Logger) (Config, ContentFetchConfig) {
	d := DefaultConfig()
	cd := DefaultContentFetchConfig()
	var l config.Loader

	cfg := Config{
		Timeout:        config.Get(&l, "FETCH_TIMEOUT", config.LoadEnvDuration("FETCH_TIMEOUT", d.Timeout, config.DurationRange(time.Second, 5*time.Minute))),
		MaxRedirects:   config.Get(&l, "FETCH_MAX_REDIRECTS", config.LoadEnvInt("FETCH_MAX_REDIRECTS", d.MaxRedirects, config.IntRange(0, 10))),
		MaxBodySize:    config.Get(&l, "FETCH_MAX_BODY_SIZE", config.LoadEnvInt64("FETCH_MAX_BODY_SIZE", d.MaxBodySize, config.Int64Range(1024, 100*1024*1024))),
		DenyPrivateIPs: config.Get(&l, "FETCH_DENY_PRIVATE_IPS", config.LoadEnvBool("FETCH_DENY_PRIVATE_IPS", d.DenyPrivateIPs)),
		UserAgent:      config.LoadEnvString("FETCH_USER_AGENT", d.UserAgent),
		RobotsCacheTTL: config.Get(&l, "FETCH_ROBOTS_CACHE_TTL", config.LoadEnvDuration("FETCH_ROBOTS_CACHE_TTL", d.RobotsCacheTTL, config.ValidatePositiveDuration)),
	}
	content := ContentFetchConfig{
		Enabled:   config.Get(&l, "CONTENT_FETCH_ENABLED", config.LoadEnvBool("CONTENT_FETCH_ENABLED", cd.Enabled)),
		Threshold: config.Get(&l, "CONTENT_FETCH_THRESHOLD", config.LoadEnvInt("CONTENT_FETCH_THRESHOLD", cd.Threshold, config.IntRange(0, 100000))),
	}

	for _, w := range l.Warnings {
		logger.Warn("fetch configuration fallback", slog.String("warning", w))
	}
	return cfg, content
}
