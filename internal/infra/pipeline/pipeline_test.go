package pipeline

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/infra/db"
	"webwatch/internal/infra/notifier"
)

func quietLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestBuild_Defaults(t *testing.T) {
	t.Setenv("SENTIMENT_PROVIDER", "lexicon")
	t.Setenv("CONTENT_FETCH_ENABLED", "true")
	t.Setenv("CRAWL_LOCK_STALE_AFTER", "")

	p := Build(&db.Stores{Driver: db.DriverMongo}, Options{}, quietLogger())

	require.NotNil(t, p.Crawler)
	require.NotNil(t, p.Scheduler)
	require.NotNil(t, p.Analyzer)
	assert.Nil(t, p.Analyzer.Primary)
	assert.NotNil(t, p.Crawler.Content)
	assert.IsType(t, &notifier.NoOpNotifier{}, p.Crawler.Alerter)
	assert.True(t, p.Crawler.Config.DeepFetchEnabled)
	assert.Equal(t, 1500, p.Crawler.Config.DeepFetchThreshold)
	assert.Same(t, p.Crawler, p.Scheduler.Crawler)
}

func TestBuild_Overrides(t *testing.T) {
	t.Setenv("CONTENT_FETCH_ENABLED", "false")
	t.Setenv("CRAWL_LOCK_STALE_AFTER", "10m")

	p := Build(&db.Stores{Driver: db.DriverPostgres}, Options{DisableAlerts: true}, quietLogger())

	assert.Nil(t, p.Crawler.Content)
	assert.Nil(t, p.Crawler.Alerter)
	assert.False(t, p.Crawler.Config.DeepFetchEnabled)
	assert.Equal(t, "10m0s", p.Crawler.Config.LockStaleAfter.String())
}

func TestBuild_InvalidStaleAfterFallsBack(t *testing.T) {
	t.Setenv("CRAWL_LOCK_STALE_AFTER", "-5m")

	p := Build(&db.Stores{}, Options{DisableAlerts: true}, quietLogger())
	assert.Equal(t, "30m0s", p.Crawler.Config.LockStaleAfter.String())
}
