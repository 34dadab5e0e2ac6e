package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validSource() *Source {
	return &Source{
		Name:                  "Portal",
		URL:                   "https://news.example.com",
		Type:                  SourceTypeNews,
		CrawlFrequencyMinutes: 30,
		IsActive:              true,
	}
}

func TestSource_ApplyDefaults(t *testing.T) {
	s := &Source{Name: "x", URL: "https://example.com", Type: "NEWS"}
	s.ApplyDefaults()

	assert.Equal(t, SourceTypeNews, s.Type)
	assert.Equal(t, DefaultCrawlFrequencyMinutes, s.CrawlFrequencyMinutes)
	assert.Equal(t, DefaultCrawlDelayMs, s.CrawlSettings.DelayMs)
	assert.Equal(t, DefaultCrawlTimeoutSeconds, s.CrawlSettings.TimeoutSeconds)
	assert.Equal(t, DefaultCrawlMaxRedirects, s.CrawlSettings.MaxRedirects)
	assert.Equal(t, 30*time.Second, s.CrawlSettings.Timeout())
	assert.Equal(t, time.Second, s.CrawlSettings.Delay())
}

func TestSource_Validate(t *testing.T) {
	stubLookup(t)

	tests := []struct {
		name   string
		mutate func(*Source)
		field  string
	}{
		{name: "valid", mutate: func(*Source) {}},
		{name: "missing name", mutate: func(s *Source) { s.Name = " " }, field: "name"},
		{name: "bad url", mutate: func(s *Source) { s.URL = "ftp://example.com" }, field: "url"},
		{name: "bad type", mutate: func(s *Source) { s.Type = "instagram" }, field: "type"},
		{name: "zero frequency", mutate: func(s *Source) { s.CrawlFrequencyMinutes = 0 }, field: "crawl_frequency_minutes"},
		{name: "depth too large", mutate: func(s *Source) { s.CrawlSettings.MaxDepth = 4 }, field: "crawl_settings.max_depth"},
		{name: "negative delay", mutate: func(s *Source) { s.CrawlSettings.DelayMs = -1 }, field: "crawl_settings.delay_ms"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validSource()
			tt.mutate(s)
			err := s.Validate()
			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var ve *ValidationError
			require.True(t, errors.As(err, &ve), "expected ValidationError, got %v", err)
			assert.Equal(t, tt.field, ve.Field)
			assert.ErrorIs(t, err, ErrValidationFailed)
		})
	}
}

func TestSource_IsDue(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	s := validSource()
	assert.True(t, s.IsDue(now), "never scheduled")

	s.NextCrawl = &past
	assert.True(t, s.IsDue(now))

	s.NextCrawl = &now
	assert.True(t, s.IsDue(now), "due exactly at nextCrawl")

	s.NextCrawl = &future
	assert.False(t, s.IsDue(now))

	s.NextCrawl = nil
	s.IsActive = false
	assert.False(t, s.IsDue(now), "inactive sources are never due")
}

func TestSource_RecordCrawlAttempt(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	t.Run("success clears previous error", func(t *testing.T) {
		s := validSource()
		s.Statistics.LastError = "boom"
		s.Statistics.LastErrorDate = &now

		s.RecordCrawlAttempt(now, 3, nil)

		require.NotNil(t, s.LastCrawled)
		require.NotNil(t, s.NextCrawl)
		assert.Equal(t, now, *s.LastCrawled)
		assert.Equal(t, s.LastCrawled.Add(30*time.Minute), *s.NextCrawl)
		assert.Equal(t, 3, s.Statistics.TotalArticles)
		assert.Equal(t, 1, s.Statistics.TotalCrawls)
		assert.Equal(t, 1, s.Statistics.SuccessfulCrawls)
		assert.InDelta(t, 100.0, s.Statistics.SuccessRate, 0.001)
		assert.Empty(t, s.Statistics.LastError)
		assert.Nil(t, s.Statistics.LastErrorDate)
	})

	t.Run("failure still reschedules", func(t *testing.T) {
		s := validSource()
		s.RecordCrawlAttempt(now, 0, nil)

		later := now.Add(time.Hour)
		s.RecordCrawlAttempt(later, 5, errors.New("dial tcp: timeout"))

		assert.Equal(t, later, *s.LastCrawled)
		assert.Equal(t, later.Add(30*time.Minute), *s.NextCrawl)
		assert.Equal(t, 0, s.Statistics.TotalArticles, "failed attempts add no articles")
		assert.Equal(t, 2, s.Statistics.TotalCrawls)
		assert.Equal(t, 1, s.Statistics.SuccessfulCrawls)
		assert.InDelta(t, 50.0, s.Statistics.SuccessRate, 0.001)
		assert.Equal(t, "dial tcp: timeout", s.Statistics.LastError)
		require.NotNil(t, s.Statistics.LastErrorDate)
		assert.Equal(t, later, *s.Statistics.LastErrorDate)
	})
}
