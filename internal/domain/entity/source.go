package entity

import (
	"fmt"
	"strings"
	"time"
)

// Source types supported by the crawler.
const (
	SourceTypeNews    = "news"
	SourceTypeBlog    = "blog"
	SourceTypeWebsite = "website"
	SourceTypeForum   = "forum"
	SourceTypeRSS     = "rss"
)

// Crawl defaults applied when a source omits them.
const (
	DefaultCrawlFrequencyMinutes = 60
	DefaultCrawlDelayMs          = 1000
	DefaultCrawlTimeoutSeconds   = 30
	DefaultCrawlMaxRedirects     = 5
	MaxCrawlDepth                = 3
)

var validSourceTypes = map[string]bool{
	SourceTypeNews:    true,
	SourceTypeBlog:    true,
	SourceTypeWebsite: true,
	SourceTypeForum:   true,
	SourceTypeRSS:     true,
}

// Source represents a monitored origin.
// LastCrawled, NextCrawl, Statistics and the crawl lock fields are owned by
// the crawl orchestrator; everything else is operator configuration.
type Source struct {
	ID                    string        `json:"id" bson:"_id"`
	Name                  string        `json:"name" bson:"name"`
	URL                   string        `json:"url" bson:"url"`
	Type                  string        `json:"type" bson:"type"`
	Category              string        `json:"category,omitempty" bson:"category,omitempty"`
	ProjectID             string        `json:"project_id,omitempty" bson:"project_id,omitempty"`
	Selectors             Selectors     `json:"selectors" bson:"selectors"`
	CrawlFrequencyMinutes int           `json:"crawl_frequency_minutes" bson:"crawl_frequency_minutes"`
	Keywords              []string      `json:"keywords,omitempty" bson:"keywords,omitempty"`
	ExcludeKeywords       []string      `json:"exclude_keywords,omitempty" bson:"exclude_keywords,omitempty"`
	Hashtags              []string      `json:"hashtags,omitempty" bson:"hashtags,omitempty"`
	CrawlSettings         CrawlSettings `json:"crawl_settings" bson:"crawl_settings"`
	IsActive              bool          `json:"is_active" bson:"is_active"`
	LastCrawled           *time.Time    `json:"last_crawled,omitempty" bson:"last_crawled,omitempty"`
	NextCrawl             *time.Time    `json:"next_crawl,omitempty" bson:"next_crawl,omitempty"`
	CrawlInProgress       bool          `json:"crawl_in_progress" bson:"crawl_in_progress"`
	CrawlStartedAt        *time.Time    `json:"crawl_started_at,omitempty" bson:"crawl_started_at,omitempty"`
	Statistics            Statistics    `json:"statistics" bson:"statistics"`
	CreatedAt             time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt             time.Time     `json:"updated_at" bson:"updated_at"`
}

// Selectors holds optional per-source extraction overrides.
// A selector starting with "/" or "./" is evaluated as XPath, anything else as CSS.
type Selectors struct {
	Container string `json:"container,omitempty" bson:"container,omitempty"`
	Title     string `json:"title,omitempty" bson:"title,omitempty"`
	Content   string `json:"content,omitempty" bson:"content,omitempty"`
	Author    string `json:"author,omitempty" bson:"author,omitempty"`
	Date      string `json:"date,omitempty" bson:"date,omitempty"`
	Image     string `json:"image,omitempty" bson:"image,omitempty"`
	Link      string `json:"link,omitempty" bson:"link,omitempty"`
}

// CrawlSettings controls how a source is fetched.
type CrawlSettings struct {
	MaxDepth            int               `json:"max_depth" bson:"max_depth"`
	DelayMs             int               `json:"delay_ms" bson:"delay_ms"`
	FollowExternalLinks bool              `json:"follow_external_links" bson:"follow_external_links"`
	RespectRobots       bool              `json:"respect_robots" bson:"respect_robots"`
	UserAgent           string            `json:"user_agent,omitempty" bson:"user_agent,omitempty"`
	Headers             map[string]string `json:"headers,omitempty" bson:"headers,omitempty"`
	TimeoutSeconds      int               `json:"timeout_seconds" bson:"timeout_seconds"`
	MaxRedirects        int               `json:"max_redirects" bson:"max_redirects"`
}

// Delay returns the configured politeness delay.
func (c CrawlSettings) Delay() time.Duration {
	return time.Duration(c.DelayMs) * time.Millisecond
}

// Timeout returns the configured fetch timeout.
func (c CrawlSettings) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Statistics is the crawl health block of a source.
type Statistics struct {
	TotalArticles    int        `json:"total_articles" bson:"total_articles"`
	TotalCrawls      int        `json:"total_crawls" bson:"total_crawls"`
	SuccessfulCrawls int        `json:"successful_crawls" bson:"successful_crawls"`
	SuccessRate      float64    `json:"success_rate" bson:"success_rate"`
	LastError        string     `json:"last_error,omitempty" bson:"last_error,omitempty"`
	LastErrorDate    *time.Time `json:"last_error_date,omitempty" bson:"last_error_date,omitempty"`
}

// ApplyDefaults fills zero-valued crawl settings with their defaults.
// RespectRobots is left alone because false is a meaningful choice.
func (s *Source) ApplyDefaults() {
	if s.Type == "" {
		s.Type = SourceTypeWebsite
	}
	s.Type = strings.ToLower(s.Type)
	if s.CrawlFrequencyMinutes == 0 {
		s.CrawlFrequencyMinutes = DefaultCrawlFrequencyMinutes
	}
	if s.CrawlSettings.DelayMs == 0 {
		s.CrawlSettings.DelayMs = DefaultCrawlDelayMs
	}
	if s.CrawlSettings.TimeoutSeconds == 0 {
		s.CrawlSettings.TimeoutSeconds = DefaultCrawlTimeoutSeconds
	}
	if s.CrawlSettings.MaxRedirects == 0 {
		s.CrawlSettings.MaxRedirects = DefaultCrawlMaxRedirects
	}
}

// Validate validates the Source entity fields.
func (s *Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Message: "name is required"}
	}
	if err := ValidateURL(s.URL); err != nil {
		return err
	}
	if !validSourceTypes[s.Type] {
		return &ValidationError{
			Field:   "type",
			Message: fmt.Sprintf("invalid type %q (must be news, blog, website, forum or rss)", s.Type),
		}
	}
	if s.CrawlFrequencyMinutes < 1 {
		return &ValidationError{Field: "crawl_frequency_minutes", Message: "must be at least 1"}
	}
	if s.CrawlSettings.MaxDepth < 0 || s.CrawlSettings.MaxDepth > MaxCrawlDepth {
		return &ValidationError{
			Field:   "crawl_settings.max_depth",
			Message: fmt.Sprintf("must be between 0 and %d", MaxCrawlDepth),
		}
	}
	if s.CrawlSettings.DelayMs < 0 {
		return &ValidationError{Field: "crawl_settings.delay_ms", Message: "must not be negative"}
	}
	if s.CrawlSettings.TimeoutSeconds < 0 || s.CrawlSettings.MaxRedirects < 0 {
		return &ValidationError{Field: "crawl_settings", Message: "timeout and redirects must not be negative"}
	}
	return nil
}

// IsDue reports whether the source should be crawled at now.
// A source that has never been scheduled is always due.
func (s *Source) IsDue(now time.Time) bool {
	if !s.IsActive {
		return false
	}
	return s.NextCrawl == nil || !s.NextCrawl.After(now)
}

// RecordCrawlAttempt applies the outcome of one crawl cycle to the source.
// Every attempt consumes a cycle: LastCrawled is set to now and NextCrawl to
// exactly now plus the crawl frequency, whether or not the crawl failed.
func (s *Source) RecordCrawlAttempt(now time.Time, persisted int, crawlErr error) {
	last := now
	next := now.Add(time.Duration(s.CrawlFrequencyMinutes) * time.Minute)
	s.LastCrawled = &last
	s.NextCrawl = &next

	s.Statistics.TotalCrawls++
	if crawlErr != nil {
		errAt := now
		s.Statistics.LastError = crawlErr.Error()
		s.Statistics.LastErrorDate = &errAt
	} else {
		s.Statistics.SuccessfulCrawls++
		s.Statistics.TotalArticles += persisted
		s.Statistics.LastError = ""
		s.Statistics.LastErrorDate = nil
	}
	s.Statistics.SuccessRate = float64(s.Statistics.SuccessfulCrawls) / float64(s.Statistics.TotalCrawls) * 100
	s.UpdatedAt = now
}
