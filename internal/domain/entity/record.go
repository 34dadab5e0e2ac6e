package entity

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"
)

// WordsPerMinute is the reading speed used for ReadingTime.
const WordsPerMinute = 200

// Sentiment labels.
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Sentiment is the classifier verdict for a piece of text.
// Score is in [-1, 1] and Confidence in [0, 1].
type Sentiment struct {
	Label      string  `json:"label" bson:"label"`
	Score      float64 `json:"score" bson:"score"`
	Confidence float64 `json:"confidence" bson:"confidence"`
}

// NeutralSentiment is the degraded result used when classification cannot run.
func NeutralSentiment() Sentiment {
	return Sentiment{Label: SentimentNeutral, Score: 0, Confidence: 0.1}
}

// ExtractedContent is an article candidate produced by one extraction pass.
// It is transient: only candidates that survive dedup and matching are stored.
type ExtractedContent struct {
	Title         string
	Body          string
	Author        string
	PublishedAt   *time.Time
	URL           string
	ImageURL      string
	Tags          []string
	InternalLinks []string
	ExternalLinks []string
}

// WordCount counts whitespace separated words in the body.
func (c *ExtractedContent) WordCount() int {
	return len(strings.Fields(c.Body))
}

// ReadingTime returns the estimated reading time in minutes (at least 1).
func (c *ExtractedContent) ReadingTime() int {
	return ReadingTimeMinutes(c.WordCount())
}

// ContentHash returns the dedup digest of the body.
func (c *ExtractedContent) ContentHash() string {
	return ContentHash(c.Body)
}

// ReadingTimeMinutes rounds words/WordsPerMinute up, with a floor of one minute.
func ReadingTimeMinutes(words int) int {
	minutes := (words + WordsPerMinute - 1) / WordsPerMinute
	if minutes < 1 {
		return 1
	}
	return minutes
}

// ContentHash is the hex SHA-256 of body. Title and URL are deliberately not
// part of the digest, so identical bodies under different URLs collide.
func ContentHash(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

// Engagement holds refreshable interaction counters.
type Engagement struct {
	Likes    int `json:"likes" bson:"likes"`
	Comments int `json:"comments" bson:"comments"`
	Shares   int `json:"shares" bson:"shares"`
	Views    int `json:"views" bson:"views"`
}

// Record is a persisted, deduplicated, matched and classified mention.
// Content fields never change after insert; only Engagement is refreshed.
type Record struct {
	ID              string     `json:"id" bson:"_id"`
	SourceID        string     `json:"source_id" bson:"source_id"`
	ProjectID       string     `json:"project_id,omitempty" bson:"project_id,omitempty"`
	Category        string     `json:"category,omitempty" bson:"category,omitempty"`
	Title           string     `json:"title" bson:"title"`
	Body            string     `json:"body" bson:"body"`
	Author          string     `json:"author,omitempty" bson:"author,omitempty"`
	PublishedAt     *time.Time `json:"published_at,omitempty" bson:"published_at,omitempty"`
	URL             string     `json:"url" bson:"url"`
	ImageURL        string     `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Tags            []string   `json:"tags,omitempty" bson:"tags,omitempty"`
	InternalLinks   []string   `json:"internal_links,omitempty" bson:"internal_links,omitempty"`
	ExternalLinks   []string   `json:"external_links,omitempty" bson:"external_links,omitempty"`
	WordCount       int        `json:"word_count" bson:"word_count"`
	ReadingTime     int        `json:"reading_time" bson:"reading_time"`
	ContentHash     string     `json:"content_hash" bson:"content_hash"`
	MatchedKeywords []string   `json:"matched_keywords" bson:"matched_keywords"`
	MatchedHashtags []string   `json:"matched_hashtags" bson:"matched_hashtags"`
	Sentiment       Sentiment  `json:"sentiment" bson:"sentiment"`
	Engagement      Engagement `json:"engagement" bson:"engagement"`
	IsActive        bool       `json:"is_active" bson:"is_active"`
	IsDuplicate     bool       `json:"is_duplicate" bson:"is_duplicate"`
	ScrapedAt       time.Time  `json:"scraped_at" bson:"scraped_at"`
}

// NewRecord builds a Record from a candidate that passed every gate.
func NewRecord(id string, src *Source, c *ExtractedContent, hash string, keywords, hashtags []string, s Sentiment, now time.Time) *Record {
	if keywords == nil {
		keywords = []string{}
	}
	if hashtags == nil {
		hashtags = []string{}
	}
	words := c.WordCount()
	return &Record{
		ID:              id,
		SourceID:        src.ID,
		ProjectID:       src.ProjectID,
		Category:        src.Category,
		Title:           c.Title,
		Body:            c.Body,
		Author:          c.Author,
		PublishedAt:     c.PublishedAt,
		URL:             c.URL,
		ImageURL:        c.ImageURL,
		Tags:            c.Tags,
		InternalLinks:   c.InternalLinks,
		ExternalLinks:   c.ExternalLinks,
		WordCount:       words,
		ReadingTime:     ReadingTimeMinutes(words),
		ContentHash:     hash,
		MatchedKeywords: keywords,
		MatchedHashtags: hashtags,
		Sentiment:       s,
		IsActive:        true,
		ScrapedAt:       now,
	}
}

// RecordFilter narrows record listings. Zero values mean "no filter".
type RecordFilter struct {
	SourceID  string
	ProjectID string
	Sentiment string
	From      *time.Time
	To        *time.Time
	Limit     int
	Offset    int
}
