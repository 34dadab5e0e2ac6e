package entity

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestContentHash_BodyOnly(t *testing.T) {
	a := &ExtractedContent{Title: "A", URL: "https://a.example.com/1", Body: "same body"}
	b := &ExtractedContent{Title: "B", URL: "https://b.example.com/2", Body: "same body"}
	c := &ExtractedContent{Title: "A", URL: "https://a.example.com/1", Body: "same body!"}

	assert.Equal(t, a.ContentHash(), b.ContentHash())
	assert.NotEqual(t, a.ContentHash(), c.ContentHash())
	assert.Len(t, a.ContentHash(), 64)
}

func TestReadingTimeMinutes(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{1, 1},
		{200, 1},
		{201, 2},
		{1000, 5},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadingTimeMinutes(tt.words), "words=%d", tt.words)
	}
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	src := &Source{ID: "src-1", ProjectID: "proj-1", Category: "tech"}
	c := &ExtractedContent{
		Title: "Title",
		Body:  strings.Repeat("word ", 450),
		URL:   "https://example.com/a",
	}

	r := NewRecord("rec-1", src, c, "hash", nil, []string{"#go"}, NeutralSentiment(), now)

	assert.Equal(t, "src-1", r.SourceID)
	assert.Equal(t, "proj-1", r.ProjectID)
	assert.Equal(t, "tech", r.Category)
	assert.Equal(t, 450, r.WordCount)
	assert.Equal(t, 3, r.ReadingTime)
	assert.Equal(t, []string{}, r.MatchedKeywords)
	assert.Equal(t, []string{"#go"}, r.MatchedHashtags)
	assert.True(t, r.IsActive)
	assert.False(t, r.IsDuplicate)
	assert.Equal(t, now, r.ScrapedAt)
}
