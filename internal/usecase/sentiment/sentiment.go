// Package sentiment classifies text as positive, negative or neutral.
//
// The pipeline depends on the Analyzer contract only. Analyze never fails:
// an external Provider error degrades to the lexical classifier, and batch
// chunks that fail degrade to a neutral, low-confidence verdict.
package sentiment

import (
	"context"

	"webwatch/internal/domain/entity"
)

// Analyzer is the contract the crawl pipeline consumes.
type Analyzer interface {
	Analyze(ctx context.Context, text string) entity.Sentiment
}

// Provider is a classification backend that may fail (remote APIs).
type Provider interface {
	// Name identifies the provider in logs and metrics.
	Name() string
	Classify(ctx context.Context, text string) (entity.Sentiment, error)
}

// BatchProvider classifies several texts in one call.
// The returned slice must be index-aligned with texts.
type BatchProvider interface {
	ClassifyBatch(ctx context.Context, texts []string) ([]entity.Sentiment, error)
}

// Thresholds used to turn a score into a label.
const (
	PositiveThreshold = 0.1
	NegativeThreshold = -0.1
)

// LabelFor maps a score in [-1, 1] to its label.
func LabelFor(score float64) string {
	switch {
	case score > PositiveThreshold:
		return entity.SentimentPositive
	case score < NegativeThreshold:
		return entity.SentimentNegative
	default:
		return entity.SentimentNeutral
	}
}

// Valid reports whether s is a well-formed verdict.
func Valid(s entity.Sentiment) bool {
	switch s.Label {
	case entity.SentimentPositive, entity.SentimentNegative, entity.SentimentNeutral:
	default:
		return false
	}
	return s.Score >= -1 && s.Score <= 1 && s.Confidence >= 0 && s.Confidence <= 1
}

// clamp limits v to [lo, hi].
func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
