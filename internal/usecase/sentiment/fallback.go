package sentiment

import (
	"context"
	"log/slog"

	"webwatch/internal/domain/entity"
)

// FallbackAnalyzer asks Primary first and degrades to Default on any error
// or malformed verdict. With a nil Primary it is just the Default lexicon.
type FallbackAnalyzer struct {
	Primary Provider
	Default *Lexicon
	Logger  *slog.Logger
}

// NewFallbackAnalyzer wires primary (may be nil) in front of the lexicon.
func NewFallbackAnalyzer(primary Provider, def *Lexicon, logger *slog.Logger) *FallbackAnalyzer {
	if def == nil {
		def = NewLexicon("pt")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &FallbackAnalyzer{Primary: primary, Default: def, Logger: logger}
}

// Analyze implements Analyzer.
func (a *FallbackAnalyzer) Analyze(ctx context.Context, text string) entity.Sentiment {
	if a.Primary == nil {
		return a.Default.Analyze(ctx, text)
	}

	s, err := a.Primary.Classify(ctx, text)
	if err == nil && Valid(s) {
		recordOutcome(a.Primary.Name(), "success")
		return s
	}

	if err != nil {
		a.Logger.Warn("sentiment provider failed, using lexicon",
			slog.String("provider", a.Primary.Name()),
			slog.Any("error", err))
	} else {
		a.Logger.Warn("sentiment provider returned invalid verdict, using lexicon",
			slog.String("provider", a.Primary.Name()),
			slog.String("label", s.Label),
			slog.Float64("score", s.Score))
	}
	recordOutcome(a.Primary.Name(), "fallback")
	return a.Default.Analyze(ctx, text)
}

// ClassifyBatch implements BatchProvider on top of the primary provider.
// Errors are returned so AnalyzeBatch can degrade the whole chunk.
func (a *FallbackAnalyzer) ClassifyBatch(ctx context.Context, texts []string) ([]entity.Sentiment, error) {
	if a.Primary == nil {
		return a.Default.ClassifyBatch(ctx, texts)
	}
	if bp, ok := a.Primary.(BatchProvider); ok {
		return bp.ClassifyBatch(ctx, texts)
	}
	out := make([]entity.Sentiment, len(texts))
	for i, t := range texts {
		s, err := a.Primary.Classify(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}
