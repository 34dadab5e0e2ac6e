package classifier

import (
	"log/slog"
	"strings"

	"webwatch/internal/usecase/sentiment"
)

// NewAnalyzer builds the analyzer selected by cfg.Provider. The lexicon for
// cfg.Language always sits behind the remote provider, and a provider
// without its API key degrades to the lexicon alone.
func NewAnalyzer(cfg Config, anthropicKey, openAIKey string, logger *slog.Logger) *sentiment.FallbackAnalyzer {
	if logger == nil {
		logger = slog.Default()
	}
	lex := sentiment.NewLexicon(cfg.Language)

	var primary sentiment.Provider
	switch strings.ToLower(cfg.Provider) {
	case ProviderClaude:
		if anthropicKey != "" {
			primary = NewClaude(anthropicKey, cfg)
		}
	case ProviderOpenAI:
		if openAIKey != "" {
			primary = NewOpenAI(openAIKey, cfg)
		}
	}

	if primary == nil && !strings.EqualFold(cfg.Provider, ProviderLexicon) {
		logger.Warn("sentiment provider API key missing, using lexicon only",
			slog.String("provider", cfg.Provider))
	}
	return sentiment.NewFallbackAnalyzer(primary, lex, logger)
}
