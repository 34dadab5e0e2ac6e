// Package classifier adapts remote LLM APIs (Anthropic Claude, OpenAI) to
// the sentiment.Provider contract. Every call goes through a rate limiter,
// retry with backoff and a per-provider circuit breaker.
package classifier

import (
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	openai "github.com/sashabaranov/go-openai"

	"webwatch/internal/pkg/config"
	"webwatch/internal/resilience/retry"
)

// Provider names accepted in SENTIMENT_PROVIDER.
const (
	ProviderLexicon = "lexicon"
	ProviderClaude  = "claude"
	ProviderOpenAI  = "openai"
)

// maxInputRunes bounds the text sent to a remote model.
const maxInputRunes = 4000

// Config holds the remote classifier settings.
type Config struct {
	Provider string
	// Language selects the lexicon used as fallback ("pt" or "en").
	Language string
	// Model overrides the provider default when set.
	Model     string
	MaxTokens int
	Timeout   time.Duration
	// RequestsPerSecond caps calls to the remote API.
	RequestsPerSecond float64
	Retry             retry.Config
}

// DefaultConfig returns lexicon-only defaults.
func DefaultConfig() Config {
	return Config{
		Provider:          ProviderLexicon,
		Language:          "pt",
		MaxTokens:         512,
		Timeout:           30 * time.Second,
		RequestsPerSecond: 2,
		Retry:             retry.ClassifierConfig(),
	}
}

func (c Config) claudeModel() string {
	if c.Model != "" {
		return c.Model
	}
	return string(anthropic.ModelClaudeSonnet4_5_20250929)
}

func (c Config) openAIModel() string {
	if c.Model != "" {
		return c.Model
	}
	return openai.GPT4oMini
}

// LoadConfigFromEnv reads the classifier settings. Invalid values fall back
// to the defaults with a warning.
//
// Environment variables:
//   - SENTIMENT_PROVIDER (lexicon | claude | openai)
//   - SENTIMENT_LANGUAGE (pt | en)
//   - SENTIMENT_MODEL, SENTIMENT_TIMEOUT (30s), SENTIMENT_RPS (2)
func LoadConfigFromEnv(logger *slog.Logger) Config {
	d := DefaultConfig()
	var l config.Loader

	cfg := Config{
		Provider: config.Get(&l, "SENTIMENT_PROVIDER",
			config.LoadEnvWithFallback("SENTIMENT_PROVIDER", d.Provider, config.OneOf(ProviderLexicon, ProviderClaude, ProviderOpenAI))),
		Language: config.Get(&l, "SENTIMENT_LANGUAGE",
			config.LoadEnvWithFallback("SENTIMENT_LANGUAGE", d.Language, config.OneOf("pt", "en"))),
		Model:     config.LoadEnvString("SENTIMENT_MODEL", ""),
		MaxTokens: d.MaxTokens,
		Timeout: config.Get(&l, "SENTIMENT_TIMEOUT",
			config.LoadEnvDuration("SENTIMENT_TIMEOUT", d.Timeout, config.DurationRange(time.Second, 5*time.Minute))),
		RequestsPerSecond: float64(config.Get(&l, "SENTIMENT_RPS",
			config.LoadEnvInt("SENTIMENT_RPS", int(d.RequestsPerSecond), config.IntRange(1, 100)))),
		Retry: d.Retry,
	}

	for _, w := range l.Warnings {
		logger.Warn("classifier configuration fallback", slog.String("warning", w))
	}
	return cfg
}
