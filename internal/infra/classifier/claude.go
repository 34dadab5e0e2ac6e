package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/google/uuid"

	"webwatch/internal/domain/entity"
	"webwatch/internal/resilience/retry"
	"webwatch/internal/usecase/sentiment"
)

var (
	_ sentiment.Provider      = (*Claude)(nil)
	_ sentiment.BatchProvider = (*Claude)(nil)
)

// Claude classifies sentiment with Anthropic's Messages API.
type Claude struct {
	client    anthropic.Client
	guard     guard
	model     string
	maxTokens int
}

// NewClaude creates the provider. Extra request options (base URL in
// tests) are applied after the API key. The SDK's own retries are disabled
// because guard retries.
func NewClaude(apiKey string, cfg Config, opts ...option.RequestOption) *Claude {
	all := append([]option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}, opts...)
	c := &Claude{
		client:    anthropic.NewClient(all...),
		guard:     newGuard(ProviderClaude, cfg),
		model:     cfg.claudeModel(),
		maxTokens: cfg.MaxTokens,
	}
	slog.Info("initialized claude sentiment provider", slog.String("model", c.model))
	return c
}

func (c *Claude) Name() string { return ProviderClaude }

// Classify implements sentiment.Provider.
func (c *Claude) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	raw, err := c.guard.call(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, buildPrompt(text), c.maxTokens)
	})
	if err != nil {
		return entity.Sentiment{}, err
	}
	return parseVerdict(raw)
}

// ClassifyBatch implements sentiment.BatchProvider with one request per chunk.
func (c *Claude) ClassifyBatch(ctx context.Context, texts []string) ([]entity.Sentiment, error) {
	if len(texts) == 0 {
		return []entity.Sentiment{}, nil
	}
	raw, err := c.guard.call(ctx, func(ctx context.Context) (string, error) {
		return c.complete(ctx, buildBatchPrompt(texts), max(c.maxTokens, 64*len(texts)))
	})
	if err != nil {
		return nil, err
	}
	return parseBatch(raw, len(texts))
}

func (c *Claude) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	requestID := uuid.NewString()
	slog.DebugContext(ctx, "claude classification request", slog.String("request_id", requestID))

	msg, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.StatusCode, Message: "claude api error"}
		}
		return "", fmt.Errorf("claude api error: %w", err)
	}

	for _, block := range msg.Content {
		if tb, ok := block.AsAny().(anthropic.TextBlock); ok {
			return tb.Text, nil
		}
	}
	slog.WarnContext(ctx, "claude returned no text block", slog.String("request_id", requestID))
	return "", fmt.Errorf("%w: empty response", ErrMalformedResponse)
}
