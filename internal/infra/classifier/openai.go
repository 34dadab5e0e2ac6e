package classifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"webwatch/internal/domain/entity"
	"webwatch/internal/resilience/retry"
	"webwatch/internal/usecase/sentiment"
)

var (
	_ sentiment.Provider      = (*OpenAI)(nil)
	_ sentiment.BatchProvider = (*OpenAI)(nil)
)

// OpenAI classifies sentiment with the chat completions API.
type OpenAI struct {
	client    *openai.Client
	guard     guard
	model     string
	maxTokens int
}

// NewOpenAI creates the provider for the public API.
func NewOpenAI(apiKey string, cfg Config) *OpenAI {
	return NewOpenAIWithClientConfig(openai.DefaultConfig(apiKey), cfg)
}

// NewOpenAIWithClientConfig allows a custom base URL or HTTP client.
func NewOpenAIWithClientConfig(cc openai.ClientConfig, cfg Config) *OpenAI {
	o := &OpenAI{
		client:    openai.NewClientWithConfig(cc),
		guard:     newGuard(ProviderOpenAI, cfg),
		model:     cfg.openAIModel(),
		maxTokens: cfg.MaxTokens,
	}
	slog.Info("initialized openai sentiment provider", slog.String("model", o.model))
	return o
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

// Classify implements sentiment.Provider.
func (o *OpenAI) Classify(ctx context.Context, text string) (entity.Sentiment, error) {
	raw, err := o.guard.call(ctx, func(ctx context.Context) (string, error) {
		return o.complete(ctx, buildPrompt(text), o.maxTokens)
	})
	if err != nil {
		return entity.Sentiment{}, err
	}
	return parseVerdict(raw)
}

// ClassifyBatch implements sentiment.BatchProvider.
func (o *OpenAI) ClassifyBatch(ctx context.Context, texts []string) ([]entity.Sentiment, error) {
	if len(texts) == 0 {
		return []entity.Sentiment{}, nil
	}
	raw, err := o.guard.call(ctx, func(ctx context.Context) (string, error) {
		return o.complete(ctx, buildBatchPrompt(texts), max(o.maxTokens, 64*len(texts)))
	})
	if err != nil {
		return nil, err
	}
	return parseBatch(raw, len(texts))
}

func (o *OpenAI) complete(ctx context.Context, prompt string, maxTokens int) (string, error) {
	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     o.model,
		MaxTokens: maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) {
			return "", &retry.HTTPError{StatusCode: apiErr.HTTPStatusCode, Message: apiErr.Message}
		}
		var reqErr *openai.RequestError
		if errors.As(err, &reqErr) {
			return "", &retry.HTTPError{StatusCode: reqErr.HTTPStatusCode, Message: "openai request failed"}
		}
		return "", fmt.Errorf("openai api error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrMalformedResponse)
	}
	return resp.Choices[0].Message.Content, nil
}
