package classifier

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"webwatch/internal/domain/entity"
	"webwatch/internal/resilience/retry"
)

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.RequestsPerSecond = 100
	cfg.Timeout = 5 * time.Second
	cfg.Retry = retry.Config{MaxAttempts: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, Multiplier: 1}
	return cfg
}

/* ───────── レスポンス解析 ───────── */

func TestParseVerdict(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    entity.Sentiment
		wantErr bool
	}{
		{
			name: "plain json",
			raw:  `{"label":"positive","score":0.8,"confidence":0.9}`,
			want: entity.Sentiment{Label: "positive", Score: 0.8, Confidence: 0.9},
		},
		{
			name: "code fence and mixed case label",
			raw:  "```json\n{\"label\":\"Negative\",\"score\":-0.4,\"confidence\":0.6}\n```",
			want: entity.Sentiment{Label: "negative", Score: -0.4, Confidence: 0.6},
		},
		{name: "no json", raw: "I think it is positive", wantErr: true},
		{name: "unknown label", raw: `{"label":"mixed","score":0,"confidence":0.5}`, wantErr: true},
		{name: "score out of range", raw: `{"label":"positive","score":3,"confidence":0.5}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseBatch(t *testing.T) {
	raw := `Here you go: [{"label":"positive","score":0.5,"confidence":0.7},{"label":"neutral","score":0,"confidence":0.3}]`
	got, err := parseBatch(raw, 2)
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentPositive, got[0].Label)
	assert.Equal(t, entity.SentimentNeutral, got[1].Label)

	_, err = parseBatch(raw, 3)
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

func TestBuildBatchPrompt_NumbersTexts(t *testing.T) {
	p := buildBatchPrompt([]string{"first", "second"})
	assert.Contains(t, p, "[1]\nfirst")
	assert.Contains(t, p, "[2]\nsecond")
}

func TestTruncate(t *testing.T) {
	long := strings.Repeat("é", maxInputRunes+10)
	assert.Equal(t, maxInputRunes, len([]rune(truncate(long))))
	assert.Equal(t, "short", truncate("short"))
}

/* ───────── Claude ───────── */

func claudeServer(t *testing.T, status func(n int32) int, text string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := calls.Add(1)
		assert.True(t, strings.HasSuffix(r.URL.Path, "/v1/messages"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		code := status(n)
		w.WriteHeader(code)
		if code != http.StatusOK {
			_, _ = w.Write([]byte(`{"type":"error","error":{"type":"api_error","message":"boom"}}`))
			return
		}
		body, _ := json.Marshal(map[string]any{
			"id":            "msg_test",
			"type":          "message",
			"role":          "assistant",
			"model":         "claude-test",
			"content":       []map[string]any{{"type": "text", "text": text}},
			"stop_reason":   "end_turn",
			"stop_sequence": nil,
			"usage":         map[string]any{"input_tokens": 10, "output_tokens": 5},
		})
		_, _ = w.Write(body)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func TestClaude_Classify(t *testing.T) {
	srv, _ := claudeServer(t, func(int32) int { return http.StatusOK },
		`{"label":"negative","score":-0.7,"confidence":0.85}`)

	c := NewClaude("test-key", testConfig(), option.WithBaseURL(srv.URL))
	got, err := c.Classify(context.Background(), "o serviço foi péssimo")
	require.NoError(t, err)
	assert.Equal(t, entity.Sentiment{Label: "negative", Score: -0.7, Confidence: 0.85}, got)
	assert.Equal(t, "claude", c.Name())
}

func TestClaude_RetriesServerErrors(t *testing.T) {
	srv, calls := claudeServer(t, func(n int32) int {
		if n == 1 {
			return http.StatusInternalServerError
		}
		return http.StatusOK
	}, `{"label":"positive","score":0.6,"confidence":0.7}`)

	c := NewClaude("test-key", testConfig(), option.WithBaseURL(srv.URL))
	got, err := c.Classify(context.Background(), "ótimo")
	require.NoError(t, err)
	assert.Equal(t, entity.SentimentPositive, got.Label)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClaude_DoesNotRetryClientErrors(t *testing.T) {
	srv, calls := claudeServer(t, func(int32) int { return http.StatusBadRequest }, "")

	c := NewClaude("test-key", testConfig(), option.WithBaseURL(srv.URL))
	_, err := c.Classify(context.Background(), "text")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClaude_ClassifyBatch(t *testing.T) {
	srv, _ := claudeServer(t, func(int32) int { return http.StatusOK },
		`[{"label":"positive","score":0.5,"confidence":0.6},{"label":"negative","score":-0.5,"confidence":0.6}]`)

	c := NewClaude("test-key", testConfig(), option.WithBaseURL(srv.URL))
	got, err := c.ClassifyBatch(context.Background(), []string{"bom", "ruim"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, entity.SentimentNegative, got[1].Label)

	empty, err := c.ClassifyBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

/* ───────── OpenAI ───────── */

func openAIServer(t *testing.T, status int, content string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = w.Write([]byte(`{"error":{"message":"invalid request","type":"invalid_request_error"}}`))
			return
		}
		_, _ = fmt.Fprintf(w, `{"id":"chatcmpl-1","object":"chat.completion","created":1,"model":"gpt-4o-mini",
"choices":[{"index":0,"message":{"role":"assistant","content":%q},"finish_reason":"stop"}],
"usage":{"prompt_tokens":10,"completion_tokens":5,"total_tokens":15}}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestOpenAI(srv *httptest.Server) *OpenAI {
	cc := openai.DefaultConfig("test-key")
	cc.BaseURL = srv.URL + "/v1"
	return NewOpenAIWithClientConfig(cc, testConfig())
}

func TestOpenAI_Classify(t *testing.T) {
	srv := openAIServer(t, http.StatusOK, `{"label":"neutral","score":0.05,"confidence":0.4}`)

	got, err := newTestOpenAI(srv).Classify(context.Background(), "the meeting is at 3pm")
	require.NoError(t, err)
	assert.Equal(t, entity.Sentiment{Label: "neutral", Score: 0.05, Confidence: 0.4}, got)
}

func TestOpenAI_APIErrorIsClassified(t *testing.T) {
	srv := openAIServer(t, http.StatusBadRequest, "")

	_, err := newTestOpenAI(srv).Classify(context.Background(), "text")
	var httpErr *retry.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
}

func TestOpenAI_MalformedAnswer(t *testing.T) {
	srv := openAIServer(t, http.StatusOK, "positive, probably")

	_, err := newTestOpenAI(srv).Classify(context.Background(), "text")
	assert.ErrorIs(t, err, ErrMalformedResponse)
}

/* ───────── ファクトリ ───────── */

func TestNewAnalyzer(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		claudeKey   string
		openAIKey   string
		wantPrimary string
	}{
		{name: "lexicon", provider: ProviderLexicon},
		{name: "claude with key", provider: "Claude", claudeKey: "k", wantPrimary: ProviderClaude},
		{name: "claude without key", provider: ProviderClaude},
		{name: "openai with key", provider: ProviderOpenAI, openAIKey: "k", wantPrimary: ProviderOpenAI},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			cfg.Provider = tt.provider
			a := NewAnalyzer(cfg, tt.claudeKey, tt.openAIKey, nil)
			require.NotNil(t, a.Default)
			if tt.wantPrimary == "" {
				assert.Nil(t, a.Primary)
				return
			}
			require.NotNil(t, a.Primary)
			assert.Equal(t, tt.wantPrimary, a.Primary.Name())
		})
	}
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("SENTIMENT_PROVIDER", "openai")
	t.Setenv("SENTIMENT_LANGUAGE", "klingon")
	t.Setenv("SENTIMENT_TIMEOUT", "10s")

	cfg := LoadConfigFromEnv(discardLogger())
	assert.Equal(t, "openai", cfg.Provider)
	assert.Equal(t, "pt", cfg.Language)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
