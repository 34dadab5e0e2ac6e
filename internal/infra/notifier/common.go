package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RateLimitError represents a 429 rate limit error from a webhook service.
type RateLimitError struct {
	RetryAfter time.Duration
	Message    string
}

func (e *RateLimitError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s (retry after %v)", e.Message, e.RetryAfter)
	}
	return fmt.Sprintf("rate limit exceeded (retry after %v)", e.RetryAfter)
}

// ClientError represents a 4xx client error from a webhook service.
type ClientError struct {
	StatusCode int
	Message    string
}

func (e *ClientError) Error() string { return e.Message }

// ServerError represents a 5xx server error from a webhook service.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string { return e.Message }

// isRetryableError reports whether a failed attempt is worth repeating.
// 4xx are final; 429 is handled separately through RetryAfter.
func isRetryableError(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return false
	}
	var rateLimitErr *RateLimitError
	return !errors.As(err, &rateLimitErr)
}

const defaultRetryAfter = 5 * time.Second

// extractRetryAfter reads retry_after (seconds, Discord body) or the
// Retry-After header, defaulting to 5s.
func extractRetryAfter(resp *http.Response, body []byte) time.Duration {
	var payload struct {
		RetryAfter float64 `json:"retry_after"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.RetryAfter > 0 {
		return time.Duration(payload.RetryAfter * float64(time.Second))
	}
	if h := resp.Header.Get("Retry-After"); h != "" {
		if seconds, err := strconv.Atoi(h); err == nil && seconds > 0 {
			return time.Duration(seconds) * time.Second
		}
	}
	return defaultRetryAfter
}

// truncate cuts text to maxRunes, appending suffix when it had to cut.
func truncate(text string, maxRunes int, suffix string) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	keep := maxRunes - utf8.RuneCountInString(suffix)
	if keep < 0 {
		keep = 0
	}
	return string([]rune(text)[:keep]) + suffix
}

// webhook is the delivery core shared by the Slack and Discord notifiers.
type webhook struct {
	channel     string
	url         string
	client      *http.Client
	limiter     *rate.Limiter
	maxAttempts int
	baseDelay   time.Duration
	logger      *slog.Logger
}

func newWebhook(channel, url string, timeout time.Duration, limit rate.Limit, burst int, logger *slog.Logger) *webhook {
	if logger == nil {
		logger = slog.Default()
	}
	return &webhook{
		channel:     channel,
		url:         url,
		client:      &http.Client{Timeout: timeout},
		limiter:     rate.NewLimiter(limit, burst),
		maxAttempts: 2,
		baseDelay:   5 * time.Second,
		logger:      logger.With("component", channel+"_notifier"),
	}
}

// post delivers payload, waiting for the rate limiter first and retrying
// once on 5xx, network errors and 429.
func (w *webhook) post(ctx context.Context, recordID string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal webhook payload: %w", err)
	}
	log := w.logger.With(slog.String("request_id", uuid.NewString()), slog.String("record_id", recordID))

	if err := w.limiter.Wait(ctx); err != nil {
		recordNotification(w.channel, "rate_limited")
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var lastErr error
	for attempt := 1; attempt <= w.maxAttempts; attempt++ {
		err := w.send(ctx, body)
		if err == nil {
			recordNotification(w.channel, "success")
			log.Info("mention alert delivered", slog.Int("attempt", attempt))
			return nil
		}
		lastErr = err

		var delay time.Duration
		var rateLimitErr *RateLimitError
		switch {
		case errors.As(err, &rateLimitErr):
			delay = rateLimitErr.RetryAfter
		case !isRetryableError(err):
			recordNotification(w.channel, "failure")
			log.Error("mention alert rejected", slog.Any("error", err), slog.Int("attempt", attempt))
			return err
		default:
			delay = w.baseDelay * time.Duration(attempt)
		}
		if attempt == w.maxAttempts {
			break
		}

		log.Warn("mention alert failed, retrying",
			slog.Any("error", err), slog.Int("attempt", attempt), slog.Duration("delay", delay))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			recordNotification(w.channel, "failure")
			return fmt.Errorf("context canceled during retry backoff: %w", ctx.Err())
		}
	}

	recordNotification(w.channel, "failure")
	log.Error("mention alert failed after all retries", slog.Any("error", lastErr), slog.Int("max_attempts", w.maxAttempts))
	return fmt.Errorf("%s notification failed after %d attempts: %w", w.channel, w.maxAttempts, lastErr)
}

// send performs one attempt and classifies the response.
func (w *webhook) send(ctx context.Context, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("execute http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return nil
	case resp.StatusCode == http.StatusTooManyRequests:
		return &RateLimitError{Message: w.channel + " rate limit exceeded", RetryAfter: extractRetryAfter(resp, respBody)}
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return &ClientError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s client error: %s", w.channel, respBody)}
	case resp.StatusCode >= 500:
		return &ServerError{StatusCode: resp.StatusCode, Message: fmt.Sprintf("%s server error: %s", w.channel, respBody)}
	}
	return fmt.Errorf("unexpected status code %d: %s", resp.StatusCode, respBody)
}
