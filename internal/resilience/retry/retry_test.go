package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond, Multiplier: 2}
}

func TestWithBackoff_RetriesTransientErrors(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(3), func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: http.StatusServiceUnavailable, Message: "busy"}
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithBackoff_StopsOnPermanentError(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(5), func() error {
		calls++
		return &HTTPError{StatusCode: http.StatusUnauthorized, Message: "bad key"}
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithBackoff_Exhausted(t *testing.T) {
	calls := 0
	err := WithBackoff(context.Background(), fastConfig(2), func() error {
		calls++
		return syscall.ECONNRESET
	})
	require.Error(t, err)
	assert.Equal(t, 2, calls)
	assert.Contains(t, err.Error(), "max retry attempts (2) exceeded")
	assert.ErrorIs(t, err, syscall.ECONNRESET)
}

func TestWithBackoff_ContextCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cfg := fastConfig(3)
	cfg.InitialDelay = time.Hour

	err := WithBackoff(ctx, cfg, func() error { return syscall.ECONNREFUSED })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIsRetryable(t *testing.T) {
	assert.False(t, IsRetryable(nil))
	assert.False(t, IsRetryable(context.DeadlineExceeded))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", &HTTPError{StatusCode: 429})))
	assert.True(t, IsRetryable(&HTTPError{StatusCode: 502}))
	assert.False(t, IsRetryable(&HTTPError{StatusCode: 404}))
	assert.False(t, IsRetryable(errors.New("parse error")))
}
