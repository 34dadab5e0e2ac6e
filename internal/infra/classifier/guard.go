package classifier

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"webwatch/internal/resilience/circuitbreaker"
	"webwatch/internal/resilience/retry"
)

// guard wraps one remote completion call with timeout, rate limit, retry
// and circuit breaker, in that order from the outside in.
type guard struct {
	name    string
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	retry   retry.Config
	timeout time.Duration
}

func newGuard(name string, cfg Config) guard {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = DefaultConfig().RequestsPerSecond
	}
	return guard{
		name:    name,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
		breaker: circuitbreaker.New(circuitbreaker.ClassifierConfig(name)),
		retry:   cfg.Retry,
		timeout: cfg.Timeout,
	}
}

func (g guard) call(ctx context.Context, fn func(ctx context.Context) (string, error)) (string, error) {
	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	var out string
	err := retry.WithBackoff(ctx, g.retry, func() error {
		if err := g.limiter.Wait(ctx); err != nil {
			return err
		}
		res, err := circuitbreaker.Do(g.breaker, func() (string, error) {
			start := time.Now()
			s, err := fn(ctx)
			observe(g.name, start, err)
			return s, err
		})
		if err != nil {
			if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
				return fmt.Errorf("%s api unavailable: %w", g.name, err)
			}
			return err
		}
		out = res
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s classify: %w", g.name, err)
	}
	return out, nil
}
