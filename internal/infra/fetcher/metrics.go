package fetcher

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "page_fetch_requests_total",
			Help: "Page fetches by outcome",
		},
		[]string{"outcome"},
	)

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "page_fetch_duration_seconds",
		Help:    "Page fetch latency including body download",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
	})

	fetchBodyBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "page_fetch_body_bytes",
		Help:    "Decoded page body size",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
	})
)

func recordFetch(err error, d time.Duration, size int) {
	fetchDuration.Observe(d.Seconds())
	outcome := fetchOutcome(err)
	fetchRequestsTotal.WithLabelValues(outcome).Inc()
	if err == nil {
		fetchBodyBytes.Observe(float64(size))
	}
}

func fetchOutcome(err error) string {
	var statusErr *StatusError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrDisallowedByRobots):
		return "robots_denied"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.Is(err, ErrBodyTooLarge):
		return "too_large"
	case errors.Is(err, ErrTooManyRedirects):
		return "too_many_redirects"
	case errors.Is(err, ErrInvalidURL), errors.Is(err, ErrPrivateIP):
		return "rejected"
	case errors.As(err, &statusErr):
		return "http_status"
	default:
		return "error"
	}
}
