package classifier

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classifier_requests_total",
			Help: "Remote sentiment classification calls by provider and status",
		},
		[]string{"provider", "status"},
	)

	requestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "classifier_request_duration_seconds",
			Help:    "Remote sentiment classification latency",
			Buckets: prometheus.ExponentialBuckets(0.25, 2, 8),
		},
		[]string{"provider"},
	)
)

func observe(provider string, start time.Time, err error) {
	requestDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())
	status := "success"
	if err != nil {
		status = "error"
	}
	requestsTotal.WithLabelValues(provider, status).Inc()
}
