package http

import (
	"net/http"
	"strconv"
	"time"

	"webwatch/internal/handler/http/pathutil"
	"webwatch/internal/handler/http/responsewriter"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// apiMetrics are the RED metrics for the management API. Paths are
// labelled by route template so source IDs do not create new series.
type apiMetrics struct {
	requests  *prometheus.CounterVec
	latency   *prometheus.HistogramVec
	inFlight  prometheus.Gauge
	respBytes *prometheus.HistogramVec
}

func newAPIMetrics(reg prometheus.Registerer) *apiMetrics {
	f := promauto.With(reg)
	return &apiMetrics{
		requests: f.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "path", "status"}),
		// 手動クロールは数十秒かかるため上限を広めに取る
		latency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 15, 30, 60, 120},
		}, []string{"method", "path"}),
		inFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Requests currently being served.",
		}),
		respBytes: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "Response body size.",
			Buckets: prometheus.ExponentialBuckets(64, 4, 8),
		}, []string{"path"}),
	}
}

func (m *apiMetrics) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.inFlight.Inc()
		defer m.inFlight.Dec()

		path := pathutil.NormalizePath(r.URL.Path)
		rec := responsewriter.Wrap(w)
		start := time.Now()
		next.ServeHTTP(rec, r)

		m.requests.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
		m.latency.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
		m.respBytes.WithLabelValues(path).Observe(float64(rec.Bytes()))
	})
}

var defaultAPIMetrics = newAPIMetrics(prometheus.DefaultRegisterer)

// MetricsMiddleware records request metrics on the default registry.
func MetricsMiddleware(next http.Handler) http.Handler {
	return defaultAPIMetrics.middleware(next)
}

// MetricsHandler serves the default registry, which also carries the crawl
// and classifier metrics.
func MetricsHandler() http.Handler {
	return promhttp.Handler()
}
