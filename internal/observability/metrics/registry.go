// HTTP metrics are owned by handler/http.

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Crawl metrics track the scrape pipeline.
var (
	// SourceCrawlDuration measures one full crawl cycle of a source.
	SourceCrawlDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "source_crawl_duration_seconds",
			Help:    "Time taken to crawl one source",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
		[]string{"source_id"},
	)

	// SourceCrawlErrors counts failed crawl cycles by error type.
	SourceCrawlErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "source_crawl_errors_total",
			Help: "Total number of failed source crawls",
		},
		[]string{"source_id", "error_type"},
	)

	// CandidatesTotal counts extracted candidates by pipeline outcome.
	CandidatesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_candidates_total",
			Help: "Extracted candidates by outcome",
		},
		[]string{"outcome"}, // persisted, duplicate, excluded, unmatched, failed
	)

	// RecordsPersistedTotal counts stored records by sentiment label.
	RecordsPersistedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "records_persisted_total",
			Help: "Total number of persisted records",
		},
		[]string{"sentiment"},
	)

	// BatchRunsTotal counts scheduler batches.
	BatchRunsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "crawl_batch_runs_total",
			Help: "Total number of scheduler batch runs",
		},
	)

	// BatchSourcesTotal counts sources processed by scheduler batches.
	BatchSourcesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "crawl_batch_sources_total",
			Help: "Sources processed by batch runs",
		},
		[]string{"result"}, // succeeded, failed
	)

	// ContentFetchAttemptsTotal counts deep fetch attempts by result.
	ContentFetchAttemptsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "content_fetch_attempts_total",
			Help: "Total number of permalink deep fetch attempts",
		},
		[]string{"result"}, // success, failure, skipped
	)

	ContentFetchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "content_fetch_duration_seconds",
			Help:    "Time taken to deep fetch a permalink",
			Buckets: []float64{0.1, 0.2, 0.4, 0.8, 1.6, 3.2, 6.4, 12.8},
		},
	)

	// SourcesActive tracks active sources in storage.
	SourcesActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "sources_active",
			Help: "Number of active sources",
		},
	)
)

// Database metrics
var (
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10),
		},
		[]string{"operation"},
	)

	DBConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_active",
			Help: "Number of active database connections",
		},
	)

	DBConnectionsIdle = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "db_connections_idle",
			Help: "Number of idle database connections",
		},
	)
)
