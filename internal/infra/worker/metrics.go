package worker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"webwatch/internal/pkg/config"
)

// WorkerMetrics are the cron job metrics plus the worker_config_* family.
// NewWorkerMetrics registers on the default registry, so call it once per process.
type WorkerMetrics struct {
	*config.ConfigMetrics

	CronJobRunsTotal            *prometheus.CounterVec
	CronJobDurationSeconds      prometheus.Histogram
	CronJobSourcesTotal         *prometheus.CounterVec
	CronJobLastSuccessTimestamp prometheus.Gauge
	CronJobSkippedTotal         prometheus.Counter
}

func NewWorkerMetrics() *WorkerMetrics {
	return &WorkerMetrics{
		ConfigMetrics: config.NewConfigMetrics("worker"),

		CronJobRunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_runs_total",
			Help: "Total number of cron job runs by status (success/partial/failure)",
		}, []string{"status"}),

		CronJobDurationSeconds: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "worker_cron_job_duration_seconds",
			Help:    "Duration of cron job execution in seconds",
			Buckets: []float64{1, 5, 30, 60, 300, 900, 1800},
		}),

		CronJobSourcesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "worker_cron_job_sources_total",
			Help: "Sources processed by cron job runs, by result",
		}, []string{"result"}),

		CronJobLastSuccessTimestamp: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "worker_cron_job_last_success_timestamp",
			Help: "Unix timestamp of the last cron job run without failed sources",
		}),

		CronJobSkippedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "worker_cron_job_skipped_total",
			Help: "Cron ticks skipped because the previous run was still in progress",
		}),
	}
}

func (m *WorkerMetrics) RecordJobRun(status string) {
	m.CronJobRunsTotal.WithLabelValues(status).Inc()
}

func (m *WorkerMetrics) RecordJobDuration(seconds float64) {
	m.CronJobDurationSeconds.Observe(seconds)
}

func (m *WorkerMetrics) RecordSources(succeeded, failed int) {
	m.CronJobSourcesTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	m.CronJobSourcesTotal.WithLabelValues("failed").Add(float64(failed))
}

func (m *WorkerMetrics) RecordLastSuccess() {
	m.CronJobLastSuccessTimestamp.SetToCurrentTime()
}

func (m *WorkerMetrics) RecordSkipped() {
	m.CronJobSkippedTotal.Inc()
}
