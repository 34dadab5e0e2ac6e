package metrics

import (
	"time"
)

// Candidate outcomes.
const (
	OutcomePersisted = "persisted"
	OutcomeDuplicate = "duplicate"
	OutcomeExcluded  = "excluded"
	OutcomeUnmatched = "unmatched"
	OutcomeFailed    = "failed"
)

// RecordSourceCrawl records the duration of one crawl cycle.
func RecordSourceCrawl(sourceID string, duration time.Duration) {
	SourceCrawlDuration.WithLabelValues(sourceID).Observe(duration.Seconds())
}

// RecordSourceCrawlError records a failed crawl cycle.
// errorType is a short classification such as "fetch_failed" or "locked".
func RecordSourceCrawlError(sourceID, errorType string) {
	SourceCrawlErrors.WithLabelValues(sourceID, errorType).Inc()
}

// RecordCandidate records what happened to one extracted candidate.
func RecordCandidate(outcome string) {
	CandidatesTotal.WithLabelValues(outcome).Inc()
}

// RecordPersisted records a stored record with its sentiment label.
func RecordPersisted(label string) {
	CandidatesTotal.WithLabelValues(OutcomePersisted).Inc()
	RecordsPersistedTotal.WithLabelValues(label).Inc()
}

// RecordBatch records one scheduler batch run.
func RecordBatch(succeeded, failed int) {
	BatchRunsTotal.Inc()
	BatchSourcesTotal.WithLabelValues("succeeded").Add(float64(succeeded))
	BatchSourcesTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordContentFetchSuccess records a successful permalink deep fetch.
func RecordContentFetchSuccess(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("success").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchFailed records a failed permalink deep fetch.
func RecordContentFetchFailed(duration time.Duration) {
	ContentFetchAttemptsTotal.WithLabelValues("failure").Inc()
	ContentFetchDuration.Observe(duration.Seconds())
}

// RecordContentFetchSkipped records a deep fetch that was not needed.
func RecordContentFetchSkipped() {
	ContentFetchAttemptsTotal.WithLabelValues("skipped").Inc()
}

// UpdateSourcesActive sets the active source gauge.
func UpdateSourcesActive(count int) {
	SourcesActive.Set(float64(count))
}

// RecordDBQuery records the duration of a database operation.
func RecordDBQuery(operation string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateDBConnectionStats updates database connection pool statistics.
func UpdateDBConnectionStats(active, idle int) {
	DBConnectionsActive.Set(float64(active))
	DBConnectionsIdle.Set(float64(idle))
}
