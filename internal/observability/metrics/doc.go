// Package metrics provides the Prometheus metrics registry and recorders.
//
// It covers the crawl pipeline (crawl duration per source,
// crawl errors, candidates by outcome, persisted records by sentiment,
// batch runs, deep fetches) and database pool statistics. All metrics are
// registered with the default registry via promauto and exposed on /metrics.
//
// Example usage:
//
//	start := time.Now()
//	res, err := orchestrator.CrawlSource(ctx, src)
//	metrics.RecordSourceCrawl(src.ID, time.Since(start))
package metrics
