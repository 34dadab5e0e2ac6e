// Package resilience groups the fault tolerance helpers used around remote
// calls: circuit breakers (sony/gobreaker) and retry with exponential
// backoff. Page fetches of monitored sources deliberately use neither; a
// failed crawl waits for its next scheduled cycle.
package resilience
