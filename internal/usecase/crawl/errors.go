package crawl

import "errors"

var (
	// ErrCrawlInProgress is returned when another crawl holds the source lock.
	ErrCrawlInProgress = errors.New("crawl already in progress")
	// ErrSourceInactive is returned by CrawlByID for deactivated sources.
	ErrSourceInactive = errors.New("source is inactive")
)

// PageError is a failure to fetch or extract the source page itself, as
// opposed to a storage failure around the crawl. Its text is what ends up
// in the source's last_error.
type PageError struct {
	Err error
}

func (e *PageError) Error() string { return e.Err.Error() }

func (e *PageError) Unwrap() error { return e.Err }
