package fetcher

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for unparsable or non-http(s) URLs.
	ErrInvalidURL = errors.New("invalid url")
	// ErrPrivateIP is returned when a host resolves to a private address.
	ErrPrivateIP = errors.New("url resolves to private ip")
	// ErrTooManyRedirects is returned when the redirect cap is exceeded.
	ErrTooManyRedirects = errors.New("too many redirects")
	// ErrBodyTooLarge is returned when the (decoded) body exceeds MaxBodySize.
	ErrBodyTooLarge = errors.New("response body too large")
	// ErrDisallowedByRobots is returned when robots.txt forbids the path.
	ErrDisallowedByRobots = errors.New("disallowed by robots.txt")
	// ErrTimeout is returned when the per-request timeout elapses.
	ErrTimeout = errors.New("fetch timeout")
	// ErrReadabilityFailed is returned when no readable article text is found.
	ErrReadabilityFailed = errors.New("readability extraction failed")
)

// StatusError reports a non-2xx response.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d fetching %s", e.StatusCode, e.URL)
}
