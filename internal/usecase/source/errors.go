// Package source provides use cases for managing monitored sources.
// It validates operator input, applies crawl defaults and delegates
// persistence to the source repository. Crawl state is never written here.
package source

import "errors"

// Sentinel errors for source use case operations.
var (
	// ErrSourceNotFound indicates that the requested source was not found.
	ErrSourceNotFound = errors.New("source not found")

	// ErrDuplicateSource indicates that a source with the same URL already exists.
	ErrDuplicateSource = errors.New("source with this URL already exists")

	// ErrProjectNotFound indicates that the referenced project does not exist.
	ErrProjectNotFound = errors.New("project not found")
)
