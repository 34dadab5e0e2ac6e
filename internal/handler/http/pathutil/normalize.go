// Package pathutil normalizes request paths for metric labels and
// validates the string IDs carried in them.
package pathutil

import (
	"regexp"
	"strings"
)

// PathPattern represents a regex pattern and its corresponding normalized template.
type PathPattern struct {
	Pattern  *regexp.Regexp
	Template string
}

const idSegment = `[A-Za-z0-9_-]+`

// pathPatterns is evaluated in order; sub-resources come before their parents
// only when they would otherwise be shadowed.
var pathPatterns = []*PathPattern{
	{Pattern: regexp.MustCompile(`^/sources/` + idSegment + `$`), Template: "/sources/:id"},
	{Pattern: regexp.MustCompile(`^/sources/` + idSegment + `/crawl$`), Template: "/sources/:id/crawl"},

	{Pattern: regexp.MustCompile(`^/records/` + idSegment + `$`), Template: "/records/:id"},
	{Pattern: regexp.MustCompile(`^/records/` + idSegment + `/engagement$`), Template: "/records/:id/engagement"},

	{Pattern: regexp.MustCompile(`^/projects/` + idSegment + `$`), Template: "/projects/:id"},
}

// NormalizePath maps ID-bearing paths to their route template so metric
// label cardinality stays bounded.
//
//	NormalizePath("/sources/6f1c0a4e-...")        // "/sources/:id"
//	NormalizePath("/records/abc/engagement")      // "/records/:id/engagement"
//	NormalizePath("/health")                      // "/health"
//
// Query strings and a trailing slash are ignored.
func NormalizePath(path string) string {
	if idx := strings.IndexByte(path, '?'); idx != -1 {
		path = path[:idx]
	}
	if len(path) > 1 && path[len(path)-1] == '/' {
		path = path[:len(path)-1]
	}

	for _, p := range pathPatterns {
		if p.Pattern.MatchString(path) {
			return p.Template
		}
	}
	return path
}
