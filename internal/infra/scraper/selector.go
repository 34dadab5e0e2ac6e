package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"golang.org/x/net/html"
)

// isXPath reports whether selector should be evaluated as XPath.
func isXPath(selector string) bool {
	s := strings.TrimSpace(selector)
	return strings.HasPrefix(s, "/") || strings.HasPrefix(s, "./") || strings.HasPrefix(s, "(")
}

// query evaluates selector under every node of s. CSS selectors go through
// goquery; XPath selectors go through htmlquery and are mapped back into a
// goquery selection so callers can treat both the same way. An invalid
// expression yields an empty selection.
func query(s *goquery.Selection, selector string) *goquery.Selection {
	if !isXPath(selector) {
		return s.Find(selector)
	}

	expr := strings.TrimSpace(selector)
	var nodes []*html.Node
	for _, n := range s.Nodes {
		found, err := htmlquery.QueryAll(n, expr)
		if err != nil {
			return s.Find("__no_match__")
		}
		nodes = append(nodes, found...)
	}
	return s.FindNodes(nodes...)
}
