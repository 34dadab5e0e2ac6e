// Package scraper turns fetched documents into article candidates.
//
// HTMLExtractor works on arbitrary pages using per-source selectors with
// generic fallbacks; FeedExtractor handles RSS/Atom sources.
package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"webwatch/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// Extraction caps.
const (
	MaxCandidates    = 20
	MaxTitleRunes    = 200
	MaxBodyRunes     = 10000
	MaxInternalLinks = 10
	MaxExternalLinks = 5
)

// Generic fallbacks tried in priority order when a source has no selector.
var (
	defaultContainerSelectors = []string{
		"article",
		"[itemtype*='Article']",
		".post",
		".article",
		".entry",
		".news-item",
		".story",
		".content",
		"main",
	}
	defaultTitleSelector  = "h1, h2, h3, .title, .headline, [itemprop='headline']"
	defaultBodySelector   = "p"
	defaultAuthorSelector = "[rel='author'], [itemprop='author'], .author, .byline"
	defaultDateSelector   = "time, [itemprop='datePublished'], .date, .published"
	defaultImageSelector  = "img"
	linkSelector          = "a[href]"
)

// HTMLExtractor extracts candidates from HTML listing pages.
type HTMLExtractor struct {
	logger *slog.Logger
}

// NewHTMLExtractor creates an extractor. A nil logger uses slog.Default().
func NewHTMLExtractor(logger *slog.Logger) *HTMLExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTMLExtractor{logger: logger.With("component", "html_extractor")}
}

// Extract parses document and returns every candidate that has a title, a
// body and a resolvable URL. A page without matching containers yields an
// empty slice and no error; only unparsable input or base URL fail.
func (e *HTMLExtractor) Extract(document []byte, baseURL string, sel entity.Selectors) ([]entity.ExtractedContent, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse HTML: %w", err)
	}

	containers := e.containers(doc.Selection, sel.Container)

	candidates := make([]entity.ExtractedContent, 0, containers.Length())
	containers.Each(func(i int, c *goquery.Selection) {
		content, ok := e.extractOne(c, base, sel)
		if !ok {
			e.logger.Debug("discarding candidate without required fields",
				slog.Int("index", i),
				slog.String("base_url", baseURL))
			return
		}
		candidates = append(candidates, content)
	})
	return candidates, nil
}

// containers returns at most MaxCandidates container elements. With no
// override the first fallback selector that matches anything wins.
func (e *HTMLExtractor) containers(root *goquery.Selection, override string) *goquery.Selection {
	if override != "" {
		return capSelection(query(root, override), MaxCandidates)
	}
	for _, s := range defaultContainerSelectors {
		if found := root.Find(s); found.Length() > 0 {
			return capSelection(found, MaxCandidates)
		}
	}
	return root.Find("__no_match__")
}

func (e *HTMLExtractor) extractOne(c *goquery.Selection, base *url.URL, sel entity.Selectors) (entity.ExtractedContent, bool) {
	out := entity.ExtractedContent{
		Title:  e.title(c, sel.Title),
		Body:   e.body(c, sel.Content),
		Author: firstText(c, or(sel.Author, defaultAuthorSelector)),
	}
	out.PublishedAt = e.date(c, or(sel.Date, defaultDateSelector))
	out.ImageURL = e.image(c, base, or(sel.Image, defaultImageSelector))

	links := collectLinks(c, base)
	out.InternalLinks = capStrings(links.internal, MaxInternalLinks)
	out.ExternalLinks = capStrings(links.external, MaxExternalLinks)
	out.URL = e.permalink(c, base, sel.Link, links)
	out.Tags = ExtractHashtags(out.Title + " " + out.Body)

	if out.Title == "" || out.Body == "" || out.URL == "" {
		return out, false
	}
	return out, true
}

// title uses the selector match, else falls back to the container text.
func (e *HTMLExtractor) title(c *goquery.Selection, selector string) string {
	if t := firstText(c, or(selector, defaultTitleSelector)); t != "" {
		return t
	}
	return truncateRunes(normalizeSpace(c.Text()), MaxTitleRunes)
}

// body joins all matches of selector as paragraphs; with no match it uses
// the whole container text.
func (e *HTMLExtractor) body(c *goquery.Selection, selector string) string {
	var parts []string
	query(c, or(selector, defaultBodySelector)).Each(func(_ int, s *goquery.Selection) {
		if t := normalizeSpace(s.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	text := strings.Join(parts, "\n\n")
	if text == "" {
		text = normalizeSpace(c.Text())
	}
	return truncateRunes(text, MaxBodyRunes)
}

// date reads the datetime/content attribute or the element text.
// Unparsable values are treated as absent.
func (e *HTMLExtractor) date(c *goquery.Selection, selector string) *time.Time {
	s := query(c, selector).First()
	if s.Length() == 0 {
		return nil
	}
	raw, ok := s.Attr("datetime")
	if !ok {
		raw, ok = s.Attr("content")
	}
	if !ok {
		raw = s.Text()
	}
	return ParseDate(raw)
}

func (e *HTMLExtractor) image(c *goquery.Selection, base *url.URL, selector string) string {
	s := query(c, selector).First()
	if s.Length() == 0 {
		return ""
	}
	for _, attr := range []string{"src", "data-src", "content"} {
		if v, ok := s.Attr(attr); ok {
			if abs, ok := resolve(base, v); ok {
				return abs
			}
		}
	}
	return ""
}

// permalink prefers the link selector, then the first internal link, then
// the base URL itself.
func (e *HTMLExtractor) permalink(c *goquery.Selection, base *url.URL, selector string, links linkSet) string {
	if selector != "" {
		if href, ok := query(c, selector).First().Attr("href"); ok {
			if abs, ok := resolve(base, href); ok {
				return abs
			}
		}
	}
	if len(links.internal) > 0 {
		return links.internal[0]
	}
	return base.String()
}

// ParseDate parses free-form date text. It returns nil for empty or
// unparsable input.
func ParseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil || t.IsZero() {
		return nil
	}
	return &t
}

func firstText(c *goquery.Selection, selector string) string {
	return normalizeSpace(query(c, selector).First().Text())
}

func capSelection(s *goquery.Selection, n int) *goquery.Selection {
	if s.Length() > n {
		return s.Slice(0, n)
	}
	return s
}

func capStrings(s []string, n int) []string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

func or(v, fallback string) string {
	if strings.TrimSpace(v) != "" {
		return v
	}
	return fallback
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncateRunes cuts s to at most n runes.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimSpace(string(r[:n]))
}
