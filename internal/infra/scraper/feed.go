package scraper

import (
	"bytes"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"webwatch/internal/domain/entity"

	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"
)

// FeedExtractor turns RSS/Atom/JSON feed documents into candidates.
// Selectors are ignored; item fields map directly onto candidate fields.
type FeedExtractor struct {
	logger *slog.Logger
}

// NewFeedExtractor creates a feed extractor. A nil logger uses slog.Default().
func NewFeedExtractor(logger *slog.Logger) *FeedExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FeedExtractor{logger: logger.With("component", "feed_extractor")}
}

// Extract parses document as a feed. It has the same contract as
// HTMLExtractor.Extract: items missing title, body or link are discarded.
func (f *FeedExtractor) Extract(document []byte, baseURL string, _ entity.Selectors) ([]entity.ExtractedContent, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", baseURL)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(document))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}

	items := feed.Items
	if len(items) > MaxCandidates {
		items = items[:MaxCandidates]
	}

	candidates := make([]entity.ExtractedContent, 0, len(items))
	for i, it := range items {
		c := f.fromItem(it, base)
		if c.Title == "" || c.Body == "" || c.URL == "" {
			f.logger.Debug("discarding feed item without required fields",
				slog.Int("index", i),
				slog.String("feed_url", baseURL))
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, nil
}

func (f *FeedExtractor) fromItem(it *gofeed.Item, base *url.URL) entity.ExtractedContent {
	// Content優先、なければDescriptionを使用
	rawHTML := it.Content
	if rawHTML == "" {
		rawHTML = it.Description
	}

	c := entity.ExtractedContent{
		Title: truncateRunes(normalizeSpace(it.Title), MaxTitleRunes*2),
	}

	if link, ok := resolve(base, it.Link); ok {
		c.URL = link
	}
	if it.Author != nil {
		c.Author = strings.TrimSpace(it.Author.Name)
	} else if len(it.Authors) > 0 && it.Authors[0] != nil {
		c.Author = strings.TrimSpace(it.Authors[0].Name)
	}
	switch {
	case it.PublishedParsed != nil:
		t := *it.PublishedParsed
		c.PublishedAt = &t
	case it.UpdatedParsed != nil:
		t := *it.UpdatedParsed
		c.PublishedAt = &t
	}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML)); err == nil {
		c.Body = truncateRunes(htmlText(doc.Selection), MaxBodyRunes)
		links := collectLinks(doc.Selection, base)
		c.InternalLinks = capStrings(links.internal, MaxInternalLinks)
		c.ExternalLinks = capStrings(links.external, MaxExternalLinks)
		if img, ok := doc.Find("img").First().Attr("src"); ok {
			if abs, ok := resolve(base, img); ok {
				c.ImageURL = abs
			}
		}
	}
	if it.Image != nil {
		if abs, ok := resolve(base, it.Image.URL); ok {
			c.ImageURL = abs
		}
	}

	tags := ExtractHashtags(c.Title + " " + c.Body)
	for _, cat := range it.Categories {
		if t := strings.ToLower(strings.TrimSpace(cat)); t != "" {
			tags = append(tags, t)
		}
	}
	c.Tags = tags
	return c
}

// htmlText flattens a fragment into paragraphs of plain text.
func htmlText(s *goquery.Selection) string {
	var parts []string
	s.Find("p, li, h1, h2, h3").Each(func(_ int, p *goquery.Selection) {
		if t := normalizeSpace(p.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	if len(parts) == 0 {
		return normalizeSpace(s.Text())
	}
	return strings.Join(parts, "\n\n")
}
