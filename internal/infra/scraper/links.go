package scraper

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

type linkSet struct {
	internal []string
	external []string
}

// collectLinks resolves every anchor in c and splits them by hostname.
// Malformed or non-http links are skipped individually.
func collectLinks(c *goquery.Selection, base *url.URL) linkSet {
	var ls linkSet
	seen := make(map[string]struct{})
	c.Find(linkSelector).Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		abs, ok := resolve(base, href)
		if !ok {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		if IsInternal(base, abs) {
			ls.internal = append(ls.internal, abs)
		} else {
			ls.external = append(ls.external, abs)
		}
	})
	return ls
}

// resolve turns href into an absolute http(s) URL against base.
// Fragments are dropped; fragment-only and script links are rejected.
func resolve(base *url.URL, href string) (string, bool) {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") {
		return "", false
	}
	ref, err := url.Parse(href)
	if err != nil {
		return "", false
	}
	abs := base.ResolveReference(ref)
	if abs.Scheme != "http" && abs.Scheme != "https" {
		return "", false
	}
	if abs.Host == "" {
		return "", false
	}
	abs.Fragment = ""
	return abs.String(), true
}

// IsInternal reports whether rawURL shares base's hostname (case-insensitive).
func IsInternal(base *url.URL, rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Hostname(), base.Hostname())
}

var hashtagPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_&/])#([\p{L}\p{N}_]*\p{L}[\p{L}\p{N}_]*)`)

// ExtractHashtags returns the distinct lowercase hashtags in text, each with
// its leading '#', in order of first appearance.
func ExtractHashtags(text string) []string {
	matches := hashtagPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(matches))
	tags := make([]string, 0, len(matches))
	for _, m := range matches {
		tag := "#" + strings.ToLower(m[1])
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		tags = append(tags, tag)
	}
	return tags
}
