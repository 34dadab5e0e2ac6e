package entity

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// maxURLLength caps accepted URLs.
const maxURLLength = 2048

// lookupIP is replaced in tests to avoid real DNS queries.
var lookupIP = net.LookupIP

var privateCIDRs = mustParseCIDRs(
	"10.0.0.0/8",
	"172.16.0.0/12",
	"192.168.0.0/16",
	"169.254.0.0/16", // link-local, cloud metadata
	"fc00::/7",
)

func mustParseCIDRs(cidrs ...string) []*net.IPNet {
	nets := make([]*net.IPNet, 0, len(cidrs))
	for _, c := range cidrs {
		_, n, err := net.ParseCIDR(c)
		if err != nil {
			panic(err)
		}
		nets = append(nets, n)
	}
	return nets
}

// ValidateURL validates that rawURL is an absolute http(s) URL whose host does
// not resolve to a private network. Returns a *ValidationError on failure.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return &ValidationError{Field: "url", Message: "url is malformed"}
	}
	// HTTPまたはHTTPSスキームのみ許可
	if u.Scheme != "http" && u.Scheme != "https" {
		return &ValidationError{Field: "url", Message: "url must use http or https scheme"}
	}
	if u.Hostname() == "" {
		return &ValidationError{Field: "url", Message: "url must have a valid host"}
	}

	// SSRF対策: 名前解決できた場合のみプライベートIPを拒否する
	if ips, err := lookupIP(u.Hostname()); err == nil {
		for _, ip := range ips {
			if IsPrivateIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to private network"}
			}
		}
	}
	return nil
}

// IsPrivateIP reports whether ip is loopback, link-local, unspecified or in a
// private range.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	for _, n := range privateCIDRs {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// NormalizeTerms lowercases and trims terms, dropping blanks and
// case-insensitive duplicates while keeping first-seen order.
func NormalizeTerms(lists ...[]string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, list := range lists {
		for _, term := range list {
			t := strings.ToLower(strings.TrimSpace(term))
			if t == "" {
				continue
			}
			if _, ok := seen[t]; ok {
				continue
			}
			seen[t] = struct{}{}
			out = append(out, t)
		}
	}
	return out
}

// NormalizeHashtags is NormalizeTerms with a guaranteed leading '#'.
func NormalizeHashtags(lists ...[]string) []string {
	terms := NormalizeTerms(lists...)
	out := terms[:0]
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if !strings.HasPrefix(t, "#") {
			t = "#" + t
		}
		if t == "#" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
