package scraper

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve(t *testing.T) {
	b, _ := url.Parse("https://example.com/blog/")

	tests := []struct {
		href string
		want string
		ok   bool
	}{
		{"post-1", "https://example.com/blog/post-1", true},
		{"/about", "https://example.com/about", true},
		{"//cdn.example.com/a.png", "https://cdn.example.com/a.png", true},
		{"https://x.org/p#c", "https://x.org/p", true},
		{"#top", "", false},
		{"", "", false},
		{"javascript:void(0)", "", false},
		{"mailto:a@b.c", "", false},
		{"http://[::1", "", false},
	}
	for _, tt := range tests {
		got, ok := resolve(b, tt.href)
		assert.Equal(t, tt.ok, ok, tt.href)
		assert.Equal(t, tt.want, got, tt.href)
	}
}

func TestIsInternal(t *testing.T) {
	b, _ := url.Parse("https://Example.com/")
	assert.True(t, IsInternal(b, "https://example.com/x"))
	assert.True(t, IsInternal(b, "http://EXAMPLE.com:8080/x"))
	assert.False(t, IsInternal(b, "https://sub.example.com/x"))
}

func TestExtractHashtags(t *testing.T) {
	got := ExtractHashtags("Viva #SãoPaulo e #golang2025! Repito #saopaulo #SãoPaulo, mas não &#39; nem #123 nem a#b")
	assert.Equal(t, []string{"#sãopaulo", "#golang2025", "#saopaulo"}, got)
	assert.Nil(t, ExtractHashtags("sem tags"))
}
