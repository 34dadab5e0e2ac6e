package pathutil

import (
	"strings"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	const id = "6f1c0a4e-8d2b-4f7e-9a51-2c3d4e5f6a7b"
	tests := []struct {
		name     string
		path     string
		expected string
	}{
		{name: "source by id", path: "/sources/" + id, expected: "/sources/:id"},
		{name: "source trailing slash", path: "/sources/" + id + "/", expected: "/sources/:id"},
		{name: "source with query", path: "/sources/" + id + "?x=1", expected: "/sources/:id"},
		{name: "manual crawl", path: "/sources/" + id + "/crawl", expected: "/sources/:id/crawl"},
		{name: "record by id", path: "/records/r-1", expected: "/records/:id"},
		{name: "record engagement", path: "/records/r-1/engagement", expected: "/records/:id/engagement"},
		{name: "project by id", path: "/projects/p_1", expected: "/projects/:id"},

		// 静的パスはそのまま
		{name: "source list", path: "/sources", expected: "/sources"},
		{name: "records list query", path: "/records?sentiment=negative", expected: "/records"},
		{name: "health", path: "/health", expected: "/health"},
		{name: "metrics", path: "/metrics", expected: "/metrics"},
		{name: "root", path: "/", expected: "/"},
		{name: "unknown nested", path: "/sources/a/b/c", expected: "/sources/a/b/c"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizePath(tt.path); got != tt.expected {
				t.Errorf("NormalizePath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	valid := []string{"6f1c0a4e-8d2b-4f7e-9a51-2c3d4e5f6a7b", "abc", "a_b-C9"}
	for _, id := range valid {
		if err := ValidateID(id); err != nil {
			t.Errorf("ValidateID(%q) = %v, want nil", id, err)
		}
	}

	invalid := []string{"", "../etc", "a b", "a/b", "ü", strings.Repeat("a", MaxIDLength+1)}
	for _, id := range invalid {
		if err := ValidateID(id); err != ErrInvalidID {
			t.Errorf("ValidateID(%q) = %v, want ErrInvalidID", id, err)
		}
	}
}
