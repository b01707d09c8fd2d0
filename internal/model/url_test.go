package model

import (
	"errors"
	"testing"
)

// TestNormalizeURL tests URL normalization used for deduplication.
func TestNormalizeURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"strips fragment", "https://site.test/a#section", "https://site.test/a"},
		{"lowercases scheme and host", "HTTPS://Site.TEST/Path", "https://site.test/Path"},
		{"adds root path", "https://site.test", "https://site.test/"},
		{"keeps query", "http://site.test/s?q=1&b=2", "http://site.test/s?q=1&b=2"},
		{"keeps port", "http://site.test:8080/x", "http://site.test:8080/x"},
		{"trims whitespace", "  https://site.test/a  ", "https://site.test/a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := NormalizeURL(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("NormalizeURL(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	t.Run("rejects non-http schemes", func(t *testing.T) {
		t.Parallel()

		for _, in := range []string{"mailto:a@b.test", "ftp://site.test/", "javascript:void(0)"} {
			if _, err := NormalizeURL(in); !errors.Is(err, ErrUnsupportedScheme) {
				t.Errorf("NormalizeURL(%q): expected ErrUnsupportedScheme, got %v", in, err)
			}
		}
	})

	t.Run("rejects relative URLs", func(t *testing.T) {
		t.Parallel()

		if _, err := NormalizeURL("/relative/path"); err == nil {
			t.Error("expected error for relative URL")
		}
	})

	t.Run("is idempotent", func(t *testing.T) {
		t.Parallel()

		once, err := NormalizeURL("HTTP://Site.test#top")
		if err != nil {
			t.Fatal(err)
		}
		twice, err := NormalizeURL(once)
		if err != nil {
			t.Fatal(err)
		}
		if once != twice {
			t.Errorf("normalization not idempotent: %q vs %q", once, twice)
		}
	})
}

// TestHost tests host extraction used for domain scoping.
func TestHost(t *testing.T) {
	t.Parallel()

	if got := Host("https://Site.Test:8443/a"); got != "site.test" {
		t.Errorf("expected site.test, got %q", got)
	}
	if got := Host("::not a url"); got != "" {
		t.Errorf("expected empty host for garbage, got %q", got)
	}
}

// TestScopeHost tests that scopes may be given as hosts or URLs.
func TestScopeHost(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]string{
		"site.test":                "site.test",
		"Site.Test":                "site.test",
		"https://site.test/docs":   "site.test",
		"site.test:8080":           "site.test",
		"http://SITE.test:9000/x/": "site.test",
	} {
		if got := ScopeHost(in); got != want {
			t.Errorf("ScopeHost(%q) = %q, want %q", in, got, want)
		}
	}
}
