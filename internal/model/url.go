package model

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	// ErrInvalidURL is returned when a string cannot be parsed as an absolute URL.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrUnsupportedScheme is returned for anything other than http and https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme: only http and https are crawled")
)

// NormalizeURL returns the canonical form of an absolute HTTP(S) URL.
// Two URLs are the same page if and only if their normalized strings are equal.
//
// Normalization:
//   - the fragment is removed
//   - scheme and host are lowercased
//   - an empty path becomes "/"
//
// Query strings are kept as-is; reordering parameters can change the page.
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", ErrInvalidURL, raw, err)
	}

	u.Scheme = strings.ToLower(u.Scheme)
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedScheme, raw)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: %q has no host", ErrInvalidURL, raw)
	}

	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawFragment = ""
	if u.Path == "" {
		u.Path = "/"
	}

	return u.String(), nil
}

// Host returns the lowercased host of rawURL without its port.
// It returns an empty string when rawURL cannot be parsed.
//
// Domain scoping compares this value only, so http://site.test:8080/a and
// https://site.test/b belong to the same scope.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Hostname())
}

// ScopeHost turns a domain scope given either as a bare host ("site.test")
// or as a URL ("https://site.test/") into the bare lowercased host.
func ScopeHost(scope string) string {
	scope = strings.TrimSpace(scope)
	if strings.Contains(scope, "://") {
		return Host(scope)
	}
	if h := Host("http://" + scope); h != "" {
		return h
	}
	return strings.ToLower(scope)
}
