package model

import "time"

// Document is one fetched page.
//
// A Document is created once, when its URL is fetched, and is not mutated
// afterwards. Re-fetching the same URL produces a new Document with the same
// ID that replaces the old one in the store.
type Document struct {
	// ID is derived from the normalized URL, never from arrival order,
	// so re-running a crawl over overlapping URLs yields the same ids.
	ID string `json:"id"`

	// URL is the normalized URL the content was fetched from.
	URL string `json:"url"`

	// Raw is the response body as received.
	Raw []byte `json:"-"`

	// Text is the visible text extracted from Raw.
	// Empty until the document passes through text extraction.
	Text string `json:"text,omitempty"`

	// TF maps each token of Text to its raw occurrence count.
	TF map[string]int `json:"tf,omitempty"`

	// ContentHash is the hex SHA3-256 of Raw.
	ContentHash string `json:"content_hash"`

	// FetchedAt is when the content was stored.
	FetchedAt time.Time `json:"fetched_at"`
}
