package model

import "time"

// SearchResult is one ranked hit.
type SearchResult struct {
	// DocumentID is the id of the matching document.
	DocumentID string `json:"document_id"`

	// URL is filled in by presentation layers that know the id-to-URL mapping.
	URL string `json:"url,omitempty"`

	// Score is the accumulated TF-IDF score.
	Score float64 `json:"score"`
}

// SearchResponse is the answer to one query.
type SearchResponse struct {
	Query   string         `json:"query"`
	TopK    int            `json:"top_k"`
	Results []SearchResult `json:"results"`
}

// IndexSummary describes one completed index build.
type IndexSummary struct {
	BuildID string `json:"build_id"`

	// Documents is the number of documents in the index (N).
	Documents int `json:"documents"`

	// Skipped counts stored documents dropped for unreadable content.
	Skipped int `json:"skipped"`

	// Terms is the size of the vocabulary.
	Terms int `json:"terms"`

	Elapsed time.Duration `json:"elapsed"`
}
