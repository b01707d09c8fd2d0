package model

import "time"

// CrawlStats is the completion summary of one crawl run.
// A run always produces one, even when every fetch failed.
type CrawlStats struct {
	// RunID identifies the run in the run log.
	RunID string `json:"run_id"`

	// Scope is the host the run was restricted to.
	Scope string `json:"scope"`

	// PagesFetched counts successful fetches. Never exceeds MaxPages.
	PagesFetched int `json:"pages_fetched"`

	// MaxPages is the budget the run was started with.
	MaxPages int `json:"max_pages"`

	// UniqueURLs is the size of the visited set.
	UniqueURLs int `json:"unique_urls"`

	// Duplicates counts URLs that were suppressed because they had already
	// been visited, whether noticed at enqueue time or at dequeue time.
	Duplicates int `json:"duplicates"`

	// OutOfScope counts dequeued URLs discarded for belonging to another host.
	OutOfScope int `json:"out_of_scope"`

	// Failures counts URLs whose fetch failed after the retry policy gave up.
	Failures int `json:"failures"`

	// Enqueued counts links added to the frontier by link expansion.
	Enqueued int `json:"enqueued"`

	// BudgetReached is true when the run stopped because PagesFetched hit MaxPages.
	BudgetReached bool `json:"budget_reached"`

	// Workers is the number of concurrent workers used.
	Workers int `json:"workers"`

	// StartedAt is when the run began.
	StartedAt time.Time `json:"started_at"`

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration `json:"elapsed"`

	// Visited lists every URL dequeued for fetching, in dequeue order.
	Visited []string `json:"-"`
}
