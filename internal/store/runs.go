package store

import (
	"context"
	"fmt"
	"time"

	"github.com/nao1215/webscour/internal/model"
)

// SaveRun records the completion summary of a crawl run.
// Saving the same RunID again replaces the earlier row.
func (s *DocumentStore) SaveRun(ctx context.Context, stats *model.CrawlStats) error {
	query := `
	INSERT INTO crawl_runs (id, scope, pages_fetched, max_pages, unique_urls, duplicates,
		out_of_scope, failures, enqueued, budget_reached, workers, started_at, elapsed_ms)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		pages_fetched = excluded.pages_fetched,
		unique_urls = excluded.unique_urls,
		duplicates = excluded.duplicates,
		out_of_scope = excluded.out_of_scope,
		failures = excluded.failures,
		enqueued = excluded.enqueued,
		budget_reached = excluded.budget_reached,
		elapsed_ms = excluded.elapsed_ms
	`

	budget := 0
	if stats.BudgetReached {
		budget = 1
	}

	_, err := s.db.ExecContext(ctx, query,
		stats.RunID,
		stats.Scope,
		stats.PagesFetched,
		stats.MaxPages,
		stats.UniqueURLs,
		stats.Duplicates,
		stats.OutOfScope,
		stats.Failures,
		stats.Enqueued,
		budget,
		stats.Workers,
		stats.StartedAt.UTC().Format(time.RFC3339Nano),
		stats.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("failed to save crawl run: %w", err)
	}
	return nil
}

// ListRuns returns the most recent crawl runs, newest first.
// A limit of zero or less returns every run.
func (s *DocumentStore) ListRuns(ctx context.Context, limit int) ([]model.CrawlStats, error) {
	query := `
	SELECT id, scope, pages_fetched, max_pages, unique_urls, duplicates,
		out_of_scope, failures, enqueued, budget_reached, workers, started_at, elapsed_ms
	FROM crawl_runs
	ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list crawl runs: %w", err)
	}
	defer rows.Close()

	var runs []model.CrawlStats
	for rows.Next() {
		var (
			run       model.CrawlStats
			budget    int
			startedAt string
			elapsedMS int64
		)

		if err := rows.Scan(&run.RunID, &run.Scope, &run.PagesFetched, &run.MaxPages,
			&run.UniqueURLs, &run.Duplicates, &run.OutOfScope, &run.Failures,
			&run.Enqueued, &budget, &run.Workers, &startedAt, &elapsedMS); err != nil {
			return nil, fmt.Errorf("failed to scan crawl run: %w", err)
		}

		run.BudgetReached = budget != 0
		run.StartedAt = parseTimestamp(startedAt)
		run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	time.RFC3339Nano,          // written by this package
	time.RFC3339,              // Full RFC3339 format
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, it returns the zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
