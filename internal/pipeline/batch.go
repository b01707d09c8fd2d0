package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webscour/internal/model"
)

// CrawlJob is one bounded crawl restricted to a single host.
type CrawlJob struct {
	// Scope is the host every crawled URL must belong to.
	Scope string

	// Seeds are the normalized start URLs, all on Scope.
	Seeds []string

	// MaxPages is the fetch budget for this job.
	MaxPages int

	// Workers is the number of concurrent fetch workers.
	Workers int
}

// CrawlFunc runs one job to completion. It must return stats even when
// it also returns an error.
type CrawlFunc func(ctx context.Context, job CrawlJob) (*model.CrawlStats, error)

// CrawlResult pairs a job with its outcome.
type CrawlResult struct {
	Job   CrawlJob
	Stats *model.CrawlStats
	Err   error
}

// BatchProcessor runs several crawl jobs concurrently.
// It uses errgroup to manage goroutines and respect concurrency limits.
//
// Design decision: a separate BatchProcessor rather than putting batch
// logic in the crawler, so a single Manager stays one host, one budget.
type BatchProcessor struct {
	// crawl runs a single job; each call gets its own Manager.
	crawl CrawlFunc

	// concurrency is the maximum number of jobs running at once.
	concurrency int

	// logger is used for batch-level logging.
	logger *slog.Logger

	mu sync.Mutex
}

// BatchOption configures a BatchProcessor.
type BatchOption func(*BatchProcessor)

// WithBatchLogger sets a custom logger for batch processing.
func WithBatchLogger(logger *slog.Logger) BatchOption {
	return func(b *BatchProcessor) {
		b.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent jobs.
// Default is 2 if not specified.
func WithConcurrency(n int) BatchOption {
	return func(b *BatchProcessor) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// NewBatchProcessor creates a new BatchProcessor.
func NewBatchProcessor(crawl CrawlFunc, opts ...BatchOption) *BatchProcessor {
	bp := &BatchProcessor{
		crawl:       crawl,
		concurrency: 2,
	}

	for _, opt := range opts {
		opt(bp)
	}

	if bp.logger == nil {
		bp.logger = slog.Default()
	}

	return bp
}

// ProcessBatch runs every job and returns the results in job order.
// A failing job does not stop the others; its error is kept in its result.
// The returned error is non-nil only when ctx was cancelled.
func (bp *BatchProcessor) ProcessBatch(ctx context.Context, jobs []CrawlJob) ([]CrawlResult, error) {
	results := make([]CrawlResult, len(jobs))
	err := bp.ProcessBatchWithCallback(ctx, jobs, func(r CrawlResult, i int) {
		bp.mu.Lock()
		results[i] = r
		bp.mu.Unlock()
	})
	return results, err
}

// ProcessBatchWithCallback runs every job and calls callback as each one
// completes, from the goroutine that ran it.
func (bp *BatchProcessor) ProcessBatchWithCallback(
	ctx context.Context,
	jobs []CrawlJob,
	callback func(result CrawlResult, index int),
) error {
	bp.logger.Info("starting batch crawl",
		"jobs", len(jobs),
		"concurrency", bp.concurrency,
	)
	startTime := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(bp.concurrency)

	for i, job := range jobs {
		g.Go(func() error {
			// Check for cancellation before starting
			select {
			case <-gctx.Done():
				callback(CrawlResult{Job: job, Err: gctx.Err()}, i)
				return nil
			default:
			}

			bp.logger.Info("crawling host",
				"scope", job.Scope,
				"index", i+1,
				"total", len(jobs),
			)

			stats, err := bp.crawl(gctx, job)
			if err != nil {
				bp.logger.Warn("crawl failed", "scope", job.Scope, "error", err)
			} else {
				bp.logger.Info("crawl completed", "scope", job.Scope, "pages", stats.PagesFetched)
			}

			// Don't return error to errgroup - we want to continue other jobs
			callback(CrawlResult{Job: job, Stats: stats, Err: err}, i)
			return nil
		})
	}

	_ = g.Wait() //nolint:errcheck // workers never return errors

	bp.logger.Info("batch crawl complete",
		"jobs", len(jobs),
		"elapsed", time.Since(startTime),
	)

	return ctx.Err()
}

// GroupSeeds normalizes seeds and groups them by host, keeping the order in
// which hosts first appear. Duplicate seeds are dropped. The jobs carry
// maxPages and workers; callers may override them per host.
func GroupSeeds(seeds []string, maxPages, workers int) ([]CrawlJob, error) {
	var jobs []CrawlJob
	byHost := make(map[string]int)
	seen := make(map[string]struct{})

	for _, raw := range seeds {
		normalized, err := model.NormalizeURL(raw)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}

		host := model.Host(normalized)
		i, ok := byHost[host]
		if !ok {
			i = len(jobs)
			byHost[host] = i
			jobs = append(jobs, CrawlJob{Scope: host, MaxPages: maxPages, Workers: workers})
		}
		jobs[i].Seeds = append(jobs[i].Seeds, normalized)
	}
	return jobs, nil
}
