package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/webscour/internal/crawler"
	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/model"
)

// RunRecorder keeps a log of completed crawl runs. *store.DocumentStore
// implements it.
type RunRecorder interface {
	SaveRun(ctx context.Context, stats *model.CrawlStats) error
}

// CrawlRunner builds a fresh crawler.Manager per job. Its Run method is a
// CrawlFunc.
type CrawlRunner struct {
	Fetcher      crawler.Fetcher
	Parser       extract.Parser
	Store        crawler.DocumentWriter
	Runs         RunRecorder
	Retry        crawler.RetryPolicy
	PollInterval time.Duration
	Logger       *slog.Logger
}

// Run executes job and records its stats in the run log. A run log write
// failure is logged and does not fail the crawl.
func (r *CrawlRunner) Run(ctx context.Context, job CrawlJob) (*model.CrawlStats, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	opts := []crawler.Option{crawler.WithLogger(logger.With("scope", job.Scope))}
	if r.Retry.MaxAttempts > 0 {
		opts = append(opts, crawler.WithRetryPolicy(r.Retry))
	}
	if r.PollInterval > 0 {
		opts = append(opts, crawler.WithPollInterval(r.PollInterval))
	}

	m := crawler.NewManager(r.Fetcher, r.Parser, r.Store, opts...)
	if err := m.Submit(job.Seeds...); err != nil {
		return nil, err
	}

	stats, err := m.Run(ctx, job.Workers, job.MaxPages, job.Scope)
	if stats != nil && r.Runs != nil {
		// The run log must survive a cancelled crawl.
		if saveErr := r.Runs.SaveRun(context.WithoutCancel(ctx), stats); saveErr != nil {
			logger.Warn("failed to record crawl run", "run_id", stats.RunID, "error", saveErr)
		}
	}
	return stats, err
}
