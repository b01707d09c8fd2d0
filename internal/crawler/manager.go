package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/fetch"
	"github.com/nao1215/webscour/internal/model"
)

// Fetcher performs a single fetch attempt. *fetch.Fetcher implements it.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetch.Response, error)
}

// DocumentWriter persists fetched content. Put must be idempotent per URL
// and safe for concurrent use; *store.DocumentStore implements it.
type DocumentWriter interface {
	Put(ctx context.Context, rawURL string, raw []byte) (string, error)
}

// Manager runs one bounded, domain-scoped, breadth-first crawl.
//
// A Manager owns its frontier for exactly one Run. Seeds are added with
// Submit, then Run drives workerCount workers until the budget is spent or
// the frontier is exhausted.
type Manager struct {
	adapter  *adapter
	store    DocumentWriter
	frontier *frontier

	pollInterval time.Duration
	logger       *slog.Logger
	started      atomic.Bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithRetryPolicy sets the fetch retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(m *Manager) {
		m.adapter.retry = p
	}
}

// WithPollInterval sets how long an idle worker waits before re-checking
// whether the crawl is over.
func WithPollInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.pollInterval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
		m.adapter.logger = logger
	}
}

// NewManager creates a Manager. parser may be nil, in which case the
// x/net/html parser is used.
func NewManager(fetcher Fetcher, parser extract.Parser, store DocumentWriter, opts ...Option) *Manager {
	if parser == nil {
		parser = extract.HTMLParser{}
	}

	m := &Manager{
		adapter: &adapter{
			fetcher: fetcher,
			parser:  parser,
			retry: RetryPolicy{
				MaxAttempts: config.DefaultMaxAttempts,
				Delay:       config.DefaultRetryDelay,
			},
			logger: slog.Default(),
		},
		store:        store,
		frontier:     newFrontier(),
		pollInterval: config.DefaultPollInterval,
		logger:       slog.Default(),
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Submit normalizes seeds and appends them to the frontier. If any seed is
// invalid nothing is added. URLs handed over from a queue go through Submit
// too; redelivered duplicates are dropped by the visited check at dequeue.
func (m *Manager) Submit(seeds ...string) error {
	normalized := make([]string, 0, len(seeds))
	for _, seed := range seeds {
		u, err := model.NormalizeURL(seed)
		if err != nil {
			return fmt.Errorf("%w: %q: %w", ErrInvalidSeed, seed, err)
		}
		normalized = append(normalized, u)
	}

	m.frontier.push(normalized...)
	return nil
}

// Pending returns the number of URLs waiting in the frontier.
func (m *Manager) Pending() int {
	return m.frontier.size()
}

// Stop asks every worker to exit at its next check. In-flight fetches
// complete; no new fetch starts.
func (m *Manager) Stop() {
	m.frontier.halt()
}

// Run crawls until the budget of maxPages successful fetches is spent or
// no URL is left to fetch. Only URLs whose host equals domainScope are
// fetched; an empty domainScope means the host of the first seed.
//
// Run always returns statistics once the crawl has started, even when ctx
// is cancelled; in that case the error is ctx.Err().
func (m *Manager) Run(ctx context.Context, workerCount, maxPages int, domainScope string) (*model.CrawlStats, error) {
	if workerCount <= 0 {
		return nil, ErrInvalidWorkers
	}
	if maxPages <= 0 {
		return nil, ErrInvalidMaxPages
	}
	if m.frontier.size() == 0 {
		return nil, ErrNoSeed
	}

	scope := model.ScopeHost(domainScope)
	if scope == "" {
		scope = m.frontier.firstHost()
	}
	if scope == "" {
		return nil, ErrNoScope
	}

	if !m.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadyRun
	}

	m.frontier.configure(maxPages, scope)

	runID := uuid.NewString()
	startedAt := time.Now()
	logger := m.logger.With("run_id", runID, "scope", scope)
	logger.Info("crawl started", "workers", workerCount, "max_pages", maxPages)

	g, gctx := errgroup.WithContext(ctx)
	for i := range workerCount {
		g.Go(func() error {
			m.work(gctx, logger.With("worker", i))
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // workers never return errors

	stats := m.frontier.snapshot()
	stats.RunID = runID
	stats.Workers = workerCount
	stats.StartedAt = startedAt
	stats.Elapsed = time.Since(startedAt)

	logger.Info("crawl finished",
		"pages_fetched", stats.PagesFetched,
		"unique_urls", stats.UniqueURLs,
		"duplicates", stats.Duplicates,
		"failures", stats.Failures,
		"elapsed", stats.Elapsed,
	)

	if err := ctx.Err(); err != nil {
		return stats, err
	}
	return stats, nil
}

// work is one worker loop. Fetch, extract and store failures are handled
// here and only show up in the statistics.
func (m *Manager) work(ctx context.Context, logger *slog.Logger) {
	for {
		u, ok := m.frontier.next(ctx, m.pollInterval)
		if !ok {
			return
		}

		out := m.adapter.visit(ctx, u)
		if out.err == nil {
			id, err := m.store.Put(ctx, u, out.body)
			if err != nil {
				out.err = fmt.Errorf("store %s: %w", u, err)
			} else {
				logger.Debug("page stored", "url", u, "doc_id", id, "title", out.title, "links", len(out.links))
			}
		}

		if out.err != nil {
			logger.Warn("giving up on URL",
				"url", u,
				"attempts", out.attempts,
				"kind", fetch.KindOf(out.err).String(),
				"error", out.err,
			)
			m.frontier.fail()
			continue
		}

		if !m.frontier.succeed(out.links) {
			logger.Debug("result discarded, budget already reached", "url", u)
		}
	}
}
