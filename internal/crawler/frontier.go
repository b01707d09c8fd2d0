package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/nao1215/webscour/internal/model"
)

// frontier is the shared crawl state of one run: the FIFO queue, the visited
// set, the budget counter and the statistics. Every field is guarded by mu;
// workers only touch it through next, succeed, fail and enqueue.
//
// Waiting is done on wake, a channel that is closed and replaced whenever
// the state changes, so blocked workers re-check without spinning.
type frontier struct {
	mu sync.Mutex

	queue   []string
	visited map[string]struct{}
	order   []string

	scope    string
	maxPages int

	inFlight int
	fetched  int
	stopped  bool

	duplicates int
	outOfScope int
	failures   int
	enqueued   int
	budgetHit  bool

	wake chan struct{}
}

func newFrontier() *frontier {
	return &frontier{
		visited: make(map[string]struct{}),
		wake:    make(chan struct{}),
	}
}

// broadcast wakes every waiting worker. Callers must hold mu.
func (f *frontier) broadcast() {
	close(f.wake)
	f.wake = make(chan struct{})
}

// configure sets the per-run limits before workers start.
func (f *frontier) configure(maxPages int, scope string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.maxPages = maxPages
	f.scope = scope
}

// push appends URLs without consulting the visited set. Used for seeds.
func (f *frontier) push(urls ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.queue = append(f.queue, urls...)
	f.broadcast()
}

// firstHost returns the host of the oldest queued URL.
func (f *frontier) firstHost() string {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.queue) == 0 {
		return ""
	}
	return model.Host(f.queue[0])
}

// size returns the number of queued URLs.
func (f *frontier) size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.queue)
}

// next dequeues the next URL that should be fetched and marks it visited,
// reserving one in-flight slot. It returns false when the worker should exit:
// the run is stopped, the budget is spent, the frontier is drained with
// nothing in flight, or ctx is done.
//
// While the frontier is empty but peers are still fetching, or while the
// outstanding reservations already cover the remaining budget, next waits
// for a state change, re-checking at least every poll interval.
func (f *frontier) next(ctx context.Context, poll time.Duration) (string, bool) {
	for {
		f.mu.Lock()

		if f.stopped {
			f.mu.Unlock()
			return "", false
		}

		// A cancelled run dispatches nothing further; queued URLs stay unvisited.
		if ctx.Err() != nil {
			f.stopped = true
			f.broadcast()
			f.mu.Unlock()
			return "", false
		}

		if f.fetched >= f.maxPages {
			f.stopped = true
			f.budgetHit = true
			f.broadcast()
			f.mu.Unlock()
			return "", false
		}

		if len(f.queue) == 0 && f.inFlight == 0 {
			f.stopped = true
			f.broadcast()
			f.mu.Unlock()
			return "", false
		}

		if len(f.queue) > 0 && f.fetched+f.inFlight < f.maxPages {
			u, ok := f.pop()
			if ok {
				f.mu.Unlock()
				return u, true
			}
			// Only duplicates and out-of-scope URLs were left; re-check.
			f.mu.Unlock()
			continue
		}

		wake := f.wake
		f.mu.Unlock()

		timer := time.NewTimer(poll)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", false
		case <-wake:
			timer.Stop()
		case <-timer.C:
		}
	}
}

// pop removes queued URLs until one is fetchable. Callers must hold mu.
func (f *frontier) pop() (string, bool) {
	for len(f.queue) > 0 {
		u := f.queue[0]
		f.queue[0] = ""
		f.queue = f.queue[1:]

		if _, seen := f.visited[u]; seen {
			f.duplicates++
			continue
		}

		if model.Host(u) != f.scope {
			f.outOfScope++
			continue
		}

		f.visited[u] = struct{}{}
		f.order = append(f.order, u)
		f.inFlight++
		return u, true
	}
	return "", false
}

// succeed records a persisted page and expands its links. It reports false
// when the result was discarded because the budget was already full.
func (f *frontier) succeed(links []string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	defer f.broadcast()

	f.inFlight--

	if f.fetched >= f.maxPages {
		return false
	}

	f.fetched++

	// Reaching the budget exactly still expands links; they are never fetched.
	f.enqueueLocked(links)

	if f.fetched >= f.maxPages {
		f.stopped = true
		f.budgetHit = true
	}
	return true
}

// fail records a URL whose fetch gave up. It is already visited, so it is
// never fetched again in this run.
func (f *frontier) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.inFlight--
	f.failures++
	f.broadcast()
}

// enqueueLocked appends every link not yet visited. Links already queued
// but not yet visited are appended again and become no-ops at dequeue.
func (f *frontier) enqueueLocked(links []string) {
	for _, link := range links {
		if _, seen := f.visited[link]; seen {
			f.duplicates++
			continue
		}
		f.queue = append(f.queue, link)
		f.enqueued++
	}
}

// halt raises the stop flag.
func (f *frontier) halt() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.stopped {
		f.stopped = true
		f.broadcast()
	}
}

// snapshot copies the statistics into a CrawlStats.
func (f *frontier) snapshot() *model.CrawlStats {
	f.mu.Lock()
	defer f.mu.Unlock()

	visited := make([]string, len(f.order))
	copy(visited, f.order)

	return &model.CrawlStats{
		Scope:         f.scope,
		PagesFetched:  f.fetched,
		MaxPages:      f.maxPages,
		UniqueURLs:    len(f.visited),
		Duplicates:    f.duplicates,
		OutOfScope:    f.outOfScope,
		Failures:      f.failures,
		Enqueued:      f.enqueued,
		BudgetReached: f.budgetHit,
		Visited:       visited,
	}
}
