package crawler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/fetch"
	"github.com/nao1215/webscour/internal/model"
)

// fakeSite serves canned pages and scripted failures.
type fakeSite struct {
	mu    sync.Mutex
	pages map[string]string
	errs  map[string][]error
	calls map[string]int
	delay time.Duration
}

func newFakeSite() *fakeSite {
	return &fakeSite{
		pages: make(map[string]string),
		errs:  make(map[string][]error),
		calls: make(map[string]int),
	}
}

func (s *fakeSite) Fetch(ctx context.Context, u string) (*fetch.Response, error) {
	s.mu.Lock()
	s.calls[u]++
	n := s.calls[u]
	scripted := s.errs[u]
	body, ok := s.pages[u]
	delay := s.delay
	s.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, &fetch.Error{Kind: fetch.KindOther, URL: u, Err: ctx.Err()}
		case <-time.After(delay):
		}
	}

	if n <= len(scripted) {
		return nil, scripted[n-1]
	}
	if !ok {
		return nil, &fetch.Error{Kind: fetch.KindStatus, URL: u, StatusCode: http.StatusNotFound}
	}
	return &fetch.Response{URL: u, FinalURL: u, StatusCode: http.StatusOK, Body: []byte(body)}, nil
}

func (s *fakeSite) totalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func (s *fakeSite) callsFor(u string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[u]
}

// memStore is an in-memory DocumentWriter.
type memStore struct {
	mu   sync.Mutex
	docs map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{docs: make(map[string][]byte)}
}

func (m *memStore) Put(_ context.Context, u string, raw []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[u] = raw
	return "id:" + u, nil
}

func (m *memStore) len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func links(hrefs ...string) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for _, h := range hrefs {
		fmt.Fprintf(&b, `<a href="%s">%s</a>`, h, h)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func newTestManager(site *fakeSite, store *memStore, opts ...Option) *Manager {
	opts = append([]Option{
		WithPollInterval(10 * time.Millisecond),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 3}),
	}, opts...)
	return NewManager(site, nil, store, opts...)
}

// TestManager_BudgetOfOne fetches exactly one page, enqueues its links and
// fetches nothing else.
func TestManager_BudgetOfOne(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.pages["https://site.test/"] = links("/a", "/b", "/c", "/d", "/e")
	for _, p := range []string{"a", "b", "c", "d", "e"} {
		site.pages["https://site.test/"+p] = links()
	}
	store := newMemStore()

	m := newTestManager(site, store)
	if err := m.Submit("https://site.test/"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 3, 1, "site.test")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stats.PagesFetched != 1 {
		t.Errorf("expected 1 page fetched, got %d", stats.PagesFetched)
	}
	if stats.Enqueued != 5 {
		t.Errorf("expected 5 links enqueued, got %d", stats.Enqueued)
	}
	if got := site.totalCalls(); got != 1 {
		t.Errorf("expected exactly 1 fetch, got %d", got)
	}
	if !stats.BudgetReached {
		t.Error("expected BudgetReached")
	}
	if store.len() != 1 {
		t.Errorf("expected 1 stored document, got %d", store.len())
	}
}

// TestManager_BudgetNeverExceeded runs many workers against a large site.
func TestManager_BudgetNeverExceeded(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.delay = 2 * time.Millisecond
	for i := range 200 {
		var hrefs []string
		for j := 1; j <= 4; j++ {
			hrefs = append(hrefs, fmt.Sprintf("/p%d", (i*4+j)%200))
		}
		site.pages[fmt.Sprintf("https://site.test/p%d", i)] = links(hrefs...)
	}

	for _, budget := range []int{1, 7, 25} {
		t.Run(fmt.Sprintf("budget %d", budget), func(t *testing.T) {
			t.Parallel()

			store := newMemStore()
			local := newFakeSite()
			local.delay = site.delay
			local.pages = site.pages

			m := newTestManager(local, store)
			if err := m.Submit("https://site.test/p0"); err != nil {
				t.Fatalf("submit: %v", err)
			}

			stats, err := m.Run(context.Background(), 16, budget, "")
			if err != nil {
				t.Fatalf("run: %v", err)
			}

			if stats.PagesFetched != budget {
				t.Errorf("expected %d pages, got %d", budget, stats.PagesFetched)
			}
			if store.len() != budget {
				t.Errorf("expected %d stored documents, got %d", budget, store.len())
			}
			if got := local.totalCalls(); got != budget {
				t.Errorf("expected %d fetches, got %d", budget, got)
			}
			if stats.UniqueURLs < stats.PagesFetched {
				t.Errorf("visited %d < fetched %d", stats.UniqueURLs, stats.PagesFetched)
			}
		})
	}
}

// TestManager_DomainScope never fetches another host.
func TestManager_DomainScope(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.pages["https://site.test/"] = links("/in", "https://other.test/out", "http://SITE.test:8080/port")
	site.pages["https://site.test/in"] = links("https://other.test/again")
	site.pages["http://site.test:8080/port"] = links()
	site.pages["https://other.test/out"] = links()

	store := newMemStore()
	m := newTestManager(site, store)
	if err := m.Submit("https://site.test/"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 2, 10, "https://site.test/")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if site.callsFor("https://other.test/out") != 0 {
		t.Error("out-of-scope URL was fetched")
	}
	if stats.OutOfScope != 2 {
		t.Errorf("expected 2 out-of-scope discards, got %d", stats.OutOfScope)
	}
	if stats.Failures != 0 {
		t.Errorf("out-of-scope must not count as failure, got %d", stats.Failures)
	}
	// Scope compares hosts only, so the port variant is in scope.
	if stats.PagesFetched != 3 {
		t.Errorf("expected 3 pages, got %d", stats.PagesFetched)
	}
	for _, u := range stats.Visited {
		if model.Host(u) != "site.test" {
			t.Errorf("visited URL %q outside scope", u)
		}
	}
}

// TestManager_Duplicates fetches each URL once however often it is linked.
func TestManager_Duplicates(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.pages["https://site.test/"] = links("/", "/a", "/a#frag", "/b")
	site.pages["https://site.test/a"] = links("/", "/b")
	site.pages["https://site.test/b"] = links("/a")

	store := newMemStore()
	m := newTestManager(site, store)
	if err := m.Submit("https://site.test/", "https://site.test/"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 4, 50, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	for u := range site.pages {
		if n := site.callsFor(u); n != 1 {
			t.Errorf("expected %s fetched once, got %d", u, n)
		}
	}
	if stats.PagesFetched != 3 || stats.UniqueURLs != 3 {
		t.Errorf("expected 3 pages and 3 unique URLs, got %d and %d", stats.PagesFetched, stats.UniqueURLs)
	}
	if stats.Duplicates == 0 {
		t.Error("expected duplicates to be counted")
	}
	if stats.BudgetReached {
		t.Error("budget was not reached")
	}
}

// TestManager_RetryTransient retries timeouts and then succeeds.
func TestManager_RetryTransient(t *testing.T) {
	t.Parallel()

	const seed = "https://site.test/"
	site := newFakeSite()
	site.pages[seed] = links()
	site.errs[seed] = []error{
		&fetch.Error{Kind: fetch.KindTimeout, URL: seed, Err: context.DeadlineExceeded},
		&fetch.Error{Kind: fetch.KindConnection, URL: seed, Err: errors.New("connection reset")},
	}

	m := newTestManager(site, newMemStore())
	if err := m.Submit(seed); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 1, 5, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := site.callsFor(seed); got != 3 {
		t.Errorf("expected 3 attempts, got %d", got)
	}
	if stats.PagesFetched != 1 || stats.Failures != 0 {
		t.Errorf("expected success after retries, got %+v", stats)
	}
}

// TestManager_FailuresAreTerminal covers exhausted retries and bad statuses.
func TestManager_FailuresAreTerminal(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.pages["https://site.test/"] = links("/flaky", "/missing", "/flaky")
	site.pages["https://site.test/flaky"] = links("/never")
	site.errs["https://site.test/flaky"] = []error{
		&fetch.Error{Kind: fetch.KindTimeout},
		&fetch.Error{Kind: fetch.KindTimeout},
		&fetch.Error{Kind: fetch.KindTimeout},
	}

	m := newTestManager(site, newMemStore())
	if err := m.Submit("https://site.test/"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 2, 10, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if got := site.callsFor("https://site.test/missing"); got != 1 {
		t.Errorf("status failure must not be retried, got %d attempts", got)
	}
	if got := site.callsFor("https://site.test/flaky"); got != 3 {
		t.Errorf("expected 3 attempts on transient failure, got %d", got)
	}
	if got := site.callsFor("https://site.test/never"); got != 0 {
		t.Error("failed page must not expand links")
	}
	if stats.Failures != 2 {
		t.Errorf("expected 2 failures, got %d", stats.Failures)
	}
	if stats.PagesFetched != 1 {
		t.Errorf("failures must not count toward the budget, got %d", stats.PagesFetched)
	}
	if stats.UniqueURLs != 3 {
		t.Errorf("failed URLs stay visited, expected 3 unique, got %d", stats.UniqueURLs)
	}
}

// TestManager_Cancel returns statistics and the context error.
func TestManager_Cancel(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.delay = time.Hour
	site.pages["https://site.test/"] = links()

	m := newTestManager(site, newMemStore())
	if err := m.Submit("https://site.test/"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	stats, err := m.Run(ctx, 2, 5, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if stats == nil {
		t.Fatal("expected statistics on cancellation")
	}
	if stats.PagesFetched != 0 {
		t.Errorf("expected no pages, got %d", stats.PagesFetched)
	}
}

// TestManager_CancelStopsDispatch leaves queued URLs unvisited once the
// context is cancelled; only the fetches already in flight were attempted.
func TestManager_CancelStopsDispatch(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.delay = 200 * time.Millisecond
	seeds := make([]string, 0, 40)
	for i := range 40 {
		u := fmt.Sprintf("https://site.test/%d", i)
		site.pages[u] = links()
		seeds = append(seeds, u)
	}

	m := newTestManager(site, newMemStore())
	if err := m.Submit(seeds...); err != nil {
		t.Fatalf("submit: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	const workers = 2
	stats, err := m.Run(ctx, workers, 40, "")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls := site.totalCalls(); calls > workers {
		t.Errorf("expected at most %d fetches, got %d", workers, calls)
	}
	if stats.UniqueURLs > workers {
		t.Errorf("expected at most %d visited URLs, got %d", workers, stats.UniqueURLs)
	}
	if stats.Failures > workers {
		t.Errorf("expected at most %d failures, got %d", workers, stats.Failures)
	}
	if len(stats.Visited) != stats.UniqueURLs {
		t.Errorf("visited list has %d entries, unique count is %d", len(stats.Visited), stats.UniqueURLs)
	}
}

// TestAdapter_Visit carries the page title and links of a fetched page.
func TestAdapter_Visit(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.pages["https://site.test/"] = `<html><head><title>Crawl Notes</title></head>` +
		`<body><a href="/next">next</a></body></html>`

	a := &adapter{
		fetcher: site,
		parser:  extract.HTMLParser{},
		retry:   RetryPolicy{MaxAttempts: 1},
		logger:  slog.New(slog.DiscardHandler),
	}

	out := a.visit(context.Background(), "https://site.test/")
	if out.err != nil {
		t.Fatalf("visit: %v", out.err)
	}
	if out.title != "Crawl Notes" {
		t.Errorf("expected title %q, got %q", "Crawl Notes", out.title)
	}
	if len(out.links) != 1 || out.links[0] != "https://site.test/next" {
		t.Errorf("unexpected links %v", out.links)
	}
	if out.attempts != 1 {
		t.Errorf("expected one attempt, got %d", out.attempts)
	}
}

// TestManager_Stop halts idle and active workers.
func TestManager_Stop(t *testing.T) {
	t.Parallel()

	site := newFakeSite()
	site.delay = 20 * time.Millisecond
	for i := range 50 {
		site.pages[fmt.Sprintf("https://site.test/%d", i)] = links(fmt.Sprintf("/%d", i+1))
	}

	m := newTestManager(site, newMemStore())
	if err := m.Submit("https://site.test/0"); err != nil {
		t.Fatalf("submit: %v", err)
	}

	time.AfterFunc(60*time.Millisecond, m.Stop)

	stats, err := m.Run(context.Background(), 1, 50, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if stats.PagesFetched >= 50 {
		t.Errorf("expected Stop to end the crawl early, fetched %d", stats.PagesFetched)
	}
}

// TestManager_Validation covers argument errors.
func TestManager_Validation(t *testing.T) {
	t.Parallel()

	t.Run("no seed", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(newFakeSite(), newMemStore())
		if _, err := m.Run(context.Background(), 1, 1, ""); !errors.Is(err, ErrNoSeed) {
			t.Errorf("expected ErrNoSeed, got %v", err)
		}
	})

	t.Run("invalid seed", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(newFakeSite(), newMemStore())
		err := m.Submit("https://site.test/", "ftp://site.test/")
		if !errors.Is(err, ErrInvalidSeed) {
			t.Errorf("expected ErrInvalidSeed, got %v", err)
		}
		if !errors.Is(err, model.ErrUnsupportedScheme) {
			t.Errorf("expected wrapped ErrUnsupportedScheme, got %v", err)
		}
		if m.Pending() != 0 {
			t.Errorf("expected nothing submitted, got %d", m.Pending())
		}
	})

	t.Run("bad workers and pages", func(t *testing.T) {
		t.Parallel()
		m := newTestManager(newFakeSite(), newMemStore())
		if err := m.Submit("https://site.test/"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := m.Run(context.Background(), 0, 1, ""); !errors.Is(err, ErrInvalidWorkers) {
			t.Errorf("expected ErrInvalidWorkers, got %v", err)
		}
		if _, err := m.Run(context.Background(), 1, 0, ""); !errors.Is(err, ErrInvalidMaxPages) {
			t.Errorf("expected ErrInvalidMaxPages, got %v", err)
		}
	})

	t.Run("second run", func(t *testing.T) {
		t.Parallel()
		site := newFakeSite()
		site.pages["https://site.test/"] = links()
		m := newTestManager(site, newMemStore())
		if err := m.Submit("https://site.test/"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := m.Run(context.Background(), 1, 1, ""); err != nil {
			t.Fatalf("first run: %v", err)
		}
		if err := m.Submit("https://site.test/again"); err != nil {
			t.Fatalf("submit: %v", err)
		}
		if _, err := m.Run(context.Background(), 1, 1, ""); !errors.Is(err, ErrAlreadyRun) {
			t.Errorf("expected ErrAlreadyRun, got %v", err)
		}
	})
}

// TestManager_HTTP crawls a real HTTP server through fetch.Fetcher.
func TestManager_HTTP(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, links("/about", "/gone", "mailto:x@site.test", "#top"))
	})
	mux.HandleFunc("/about", func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `<p>about us</p>`+links("/"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	store := newMemStore()
	m := NewManager(fetch.New(fetch.WithTimeout(2*time.Second)), nil, store,
		WithPollInterval(10*time.Millisecond),
		WithRetryPolicy(RetryPolicy{MaxAttempts: 2}),
	)
	if err := m.Submit(srv.URL); err != nil {
		t.Fatalf("submit: %v", err)
	}

	stats, err := m.Run(context.Background(), 2, 10, "")
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if stats.PagesFetched != 2 {
		t.Errorf("expected 2 pages, got %d", stats.PagesFetched)
	}
	if stats.Failures != 1 {
		t.Errorf("expected the 404 to be one failure, got %d", stats.Failures)
	}
	if store.len() != 2 {
		t.Errorf("expected 2 stored documents, got %d", store.len())
	}
}

// TestWriteVisited writes one URL per line.
func TestWriteVisited(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "visited.txt")
	urls := []string{"https://site.test/", "https://site.test/a"}

	if err := WriteVisited(path, urls); err != nil {
		t.Fatalf("write: %v", err)
	}

	data, err := os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(data) != "https://site.test/\nhttps://site.test/a\n" {
		t.Errorf("unexpected export %q", data)
	}

	if err := WriteVisited(path, nil); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	data, err = os.ReadFile(path) //nolint:gosec // test path
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty export, got %q", data)
	}
}
