// Package crawler runs bounded, domain-scoped, breadth-first crawls.
//
// # Architecture
//
// A Manager owns one frontier for one run: a FIFO queue, the visited set,
// the budget counter and the statistics, all behind a single mutex. A fixed
// pool of workers (errgroup) loops on the frontier:
//
//  1. next dequeues a URL, drops it if already visited or out of scope,
//     otherwise marks it visited and reserves an in-flight slot
//  2. the adapter fetches it under the RetryPolicy and extracts links
//  3. the body is persisted through DocumentWriter
//  4. succeed bumps the budget counter and enqueues unseen links, or fail
//     records the failure
//
// Design decision: dispatch reserves budget. A worker does not start a
// fetch while fetched+inFlight already covers maxPages, so concurrent
// completions can never push the counter (or the store) past the budget.
// Idle workers wait on a broadcast channel with a poll interval and exit
// once the frontier is drained with nothing in flight.
//
// # Retries
//
// Connection errors and timeouts are retried up to RetryPolicy.MaxAttempts.
// Non-2xx statuses give up at once. A URL that gave up stays visited and is
// not fetched again during the run.
//
// # Usage
//
//	m := crawler.NewManager(fetch.New(), nil, docStore)
//	if err := m.Submit("https://site.test/"); err != nil {
//		return err
//	}
//	stats, err := m.Run(ctx, 3, 20, "site.test")
package crawler
