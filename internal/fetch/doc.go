// Package fetch performs single HTTP GET attempts and classifies every
// failure into one of four kinds: connection error, timeout, non-success
// status, or other.
//
// The package never retries. The retry policy belongs to the crawler, which
// asks Error.Retryable() to decide whether another attempt is worthwhile.
//
// Every request is bounded by the client timeout so that a slow server can
// never stall a crawl worker indefinitely.
package fetch
