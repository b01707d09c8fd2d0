// Package store persists fetched documents and the crawl run log in SQLite.
//
// Documents are keyed by an id derived from the normalized URL (a SHA-1
// name-based UUID in the URL namespace), never by arrival order. Putting
// the same URL twice yields the same id and overwrites the content, so
// re-running a crawl over overlapping URLs is safe to re-index.
//
// Design decision: SQLite via modernc.org/sqlite, because it is a single
// file with no server to run, it is CGO-free, and WAL mode lets the index
// command read while a crawl writes. The pool is limited to one connection
// since SQLite has a single writer; concurrent workers queue on it.
package store
