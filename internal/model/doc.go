// Package model defines the core data structures shared across webscour.
//
// This package contains the following main types:
//   - Document: A fetched page as stored and indexed
//   - CrawlStats: The completion summary of one crawl run
//   - SearchResult / SearchResponse: Ranked query output
//
// It also owns URL normalization, because the crawler, the document store
// and the queue consumer must all agree on what "the same URL" means.
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. The crawler, store, index, search and report packages all use
// these types, so centralizing them prevents import cycles.
package model
