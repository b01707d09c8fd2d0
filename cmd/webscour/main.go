// Package main provides the entry point for the webscour CLI.
//
// webscour crawls a bounded set of pages inside one domain, stores them,
// builds a TF-IDF index over the stored corpus and answers ranked queries.
//
// Usage:
//
//	webscour crawl https://example.com/
//	webscour index
//	webscour search "distributed systems"
//
// See --help for all available options.
package main

// main is the entry point for webscour.
func main() {
	Execute()
}
