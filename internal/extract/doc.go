// Package extract turns fetched markup into the two things the rest of
// webscour needs from it: the visible text and the outgoing hyperlinks.
//
// # Capability interface
//
// The crawler and the index builder depend only on the Page interface,
// never on a concrete parser type. HTMLPage is the single implementation,
// built on golang.org/x/net/html.
//
// Design decision: We use golang.org/x/net/html for parsing rather than
// regex because:
//  1. It correctly handles malformed HTML common on the web
//  2. Provides a proper DOM-like structure
//  3. More maintainable than complex regex patterns
//
// # Link rules
//
//   - Relative links are resolved against the base URL
//   - Fragments are stripped
//   - Only http and https survive; mailto:, javascript:, tel:, data: and
//     pure "#" anchors are dropped
//   - Each link appears once, in document order
package extract
