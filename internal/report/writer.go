package report

import (
	"io"

	"github.com/nao1215/webscour/internal/model"
)

// Writer defines the interface for report output.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// WriteCrawl outputs the summary of one crawl run.
	// Returns the number of bytes written and any error encountered.
	WriteCrawl(stats *model.CrawlStats) (int, error)

	// WriteIndex outputs the summary of one index build.
	WriteIndex(summary *model.IndexSummary) (int, error)

	// WriteSearch outputs ranked results for one query.
	WriteSearch(resp *model.SearchResponse) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// WriteCrawl outputs the crawl summary to all configured Writers.
// Stops on first error encountered.
func (m *MultiWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteCrawl(stats) })
}

// WriteIndex outputs the index summary to all configured Writers.
func (m *MultiWriter) WriteIndex(summary *model.IndexSummary) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteIndex(summary) })
}

// WriteSearch outputs the search results to all configured Writers.
func (m *MultiWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteSearch(resp) })
}

func (m *MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
