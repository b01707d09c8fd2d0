package report

import (
	"io"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/nao1215/webscour/internal/model"
)

const ruleWidth = 70

// SimpleWriter outputs human-readable text reports for terminal display.
// Counts are printed with thousands separators.
type SimpleWriter struct {
	baseWriter

	// printer formats numbers for the configured language.
	printer *message.Printer

	// verbose adds the visited URL list to crawl summaries.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// WithLanguage selects number formatting. The default is English.
func WithLanguage(tag language.Tag) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.printer = message.NewPrinter(tag)
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		printer:    message.NewPrinter(language.English),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// WriteCrawl outputs the crawl summary.
func (w *SimpleWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "CRAWL SUMMARY")
	w.line(&sb, "Scope:          %s\n", stats.Scope)
	w.line(&sb, "Run ID:         %s\n", stats.RunID)
	w.line(&sb, "Started:        %s\n", stats.StartedAt.Format("2006-01-02 15:04:05 MST"))
	w.line(&sb, "Workers:        %d\n", stats.Workers)
	sb.WriteString("\n")

	w.line(&sb, "  Pages fetched:  %d / %d\n", stats.PagesFetched, stats.MaxPages)
	w.line(&sb, "  Unique URLs:    %d\n", stats.UniqueURLs)
	w.line(&sb, "  Duplicates:     %d\n", stats.Duplicates)
	w.line(&sb, "  Out of scope:   %d\n", stats.OutOfScope)
	w.line(&sb, "  Failures:       %d\n", stats.Failures)
	w.line(&sb, "  Links enqueued: %d\n", stats.Enqueued)
	w.line(&sb, "  Elapsed:        %s\n", stats.Elapsed.Round(time.Millisecond))
	sb.WriteString("\n")

	if stats.BudgetReached {
		sb.WriteString("Status:         Budget reached\n")
	} else {
		sb.WriteString("Status:         Frontier exhausted\n")
	}

	if w.verbose && len(stats.Visited) > 0 {
		w.writeSection(&sb, "VISITED URLS")
		for _, u := range stats.Visited {
			w.line(&sb, "  %s\n", u)
		}
	}

	sb.WriteString("\n")
	return w.output.Write([]byte(sb.String()))
}

// WriteIndex outputs the index build summary.
func (w *SimpleWriter) WriteIndex(summary *model.IndexSummary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, "INDEX BUILD")
	w.line(&sb, "Build ID:       %s\n", summary.BuildID)
	w.line(&sb, "Documents:      %d\n", summary.Documents)
	w.line(&sb, "Skipped:        %d\n", summary.Skipped)
	w.line(&sb, "Terms:          %d\n", summary.Terms)
	w.line(&sb, "Elapsed:        %s\n", summary.Elapsed.Round(time.Millisecond))
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteSearch outputs ranked results, one per line.
func (w *SimpleWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	var sb strings.Builder

	w.line(&sb, "Query: %q (top %d)\n\n", resp.Query, resp.TopK)

	if len(resp.Results) == 0 {
		sb.WriteString("  No documents matched.\n")
		return w.output.Write([]byte(sb.String()))
	}

	for i, r := range resp.Results {
		target := r.URL
		if target == "" {
			target = r.DocumentID
		}
		w.line(&sb, "  %2d. %.4f  %s\n", i+1, r.Score, target)
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) line(sb *strings.Builder, format string, args ...any) {
	sb.WriteString(w.printer.Sprintf(format, args...))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(centered(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeSection(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n\n")
}

func centered(s string) string {
	pad := (ruleWidth - len(s)) / 2
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
