package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/webscour/internal/model"
)

// JSONWriter outputs reports in JSON format.
// This format is designed for tool integration and programmatic processing.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	// When false, output is compact (no extra whitespace).
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string

	// version, when set, wraps every document in a JSONReport.
	version string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithVersion wraps each written value in a JSONReport carrying version.
func WithVersion(version string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.version = version
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// JSONReport is the envelope used when a version is configured.
type JSONReport struct {
	// Version is the webscour version that generated this report.
	Version string `json:"version"`

	// Kind is "crawl", "index" or "search".
	Kind string `json:"kind"`

	// Data is the report body.
	Data any `json:"data"`
}

// crawlJSON adds elapsed seconds next to the raw nanosecond duration.
type crawlJSON struct {
	*model.CrawlStats
	ElapsedSeconds float64 `json:"elapsed_seconds"`
}

// WriteCrawl outputs the crawl summary in JSON format.
func (w *JSONWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	return w.write("crawl", crawlJSON{CrawlStats: stats, ElapsedSeconds: stats.Elapsed.Seconds()})
}

// WriteIndex outputs the index summary in JSON format.
func (w *JSONWriter) WriteIndex(summary *model.IndexSummary) (int, error) {
	return w.write("index", summary)
}

// WriteSearch outputs the search response in JSON format.
// A response with no hits is written with "results": [].
func (w *JSONWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	if resp.Results == nil {
		copied := *resp
		copied.Results = []model.SearchResult{}
		resp = &copied
	}
	return w.write("search", resp)
}

func (w *JSONWriter) write(kind string, v any) (int, error) {
	if w.version != "" {
		v = JSONReport{Version: w.version, Kind: kind, Data: v}
	}
	return w.writeJSON(v)
}

// writeJSON marshals the given value to JSON and writes it to the output.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}

	if err != nil {
		return 0, err
	}

	// Add trailing newline for better terminal output
	data = append(data, '\n')

	return w.output.Write(data)
}
