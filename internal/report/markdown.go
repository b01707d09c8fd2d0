package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/webscour/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// WriteCrawl outputs the crawl summary in Markdown format.
func (w *MarkdownWriter) WriteCrawl(stats *model.CrawlStats) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scope", "`" + stats.Scope + "`"},
			{"Run ID", "`" + stats.RunID + "`"},
			{"Started", stats.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Workers", strconv.Itoa(stats.Workers)},
			{"Elapsed", stats.Elapsed.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	md.H2("Counters")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Counter", "Value"},
		Rows: [][]string{
			{"Pages fetched", strconv.Itoa(stats.PagesFetched) + " / " + strconv.Itoa(stats.MaxPages)},
			{"Unique URLs", strconv.Itoa(stats.UniqueURLs)},
			{"Duplicates", strconv.Itoa(stats.Duplicates)},
			{"Out of scope", strconv.Itoa(stats.OutOfScope)},
			{"Failures", strconv.Itoa(stats.Failures)},
			{"Links enqueued", strconv.Itoa(stats.Enqueued)},
		},
	})
	md.PlainText("")

	w.writeOutcomeChart(md, stats)
	w.writeCrawlAlert(md, stats)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeOutcomeChart writes a mermaid pie chart of what happened to each
// dequeued URL.
func (w *MarkdownWriter) writeOutcomeChart(md *markdown.Markdown, stats *model.CrawlStats) {
	if stats.PagesFetched+stats.Failures+stats.Duplicates+stats.OutOfScope == 0 {
		return
	}

	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("URL Outcomes"),
		piechart.WithShowData(true),
	)

	if stats.PagesFetched > 0 {
		chart.LabelAndIntValue("Fetched", uint64(stats.PagesFetched))
	}
	if stats.Failures > 0 {
		chart.LabelAndIntValue("Failed", uint64(stats.Failures))
	}
	if stats.Duplicates > 0 {
		chart.LabelAndIntValue("Duplicate", uint64(stats.Duplicates))
	}
	if stats.OutOfScope > 0 {
		chart.LabelAndIntValue("Out of scope", uint64(stats.OutOfScope))
	}

	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeCrawlAlert(md *markdown.Markdown, stats *model.CrawlStats) {
	switch {
	case stats.PagesFetched == 0:
		md.Cautionf("No page was fetched. %d URL(s) failed.", stats.Failures)
	case stats.Failures > 0:
		md.Warningf("%d URL(s) failed and were not retried within this run.", stats.Failures)
	case stats.BudgetReached:
		md.Note("The page budget was reached; links left in the frontier were not fetched.")
	default:
		md.Tip("The frontier was exhausted before the page budget.")
	}
	md.PlainText("")
}

// WriteIndex outputs the index build summary in Markdown format.
func (w *MarkdownWriter) WriteIndex(summary *model.IndexSummary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Index Build")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Build ID", "`" + summary.BuildID + "`"},
			{"Documents", strconv.Itoa(summary.Documents)},
			{"Skipped", strconv.Itoa(summary.Skipped)},
			{"Terms", strconv.Itoa(summary.Terms)},
			{"Elapsed", summary.Elapsed.Round(time.Millisecond).String()},
		},
	})
	md.PlainText("")

	if summary.Skipped > 0 {
		md.Warningf("%d document(s) had unreadable content and were left out.", summary.Skipped)
		md.PlainText("")
	}
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// WriteSearch outputs ranked results as a Markdown table.
func (w *MarkdownWriter) WriteSearch(resp *model.SearchResponse) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Search Results")
	md.PlainText("")
	md.PlainTextf("Query: `%s` (top %d)", resp.Query, resp.TopK)
	md.PlainText("")

	if len(resp.Results) == 0 {
		md.Note("No documents matched.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(resp.Results))
	for i, r := range resp.Results {
		target := r.URL
		if target == "" {
			target = "-"
		}
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(r.Score, 'f', 4, 64),
			truncateString(target, 80),
			"`" + r.DocumentID + "`",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Score", "URL", "Document"},
		Rows:   rows,
	})
	md.PlainText("")
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [webscour](https://github.com/nao1215/webscour)*")
}
