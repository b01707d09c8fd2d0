package crawler

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/nao1215/webscour/internal/extract"
	"github.com/nao1215/webscour/internal/fetch"
)

// outcome is what the crawl loop needs from one URL: the body to persist
// and the links to expand, or the error that ended the attempt.
type outcome struct {
	body     []byte
	title    string
	links    []string
	attempts int
	err      error
}

// adapter turns the fetch and extract collaborators into an outcome.
type adapter struct {
	fetcher Fetcher
	parser  extract.Parser
	retry   RetryPolicy
	logger  *slog.Logger
}

// visit fetches rawURL under the retry policy and extracts its links.
// Markup that cannot be parsed still counts as a fetched page, with no links.
func (a *adapter) visit(ctx context.Context, rawURL string) outcome {
	var resp *fetch.Response
	attempts, err := a.retry.Do(ctx, func(ctx context.Context) error {
		r, err := a.fetcher.Fetch(ctx, rawURL)
		if err != nil {
			a.logger.Debug("fetch attempt failed",
				"url", rawURL,
				"kind", fetch.KindOf(err).String(),
				"error", err,
			)
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return outcome{attempts: attempts, err: err}
	}

	out := outcome{body: resp.Body, attempts: attempts}

	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		return outcome{attempts: attempts, err: fmt.Errorf("parse final URL %q: %w", resp.FinalURL, err)}
	}

	page, err := a.parser.Parse(bytes.NewReader(resp.Body))
	if err != nil {
		a.logger.Warn("failed to parse page, no links expanded", "url", rawURL, "error", err)
		return out
	}

	if t, ok := page.(extract.Titled); ok {
		out.title = t.Title()
	}
	out.links = page.Hyperlinks(base)
	return out
}
