package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/nao1215/webscour/internal/config"
	"github.com/nao1215/webscour/internal/model"
)

// Response is a successful fetch.
type Response struct {
	// URL is the URL that was requested.
	URL string

	// FinalURL is the URL after redirects; relative links resolve against it.
	FinalURL string

	// StatusCode is the 2xx status returned by the server.
	StatusCode int

	// ContentType is the Content-Type response header.
	ContentType string

	// Body is the response body, truncated to the configured maximum.
	Body []byte
}

// Fetcher performs bounded HTTP GET requests.
type Fetcher struct {
	client      *http.Client
	userAgent   string
	maxBodySize int64
	sites       *config.File
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout bounds each request, including reading the body.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.client.Timeout = d
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize caps how many body bytes are read.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxBodySize = n
		}
	}
}

// WithSiteConfigs applies per-host cookies and headers from the config file.
func WithSiteConfigs(sites *config.File) Option {
	return func(f *Fetcher) {
		f.sites = sites
	}
}

// WithHTTPClient replaces the underlying client. The client's Timeout is
// overwritten by a later WithTimeout option.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// New creates a Fetcher with defaults from the config package.
func New(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{Timeout: config.DefaultTimeout},
		userAgent:   config.DefaultUserAgent,
		maxBodySize: config.DefaultMaxBodySize,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Fetch performs one GET attempt. Any failure is returned as *Error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindOther, URL: rawURL, Err: err}
	}

	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	f.applySiteConfig(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, &Error{Kind: classify(ctx, err), URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096)) //nolint:errcheck // best effort
		return nil, &Error{
			Kind:       KindStatus,
			URL:        rawURL,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %s", resp.Status),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize))
	if err != nil {
		return nil, &Error{Kind: classify(ctx, err), URL: rawURL, Err: err}
	}

	finalURL := rawURL
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &Response{
		URL:         rawURL,
		FinalURL:    finalURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

// applySiteConfig sets the cookie and extra headers configured for the request host.
func (f *Fetcher) applySiteConfig(req *http.Request) {
	if f.sites == nil {
		return
	}

	site := f.sites.GetSiteConfig(model.Host(req.URL.String()))
	if site.Cookie != "" {
		req.Header.Set("Cookie", site.Cookie)
	}
	for k, v := range site.Headers {
		req.Header.Set(k, v)
	}
	if site.UserAgent != "" {
		req.Header.Set("User-Agent", site.UserAgent)
	}
}
