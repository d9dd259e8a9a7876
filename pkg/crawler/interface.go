package crawler

import (
	"context"

	"github.com/amosWeiskopf/sitegraph/internal/metrics"
	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/rs/zerolog"
)

// Renderer loads a page and reports its title and anchor hrefs.
// Open and Close bracket a whole crawl; Fetch is called once per page in between.
type Renderer interface {
	// Open acquires the rendering session (browser, HTTP transport)
	Open(ctx context.Context) error

	// Fetch loads url and returns the rendered document
	Fetch(ctx context.Context, url string) (*models.Document, error)

	// Close releases the session
	Close() error
}

// DefaultMaxDepth is the depth limit used when none is configured
const DefaultMaxDepth = 4

// Option configures a Crawler
type Option func(*Crawler)

// WithMaxDepth sets the maximum crawl depth.
// The root is depth 0, so 1 fetches only the root page.
func WithMaxDepth(depth int) Option {
	return func(c *Crawler) {
		c.maxDepth = depth
	}
}

// WithMaxPages stops fetching once n pages have been fetched. 0 means no limit.
func WithMaxPages(n int) Option {
	return func(c *Crawler) {
		c.maxPages = n
	}
}

// WithLogger sets the diagnostic logger
func WithLogger(l zerolog.Logger) Option {
	return func(c *Crawler) {
		c.logger = l
	}
}

// WithMetrics records crawl progress on m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Crawler) {
		c.metrics = m
	}
}

// ProgressFunc is called after every successful fetch with the page and the running fetch count
type ProgressFunc func(pageURL string, fetched int)

// WithProgress reports each fetched page to fn
func WithProgress(fn ProgressFunc) Option {
	return func(c *Crawler) {
		c.progress = fn
	}
}
