package crawler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amosWeiskopf/sitegraph/internal/metrics"
	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/amosWeiskopf/sitegraph/pkg/renderer"
	"github.com/amosWeiskopf/sitegraph/pkg/utils"
	"github.com/rs/zerolog"
)

// ErrNoSite is returned when Crawl is called without a site root
var ErrNoSite = errors.New("no site URL provided")

// Crawler walks a site depth-first from its root, following internal links only
type Crawler struct {
	renderer Renderer
	maxDepth int
	maxPages int
	logger   zerolog.Logger
	metrics  *metrics.Metrics
	progress ProgressFunc

	site  string
	state *State
	stats models.Stats
}

// New creates a crawler that loads pages through r
func New(r Renderer, opts ...Option) *Crawler {
	c := &Crawler{
		renderer: r,
		maxDepth: DefaultMaxDepth,
		logger:   zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Crawl opens the renderer session, walks site and returns every page discovered.
// Per-page failures never abort the crawl; only a missing site or a renderer
// that cannot start is reported as an error.
func (c *Crawler) Crawl(ctx context.Context, site string) (*models.CrawlResult, error) {
	if site == "" {
		return nil, ErrNoSite
	}

	c.site = site
	c.state = NewState()
	c.stats = models.Stats{}
	started := time.Now()

	if err := c.renderer.Open(ctx); err != nil {
		return nil, fmt.Errorf("start renderer: %w", err)
	}
	defer func() {
		if err := c.renderer.Close(); err != nil {
			c.logger.Warn().Err(err).Msg("closing renderer")
		}
	}()

	c.logger.Info().Str("site", site).Int("max_depth", c.maxDepth).Msg("starting crawl")

	c.state.MarkVisited(site)
	c.scrape(ctx, site, 0)

	pages := c.state.Pages()
	for _, p := range pages {
		if p.IsStub() {
			c.stats.Stubs++
		}
	}

	result := &models.CrawlResult{
		Site:      site,
		Pages:     pages,
		Visited:   c.state.VisitedCount(),
		Stats:     c.stats,
		StartedAt: started,
		Duration:  time.Since(started),
	}

	c.logger.Info().
		Int("pages", len(pages)).
		Int("fetched", c.stats.Fetched).
		Int("failed", c.stats.Failed).
		Int("stubs", c.stats.Stubs).
		Dur("duration", result.Duration).
		Msg("crawl finished")

	return result, nil
}

// State exposes the bookkeeping of the last crawl
func (c *Crawler) State() *State {
	return c.state
}

func (c *Crawler) scrape(ctx context.Context, pageURL string, depth int) {
	if depth >= c.maxDepth {
		c.logger.Debug().Str("url", pageURL).Int("depth", depth).Msg("depth limit reached, not expanding")
		c.stats.DepthCapped++
		c.metrics.IncDepthCapped()
		return
	}
	if c.maxPages > 0 && c.stats.Fetched >= c.maxPages {
		c.logger.Debug().Str("url", pageURL).Int("max_pages", c.maxPages).Msg("page limit reached, not fetching")
		c.stats.Skipped++
		c.metrics.IncSkipped()
		return
	}

	start := time.Now()
	doc, err := c.renderer.Fetch(ctx, pageURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", pageURL).Int("depth", depth).Msg("fetch failed")
		c.stats.Failed++
		c.metrics.IncFailure(failureReason(err))
		return
	}
	c.stats.Fetched++
	c.metrics.ObserveFetch(time.Since(start))

	c.logBreakdown(pageURL)

	links := utils.InternalLinks(doc.Links, c.site)
	c.state.RecordFetched(pageURL, doc.Title, links, depth)

	for _, link := range links {
		c.state.UpsertStub(link, depth+1)
	}
	c.metrics.SetPagesKnown(c.state.Len())
	if c.progress != nil {
		c.progress(pageURL, c.stats.Fetched)
	}

	c.logger.Debug().
		Str("url", pageURL).
		Str("title", doc.Title).
		Int("depth", depth).
		Int("raw_links", len(doc.Links)).
		Int("internal_links", len(links)).
		Msg("page fetched")

	for _, link := range links {
		if c.state.IsVisited(link) {
			continue
		}
		c.state.MarkVisited(link)
		c.scrape(ctx, link, depth+1)
	}
}

func (c *Crawler) logBreakdown(pageURL string) {
	parts, err := utils.Breakdown(pageURL)
	if err != nil {
		c.logger.Warn().Err(err).Str("url", pageURL).Msg("cannot decompose URL")
		return
	}
	c.logger.Debug().
		Str("scheme", parts.Scheme).
		Str("host", parts.Host).
		Str("domain", parts.Domain).
		Str("path", parts.Path).
		Str("query", parts.Query).
		Str("fragment", parts.Fragment).
		Msg("url breakdown")
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, renderer.ErrTimeout), errors.Is(err, context.DeadlineExceeded):
		return metrics.ReasonTimeout
	case errors.Is(err, renderer.ErrNavigation):
		return metrics.ReasonNavigation
	default:
		return metrics.ReasonOther
	}
}
