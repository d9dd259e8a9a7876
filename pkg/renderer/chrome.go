package renderer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/amosWeiskopf/sitegraph/pkg/extractor"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"
)

// Chrome renders pages in a headless Chrome driven by chromedp.
// One browser is started per session; every Fetch runs in its own tab.
type Chrome struct {
	userAgent string
	timeout   time.Duration
	headless  bool
	logger    zerolog.Logger

	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
}

// ChromeOption configures a Chrome renderer
type ChromeOption func(*Chrome)

// WithHeadless toggles headless mode (default on)
func WithHeadless(headless bool) ChromeOption {
	return func(c *Chrome) {
		c.headless = headless
	}
}

// WithChromeLogger routes chromedp's own log output to l at debug level
func WithChromeLogger(l zerolog.Logger) ChromeOption {
	return func(c *Chrome) {
		c.logger = l
	}
}

// NewChrome creates a Chrome renderer; nothing is started until Open
func NewChrome(userAgent string, timeout time.Duration, opts ...ChromeOption) *Chrome {
	c := &Chrome{
		userAgent: userAgent,
		timeout:   timeout,
		headless:  true,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Chrome) allocatorOptions() []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.DisableGPU,
		chromedp.NoSandbox,
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if c.userAgent != "" {
		opts = append(opts, chromedp.UserAgent(c.userAgent))
	}
	if !c.headless {
		opts = append(opts, chromedp.Flag("headless", false))
	}
	return opts
}

// Open launches the browser. The browser lives until Close.
func (c *Chrome) Open(ctx context.Context) error {
	if c.browserCtx != nil {
		return nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.WithoutCancel(ctx), c.allocatorOptions()...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...any) {
			c.logger.Debug().Msgf(format, args...)
		}),
	)

	// Run with no actions starts the browser
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return fmt.Errorf("%w: %v", ErrStartup, err)
	}

	c.allocCancel = allocCancel
	c.browserCtx = browserCtx
	c.browserCancel = browserCancel
	return nil
}

// Fetch opens a tab, loads pageURL and reads its title and followable links.
// The tab is closed before Fetch returns.
func (c *Chrome) Fetch(ctx context.Context, pageURL string) (*models.Document, error) {
	if c.browserCtx == nil {
		return nil, ErrNotOpen
	}

	tabCtx, closeTab := chromedp.NewContext(c.browserCtx)
	defer closeTab()

	// Cancel the tab when the caller gives up
	stop := context.AfterFunc(ctx, closeTab)
	defer stop()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		tabCtx, cancel = context.WithTimeout(tabCtx, c.timeout)
		defer cancel()
	}

	var title, outerHTML string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Title(&title),
		chromedp.OuterHTML("html", &outerHTML, chromedp.ByQuery),
	)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, pageURL)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}

	doc, err := extractor.ExtractString(outerHTML)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	// document.title reflects script changes the serialized <title> may not
	if t := strings.TrimSpace(title); t != "" {
		doc.Title = t
	}
	return doc, nil
}

// Close shuts the browser down
func (c *Chrome) Close() error {
	if c.browserCtx == nil {
		return nil
	}
	c.browserCancel()
	c.allocCancel()
	c.browserCtx = nil
	return nil
}
