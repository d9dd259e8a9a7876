package renderer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/amosWeiskopf/sitegraph/pkg/extractor"
	"github.com/rs/zerolog"
)

const maxBodySize = 10 * 1024 * 1024

// HTTP fetches pages with a plain HTTP client and parses the returned HTML.
// It does not execute scripts, so links injected client-side are not seen.
type HTTP struct {
	client    *http.Client
	userAgent string
	timeout   time.Duration
	maxBody   int64
	logger    zerolog.Logger
	open      bool
}

// HTTPOption configures an HTTP renderer
type HTTPOption func(*HTTP)

// WithHTTPLogger sets the logger used for truncation warnings
func WithHTTPLogger(l zerolog.Logger) HTTPOption {
	return func(h *HTTP) {
		h.logger = l
	}
}

// WithMaxBodySize caps how many bytes of a response are parsed
func WithMaxBodySize(n int64) HTTPOption {
	return func(h *HTTP) {
		h.maxBody = n
	}
}

// NewHTTP creates an HTTP renderer. A nil client gets a default one on Open.
func NewHTTP(client *http.Client, userAgent string, timeout time.Duration, opts ...HTTPOption) *HTTP {
	h := &HTTP{
		client:    client,
		userAgent: userAgent,
		timeout:   timeout,
		maxBody:   maxBodySize,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HTTP) Open(_ context.Context) error {
	if h.client == nil {
		h.client = &http.Client{Timeout: h.timeout}
	}
	h.open = true
	return nil
}

func (h *HTTP) Fetch(ctx context.Context, pageURL string) (*models.Document, error) {
	if !h.open {
		return nil, ErrNotOpen
	}

	if h.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	if h.userAgent != "" {
		req.Header.Set("User-Agent", h.userAgent)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := h.client.Do(req)
	if err != nil {
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return nil, fmt.Errorf("%w: %s", ErrTimeout, pageURL)
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return nil, fmt.Errorf("%w: %s: status %d", ErrNavigation, pageURL, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, h.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	if int64(len(body)) > h.maxBody {
		h.logger.Warn().Str("url", pageURL).Int64("limit", h.maxBody).Msg("response body truncated, later links are lost")
		body = body[:h.maxBody]
	}

	doc, err := extractor.Extract(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNavigation, pageURL, err)
	}
	return doc, nil
}

func (h *HTTP) Close() error {
	if h.client != nil {
		h.client.CloseIdleConnections()
	}
	h.open = false
	return nil
}
