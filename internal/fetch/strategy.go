package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sitegraph/sitegraph/internal/model"
	"github.com/sitegraph/sitegraph/internal/urlkey"
)

// Strategy names recorded on fetched pages.
const (
	StrategyHTTP   = "http"
	StrategyRender = "render"
)

// ErrAllVariantsFailed is returned when no URL variant produced a
// successful HTML response. Callers record the node as crawled with
// zero neighbors rather than leaving it pending, so permanently-broken
// URLs are never retried across runs.
var ErrAllVariantsFailed = errors.New("no URL variant yielded an HTML response")

// Renderer is the heavyweight fetch capability: it loads a page in a
// full browser environment and returns the settled HTML. Implementations
// live outside this core.
type Renderer interface {
	// Render fetches url and returns the rendered document.
	Render(ctx context.Context, url string) (string, error)
}

// Selector performs lightweight fetches over URL variants and escalates
// to a Renderer when a page looks like a client-rendered shell.
type Selector struct {
	// client performs the lightweight HTTP GETs. It follows redirects.
	client *http.Client

	// timeout bounds each individual fetch attempt.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// headers are extra request headers, typically from site config.
	headers map[string]string

	// cookie is an optional Cookie header value from site config.
	cookie string

	// renderer is the optional heavyweight strategy. Nil means
	// escalation is skipped and the lightweight HTML is kept.
	renderer Renderer

	// maxBodySize limits how much of a response body is read.
	maxBodySize int64

	logger *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector)

// WithTimeout sets the per-attempt fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *Selector) {
		s.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Selector) {
		s.userAgent = ua
	}
}

// WithHeaders sets extra request headers sent with every fetch.
func WithHeaders(headers map[string]string) Option {
	return func(s *Selector) {
		s.headers = headers
	}
}

// WithCookie sets a Cookie header value sent with every fetch.
func WithCookie(cookie string) Option {
	return func(s *Selector) {
		s.cookie = cookie
	}
}

// WithRenderer plugs in the heavyweight rendering strategy.
func WithRenderer(r Renderer) Option {
	return func(s *Selector) {
		s.renderer = r
	}
}

// WithMaxBodySize sets the maximum response body size to read.
func WithMaxBodySize(size int64) Option {
	return func(s *Selector) {
		s.maxBodySize = size
	}
}

// WithLogger sets the logger used for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) {
		s.logger = logger
	}
}

// NewSelector creates a Selector using the given HTTP client.
//
// Design decision: We require an external client because tests supply
// httptest-backed clients, and the CLI configures redirect policy and
// transport settings in one place.
func NewSelector(client *http.Client, opts ...Option) *Selector {
	s := &Selector{
		client:      client,
		timeout:     15 * time.Second,
		userAgent:   "sitegraph/1.0 (+https://github.com/sitegraph/sitegraph)",
		maxBodySize: model.MaxPageSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Variants builds the ordered URL list to try for one canonical key:
// the exact URL the key was first seen under (if any), the seed-scheme
// reconstruction, then forced https and forced http. Duplicates are
// removed preserving order.
func Variants(key, sampleURL, seedScheme string) []string {
	host, path := urlkey.KeyParts(key)

	candidates := make([]string, 0, 4)
	if sampleURL != "" {
		candidates = append(candidates, sampleURL)
	}
	if seedScheme != "" {
		candidates = append(candidates, fmt.Sprintf("%s://%s%s", seedScheme, host, path))
	}
	candidates = append(candidates,
		fmt.Sprintf("https://%s%s", host, path),
		fmt.Sprintf("http://%s%s", host, path),
	)

	seen := make(map[string]bool, len(candidates))
	out := make([]string, 0, len(candidates))
	for _, u := range candidates {
		if seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Fetch attempts each URL variant in order with a lightweight GET and
// returns the first response with a successful status and an HTML
// content type. A failed attempt demotes to the next variant; when all
// variants fail it returns ErrAllVariantsFailed.
func (s *Selector) Fetch(ctx context.Context, variants []string) (*model.Page, error) {
	for _, u := range variants {
		page, err := s.fetchOne(ctx, u)
		if err != nil {
			s.logger.Debug("fetch attempt failed", "url", u, "error", err)
			continue
		}
		return page, nil
	}
	return nil, ErrAllVariantsFailed
}

// fetchOne performs a single GET attempt against one URL variant.
func (s *Selector) fetchOne(ctx context.Context, pageURL string) (*model.Page, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(attemptCtx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", s.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	for k, v := range s.headers {
		req.Header.Set(k, v)
	}
	if s.cookie != "" {
		req.Header.Set("Cookie", s.cookie)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	page := &model.Page{
		URL:         pageURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Strategy:    StrategyHTTP,
	}
	if !page.IsHTML() {
		return nil, fmt.Errorf("content type %q is not HTML", page.ContentType)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBodySize))
	if err != nil {
		return nil, err
	}

	page.HTML = string(body)
	page.Truncate()
	page.ComputeHash()
	return page, nil
}

// Render re-fetches a page through the heavyweight strategy and replaces
// the page's working HTML with the rendered document. It returns true
// only when rendering produced non-empty content; on failure or when no
// renderer is configured the lightweight HTML is kept, which is the
// specified degradation.
func (s *Selector) Render(ctx context.Context, page *model.Page) bool {
	if s.renderer == nil {
		s.logger.Debug("render escalation skipped: no renderer configured", "url", page.URL)
		return false
	}

	renderCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	html, err := s.renderer.Render(renderCtx, page.URL)
	if err != nil || html == "" {
		s.logger.Debug("render escalation failed, keeping lightweight HTML",
			"url", page.URL, "error", err)
		return false
	}

	page.HTML = html
	page.Strategy = StrategyRender
	page.Truncate()
	page.ComputeHash()
	return true
}

// RenderFunc adapts a plain function to the Renderer interface.
type RenderFunc func(ctx context.Context, url string) (string, error)

// Render implements Renderer.
func (f RenderFunc) Render(ctx context.Context, url string) (string, error) {
	return f(ctx, url)
}
