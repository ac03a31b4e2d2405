package discover

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sitegraph/sitegraph/internal/urlkey"
)

// maxResponseSize limits how much of any discovery response is read.
// Sitemaps for very large sites can be tens of megabytes; anything
// beyond this is cut off rather than buffered.
const maxResponseSize = 10 << 20

// Aggregator queries the discovery channels for one domain.
type Aggregator struct {
	// client performs all discovery HTTP requests.
	client *http.Client

	// base is the seed URL; well-known paths resolve against its
	// scheme and host.
	base *url.URL

	// timeout bounds each individual request.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Aggregator) {
		a.timeout = d
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(a *Aggregator) {
		a.userAgent = ua
	}
}

// WithLogger sets the logger used for channel diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		a.logger = logger
	}
}

// NewAggregator creates an Aggregator rooted at the given seed URL.
func NewAggregator(client *http.Client, seedURL string, opts ...Option) (*Aggregator, error) {
	base, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed URL: %w", err)
	}
	if base.Host == "" {
		return nil, fmt.Errorf("seed URL %q has no host", seedURL)
	}

	a := &Aggregator{
		client:    client,
		base:      base,
		timeout:   15 * time.Second,
		userAgent: "sitegraph/1.0 (+https://github.com/sitegraph/sitegraph)",
	}

	for _, opt := range opts {
		opt(a)
	}

	if a.logger == nil {
		a.logger = slog.Default()
	}
	return a, nil
}

// Discover runs all channels concurrently and merges their output into
// a sorted, deduplicated set of canonical keys. Channel errors are
// logged and treated as "zero URLs from this channel"; they never
// propagate to the caller.
func (a *Aggregator) Discover(ctx context.Context) []string {
	channels := []struct {
		name string
		run  func(context.Context) ([]string, error)
	}{
		{"robots", a.fromRobots},
		{"sitemaps", a.fromSitemaps},
		{"llms-txt", a.fromLLMSTxt},
		{"feeds", a.fromFeeds},
		{"head-links", a.fromHeadLinks},
	}

	// Each channel writes only its own slot, so the merge needs no
	// locking beyond the errgroup join.
	results := make([][]string, len(channels))

	g := new(errgroup.Group)
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			urls, err := ch.run(ctx)
			if err != nil {
				a.logger.Debug("discovery channel failed",
					"channel", ch.name, "error", err)
				return nil
			}
			a.logger.Debug("discovery channel finished",
				"channel", ch.name, "urls", len(urls))
			results[i] = urls
			return nil
		})
	}
	_ = g.Wait() // channels never return errors

	var all []string
	for _, urls := range results {
		all = append(all, urls...)
	}
	return MergeKeys(all)
}

// MergeKeys canonicalizes raw URLs and deduplicates them by canonical
// key with the document extension stripped, so /post, /post.html, and
// /post.md all land in one group. When a group contains both a .md key
// and a non-.md key, the .md key wins: documentation sites serve a
// higher-fidelity raw-markdown twin of each page. Non-page-like URLs
// are dropped. The result is sorted.
func MergeKeys(rawURLs []string) []string {
	groups := make(map[string]string, len(rawURLs))
	for _, raw := range rawURLs {
		key := urlkey.Canonicalize(raw)
		if key == "" || !urlkey.PageLike(key) {
			continue
		}

		group := stripDocExt(key)
		current, ok := groups[group]
		if !ok {
			groups[group] = key
			continue
		}
		if strings.HasSuffix(key, ".md") && !strings.HasSuffix(current, ".md") {
			groups[group] = key
		}
	}

	keys := make([]string, 0, len(groups))
	for _, key := range groups {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// stripDocExt removes a trailing document extension from a canonical
// key for merge grouping.
func stripDocExt(key string) string {
	lower := strings.ToLower(key)
	for _, ext := range []string{".md", ".html", ".htm"} {
		if strings.HasSuffix(lower, ext) {
			return key[:len(key)-len(ext)]
		}
	}
	return key
}

// get fetches one discovery URL and returns its body. Responses with
// an error status count as failures.
func (a *Aggregator) get(ctx context.Context, rawURL string) ([]byte, error) {
	reqCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", a.userAgent)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("GET %s: status %d", rawURL, resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// abs turns a site-relative path into an absolute URL on the seed's
// scheme and host.
func (a *Aggregator) abs(path string) string {
	return a.base.Scheme + "://" + a.base.Host + path
}

// resolve resolves a possibly-relative reference against the seed URL.
// The query is kept: feed pagination and sitemap locations may depend
// on it. Canonicalization drops it later for page URLs.
func (a *Aggregator) resolve(href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	return a.base.ResolveReference(ref).String()
}
