package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sitegraph/sitegraph/internal/fetch"
	"github.com/sitegraph/sitegraph/internal/graph"
	"github.com/sitegraph/sitegraph/internal/model"
	"github.com/sitegraph/sitegraph/internal/urlkey"
)

// Discoverer supplies candidate canonical keys before the walk begins.
// The discovery aggregator implements it; a nil Discoverer disables the
// phase.
type Discoverer interface {
	Discover(ctx context.Context) []string
}

// Recorder receives every successfully fetched page, for the optional
// fetch-history sidecar. Recording failures are logged, never fatal.
type Recorder interface {
	RecordFetch(ctx context.Context, domain string, page *model.Page) error
}

// Walker drains a breadth-first frontier over one domain's pages.
type Walker struct {
	// seed is the parsed seed URL; its scheme seeds variant
	// reconstruction for keys whose exact URL was never seen.
	seed *url.URL

	// domain and pathPrefix define the crawl scope. The defaults come
	// from the seed itself: its host, and its path when it names more
	// than the root.
	domain     string
	pathPrefix string

	// storePath is where the adjacency mapping is persisted after
	// every visited node.
	storePath string

	selector   *fetch.Selector
	discoverer Discoverer
	recorder   Recorder
	logger     *slog.Logger

	// adj is the live adjacency mapping. Key presence means the node
	// was crawled; a rerun enqueues its neighbors without refetching.
	adj graph.Adjacency

	// samples remembers the exact URL each key was first seen under,
	// tried first among that key's fetch variants.
	samples map[string]string
}

// WalkerOption configures a Walker.
type WalkerOption func(*Walker)

// WithScope overrides the seed-derived crawl scope.
func WithScope(domain, pathPrefix string) WalkerOption {
	return func(w *Walker) {
		w.domain = domain
		w.pathPrefix = pathPrefix
	}
}

// WithStorePath sets the graph store location. The default is the
// per-domain filename in the working directory.
func WithStorePath(path string) WalkerOption {
	return func(w *Walker) {
		w.storePath = path
	}
}

// WithDiscoverer enables the discovery phase.
func WithDiscoverer(d Discoverer) WalkerOption {
	return func(w *Walker) {
		w.discoverer = d
	}
}

// WithRecorder enables fetch-history recording.
func WithRecorder(r Recorder) WalkerOption {
	return func(w *Walker) {
		w.recorder = r
	}
}

// WithLogger sets the walk logger.
func WithLogger(logger *slog.Logger) WalkerOption {
	return func(w *Walker) {
		w.logger = logger
	}
}

// NewWalker creates a Walker rooted at the seed URL. The seed must be
// an absolute URL with a host that survives canonicalization.
func NewWalker(seedURL string, selector *fetch.Selector, opts ...WalkerOption) (*Walker, error) {
	seed, err := url.Parse(strings.TrimSpace(seedURL))
	if err != nil {
		return nil, fmt.Errorf("failed to parse seed URL %q: %w", seedURL, err)
	}

	seedKey := urlkey.Canonicalize(seed.String())
	if seedKey == "" {
		return nil, fmt.Errorf("seed URL %q has no usable host", seedURL)
	}

	w := &Walker{
		seed:     seed,
		domain:   urlkey.NormalizeHost(seed.Host),
		selector: selector,
		samples:  map[string]string{seedKey: seed.String()},
	}
	if p := urlkey.NormalizePath(seed.Path); p != "/" {
		w.pathPrefix = p
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.storePath == "" {
		w.storePath = graph.DefaultPath(w.domain)
	}
	if w.logger == nil {
		w.logger = slog.Default()
	}
	return w, nil
}

// Run drains the frontier and returns the run summary. Fetch failures
// are absorbed per node; the only fatal errors are a failed store load
// or a failed store write, since continuing past either would lose the
// resumability guarantee. When ctx is cancelled the walk stops after
// the in-flight node and the summary is returned with Interrupted set.
func (w *Walker) Run(ctx context.Context) (*model.Summary, error) {
	summary := &model.Summary{
		Domain:     w.domain,
		PathPrefix: w.pathPrefix,
		StorePath:  w.storePath,
		StartedAt:  time.Now(),
	}

	adj, err := graph.Load(w.storePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load graph store: %w", err)
	}
	w.adj = graph.Clean(adj)

	seedKey := urlkey.Canonicalize(w.seed.String())
	frontier := []string{seedKey}
	queued := map[string]bool{seedKey: true}
	visited := make(map[string]bool)

	if w.discoverer != nil {
		for _, key := range w.discoverer.Discover(ctx) {
			if !urlkey.KeyInScope(key, w.domain, w.pathPrefix) || queued[key] {
				continue
			}
			queued[key] = true
			frontier = append(frontier, key)
			summary.Discovered++
		}
		w.logger.Info("discovery finished", "enqueued", summary.Discovered)
	}

walk:
	for len(frontier) > 0 {
		select {
		case <-ctx.Done():
			summary.Interrupted = true
			break walk
		default:
		}

		current := frontier[0]
		frontier = frontier[1:]
		if visited[current] {
			continue
		}
		visited[current] = true

		// A key already present in the store was crawled by an earlier
		// run: enqueue its recorded neighbors and move on.
		if neighbors, ok := w.adj[current]; ok {
			for _, nb := range neighbors {
				if !visited[nb] && !queued[nb] {
					queued[nb] = true
					frontier = append(frontier, nb)
				}
			}
			continue
		}

		neighbors, page := w.visit(ctx, current)
		w.adj[current] = neighbors
		// Sweep before every write so a non-page-like key (an asset
		// seed) never persists as a node.
		w.adj = graph.Clean(w.adj)
		if err := graph.Write(w.adj, w.storePath); err != nil {
			return nil, fmt.Errorf("failed to persist graph store: %w", err)
		}

		if page != nil {
			summary.PagesFetched++
			w.record(ctx, page)
		}
		w.logger.Info("visited node",
			"key", current, "neighbors", len(neighbors), "remaining", len(frontier))

		for _, nb := range neighbors {
			if !visited[nb] && !queued[nb] {
				queued[nb] = true
				frontier = append(frontier, nb)
			}
		}
	}

	summary.Nodes = w.adj.Nodes()
	summary.KnownNodes = len(summary.Nodes)
	summary.FinishedAt = time.Now()
	return summary, nil
}

// visit fetches one node and returns its in-scope neighbor keys. A node
// whose every fetch variant fails is recorded as crawled with zero
// neighbors (nil page), so it is never retried across runs.
func (w *Walker) visit(ctx context.Context, key string) ([]string, *model.Page) {
	variants := fetch.Variants(key, w.samples[key], w.seed.Scheme)
	page, err := w.selector.Fetch(ctx, variants)
	if err != nil {
		w.logger.Warn("all fetch variants failed", "key", key, "error", err)
		return []string{}, nil
	}
	page.Key = key

	links := w.extract(page)
	if rule, fired := fetch.DetectRenderShell(page.HTML, len(links)); fired {
		w.logger.Debug("render shell detected", "key", key, "rule", rule)
		if w.selector.Render(ctx, page) {
			links = w.extract(page)
		}
	}

	return w.scopeNeighbors(links), page
}

// extract parses the page's working HTML for links and fills in the
// title on first successful parse.
func (w *Walker) extract(page *model.Page) []string {
	result, err := ParseHTML(page.HTML, page.URL)
	if err != nil {
		w.logger.Debug("link extraction failed", "key", page.Key, "error", err)
		return nil
	}
	if page.Title == "" {
		page.Title = result.Title
	}
	return result.Links
}

// scopeNeighbors converts extracted links into the sorted set of
// in-scope, page-like canonical keys, remembering each key's first
// concrete URL for later variant construction.
func (w *Walker) scopeNeighbors(links []string) []string {
	set := make(map[string]bool)
	for _, link := range links {
		if !urlkey.InScope(link, w.domain, w.pathPrefix) {
			continue
		}
		key := urlkey.Canonicalize(link)
		if key == "" || !urlkey.PageLike(key) {
			continue
		}
		if _, ok := w.samples[key]; !ok {
			w.samples[key] = link
		}
		set[key] = true
	}

	neighbors := make([]string, 0, len(set))
	for key := range set {
		neighbors = append(neighbors, key)
	}
	sort.Strings(neighbors)
	return neighbors
}

// record hands a fetched page to the history recorder, if any.
func (w *Walker) record(ctx context.Context, page *model.Page) {
	if w.recorder == nil {
		return
	}
	if err := w.recorder.RecordFetch(ctx, w.domain, page); err != nil {
		w.logger.Warn("failed to record fetch history", "key", page.Key, "error", err)
	}
}
