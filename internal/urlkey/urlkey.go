package urlkey

import (
	"net/url"
	"path"
	"regexp"
	"strings"
)

// pageExtensions are the path extensions a canonical key may carry and
// still count as a page. Everything else is an asset and never becomes
// a graph node. The ".md" entry exists because documentation sites often
// serve a raw-markdown twin of each page and discovery prefers it.
var pageExtensions = map[string]bool{
	"":      true,
	".html": true,
	".htm":  true,
	".md":   true,
}

// nonNavigableScheme matches href schemes that can never lead to a page:
// script execution, mail, phone, SMS, embedded data, and FTP links.
var nonNavigableScheme = regexp.MustCompile(`(?i)^(javascript|mailto|tel|sms|data|ftp):`)

// NormalizeHost reduces a URL host to its identity form: lowercased,
// userinfo and port stripped, leading "www." stripped, trailing dot
// stripped. Two hosts with the same normalized form serve the same site
// for our purposes.
func NormalizeHost(host string) string {
	h := strings.ToLower(host)
	if at := strings.LastIndex(h, "@"); at >= 0 {
		h = h[at+1:]
	}
	if colon := strings.Index(h, ":"); colon >= 0 {
		h = h[:colon]
	}
	h = strings.TrimPrefix(h, "www.")
	h = strings.TrimSuffix(h, ".")
	return h
}

// NormalizePath reduces a URL path to its identity form: duplicate
// slashes collapsed, dot segments resolved, leading slash enforced,
// trailing slash stripped unless the path is the root.
func NormalizePath(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	// path.Clean collapses duplicate slashes, resolves "." and "..",
	// and drops any trailing slash except on the root.
	return path.Clean(p)
}

// Canonicalize converts a URL into its canonical key.
//
// The key is insensitive to scheme, www prefix, port, and trailing
// slash; query parameters and fragments are discarded. Examples:
//
//	https://www.Example.com:443/   -> example.com
//	http://example.com/about/      -> example.com/about
//
// An empty return means the URL has no host (it is not a valid absolute
// URL) and must be discarded by the caller, never enqueued.
// Canonicalization is idempotent: feeding a reconstructed key back in
// yields the same key.
func Canonicalize(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	host := NormalizeHost(u.Host)
	if host == "" {
		return ""
	}

	p := NormalizePath(u.Path)
	if p == "/" {
		return host
	}
	return host + p
}

// KeyParts splits a canonical key into its host and path. The path is
// always absolute; a bare-host key yields "/".
func KeyParts(key string) (host, keyPath string) {
	host, rest, found := strings.Cut(key, "/")
	if !found || rest == "" {
		return host, "/"
	}
	return host, "/" + rest
}

// PageLike reports whether a canonical key names a page rather than an
// asset. A key is page-like when its path has no extension or carries an
// HTML (or markdown) document extension. Asset keys must never become
// graph nodes or edge endpoints.
func PageLike(key string) bool {
	_, p := KeyParts(key)
	if p == "/" {
		return true
	}
	return pageExtensions[strings.ToLower(path.Ext(p))]
}

// InScope reports whether a URL belongs to the crawl scope: its host
// must equal the allowed domain (www/port-insensitive), and when a path
// prefix is configured the URL's normalized path must start with it.
// The prefix matching itself (without a trailing segment) also counts.
func InScope(rawURL, domain, pathPrefix string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	if NormalizeHost(u.Host) != domain {
		return false
	}
	if pathPrefix == "" || pathPrefix == "/" {
		return true
	}
	p := NormalizePath(u.Path)
	return p == pathPrefix || strings.HasPrefix(p, pathPrefix+"/")
}

// KeyInScope reports whether an already-canonical key belongs to the
// crawl scope. Discovery channels can surface off-domain keys (llms.txt
// manifests in particular link freely), so scope is re-checked at the
// key level before enqueueing.
func KeyInScope(key, domain, pathPrefix string) bool {
	host, p := KeyParts(key)
	if host != domain {
		return false
	}
	if pathPrefix == "" || pathPrefix == "/" {
		return true
	}
	return p == pathPrefix || strings.HasPrefix(p, pathPrefix+"/")
}

// ResolveReference resolves a possibly-relative href against a base URL
// and returns the absolute URL with query and fragment stripped. It
// returns "" for empty hrefs, bare fragment links, and non-navigable
// schemes (javascript:, mailto:, tel:, sms:, data:, ftp:).
func ResolveReference(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || href == "#" || nonNavigableScheme.MatchString(href) {
		return ""
	}

	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	resolved.RawQuery = ""
	resolved.Fragment = ""
	return resolved.String()
}

// ParseFilterSpec parses a scope-filter specification into an allowed
// domain and path prefix. Three forms are accepted:
//
//	https://example.com/blog   (full URL)
//	example.com/blog           (host + path)
//	/blog                      (bare path, inherits the seed's domain)
//
// The returned prefix is normalized and empty when the spec names the
// site root.
func ParseFilterSpec(spec, seedDomain string) (domain, prefix string) {
	spec = strings.TrimSpace(spec)
	if spec == "" {
		return seedDomain, ""
	}

	if strings.Contains(spec, "://") {
		if u, err := url.Parse(spec); err == nil && u.Host != "" {
			return NormalizeHost(u.Host), rootlessPrefix(u.Path)
		}
		return seedDomain, ""
	}

	// A leading slash always means a bare path on the seed domain.
	if strings.HasPrefix(spec, "/") {
		return seedDomain, rootlessPrefix(spec)
	}

	// "host/path" form: the first segment must look like a hostname.
	head, rest, _ := strings.Cut(spec, "/")
	if strings.Contains(head, ".") {
		return NormalizeHost(head), rootlessPrefix(rest)
	}

	// Anything else ("blog", "docs/intro") is a path on the seed domain.
	return seedDomain, rootlessPrefix(spec)
}

// rootlessPrefix normalizes a prefix path and maps the root to "".
func rootlessPrefix(p string) string {
	n := NormalizePath(p)
	if n == "/" {
		return ""
	}
	return n
}
