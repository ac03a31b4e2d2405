package discover

import (
	"context"
	"strings"

	"github.com/temoto/robotstxt"
)

// fromRobots reads /robots.txt and extracts two kinds of candidates:
// Sitemap directives (expanded through the sitemap walker) and literal
// Disallow paths. A disallowed path is still evidence that the path
// exists; wildcard patterns carry no usable path and are skipped.
func (a *Aggregator) fromRobots(ctx context.Context) ([]string, error) {
	body, err := a.get(ctx, a.abs("/robots.txt"))
	if err != nil {
		return nil, err
	}

	data, err := robotstxt.FromBytes(body)
	if err != nil {
		return nil, err
	}

	urls := a.walkSitemaps(ctx, data.Sitemaps)

	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if comment := strings.Index(line, "#"); comment >= 0 {
			line = strings.TrimSpace(line[:comment])
		}

		field, value, found := strings.Cut(line, ":")
		if !found || !strings.EqualFold(strings.TrimSpace(field), "Disallow") {
			continue
		}

		path := strings.TrimSpace(value)
		if path == "" || path == "/" || strings.ContainsAny(path, "*$") {
			continue
		}
		urls = append(urls, a.abs(path))
	}
	return urls, nil
}
