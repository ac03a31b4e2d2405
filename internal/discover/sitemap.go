package discover

import (
	"context"
	"encoding/xml"
)

// wellKnownSitemaps are the sitemap paths probed without any hint from
// robots.txt.
var wellKnownSitemaps = []string{
	"/sitemap.xml",
	"/sitemap_index.xml",
	"/sitemap-index.xml",
	"/wp-sitemap.xml",
}

// maxSitemapDepth bounds how many levels of nested sitemap indexes are
// followed. Depth 0 is the sitemap named directly; 3 levels of <sitemap>
// indirection beyond that is more than real sites use.
const maxSitemapDepth = 3

// sitemapDoc matches both <urlset> and <sitemapindex> documents, so one
// unmarshal handles either kind.
type sitemapDoc struct {
	URLs     []sitemapLoc `xml:"url"`
	Sitemaps []sitemapLoc `xml:"sitemap"`
}

type sitemapLoc struct {
	Loc string `xml:"loc"`
}

// fromSitemaps probes the well-known sitemap paths and expands whatever
// responds.
func (a *Aggregator) fromSitemaps(ctx context.Context) ([]string, error) {
	starts := make([]string, 0, len(wellKnownSitemaps))
	for _, path := range wellKnownSitemaps {
		starts = append(starts, a.abs(path))
	}
	return a.walkSitemaps(ctx, starts), nil
}

// walkSitemaps fetches sitemaps from the given start URLs, following
// nested sitemap indexes with an explicit worklist. The visited set
// guards against index cycles and the depth counter bounds indirection;
// unreachable or unparsable sitemaps are skipped.
func (a *Aggregator) walkSitemaps(ctx context.Context, starts []string) []string {
	type item struct {
		url   string
		depth int
	}

	work := make([]item, 0, len(starts))
	for _, u := range starts {
		work = append(work, item{url: u})
	}

	visited := make(map[string]bool)
	var pages []string

	for len(work) > 0 {
		it := work[0]
		work = work[1:]

		if visited[it.url] || it.depth > maxSitemapDepth {
			continue
		}
		visited[it.url] = true

		body, err := a.get(ctx, it.url)
		if err != nil {
			a.logger.Debug("sitemap fetch failed", "url", it.url, "error", err)
			continue
		}

		var doc sitemapDoc
		if err := xml.Unmarshal(body, &doc); err != nil {
			a.logger.Debug("sitemap parse failed", "url", it.url, "error", err)
			continue
		}

		for _, u := range doc.URLs {
			if resolved := a.resolve(u.Loc); resolved != "" {
				pages = append(pages, resolved)
			}
		}
		for _, s := range doc.Sitemaps {
			if resolved := a.resolve(s.Loc); resolved != "" {
				work = append(work, item{url: resolved, depth: it.depth + 1})
			}
		}
	}
	return pages
}
