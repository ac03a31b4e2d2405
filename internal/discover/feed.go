package discover

import (
	"context"
	"encoding/xml"
)

// wellKnownFeeds are the feed paths probed in order. The first one that
// yields entries is followed through its pagination; the rest are
// skipped, since multiple endpoints almost always expose the same feed.
var wellKnownFeeds = []string{
	"/feed",
	"/feed.xml",
	"/rss.xml",
	"/atom.xml",
	"/index.xml",
	"/feed/",
}

// maxFeedPages bounds rel=next pagination per feed.
const maxFeedPages = 5

// feedDoc matches both RSS (<rss><channel>...) and Atom (<feed>...)
// documents in one unmarshal.
type feedDoc struct {
	ChannelLinks []feedLink  `xml:"channel>link"`
	Items        []feedItem  `xml:"channel>item"`
	Links        []feedLink  `xml:"link"`
	Entries      []feedEntry `xml:"entry"`
}

type feedItem struct {
	Link string `xml:"link"`
}

type feedEntry struct {
	Links []feedLink `xml:"link"`
}

// feedLink carries both forms a feed link takes: Atom-style rel/href
// attributes and RSS-style character data.
type feedLink struct {
	Rel  string `xml:"rel,attr"`
	Href string `xml:"href,attr"`
	Text string `xml:",chardata"`
}

// fromFeeds probes the well-known feed endpoints and collects entry
// URLs from the first feed that responds, following rel=next
// pagination.
func (a *Aggregator) fromFeeds(ctx context.Context) ([]string, error) {
	for _, path := range wellKnownFeeds {
		urls := a.walkFeed(ctx, a.abs(path))
		if len(urls) > 0 {
			return urls, nil
		}
	}
	return nil, nil
}

// walkFeed fetches a feed and its rel=next continuation pages, bounded
// by maxFeedPages, with a visited set guarding against pagination
// loops.
func (a *Aggregator) walkFeed(ctx context.Context, feedURL string) []string {
	visited := make(map[string]bool)
	var urls []string

	for page := 0; page < maxFeedPages && feedURL != "" && !visited[feedURL]; page++ {
		visited[feedURL] = true

		body, err := a.get(ctx, feedURL)
		if err != nil {
			a.logger.Debug("feed fetch failed", "url", feedURL, "error", err)
			break
		}

		var doc feedDoc
		if err := xml.Unmarshal(body, &doc); err != nil {
			a.logger.Debug("feed parse failed", "url", feedURL, "error", err)
			break
		}

		for _, it := range doc.Items {
			if resolved := a.resolve(it.Link); resolved != "" {
				urls = append(urls, resolved)
			}
		}
		for _, e := range doc.Entries {
			if href := entryHref(e.Links); href != "" {
				if resolved := a.resolve(href); resolved != "" {
					urls = append(urls, resolved)
				}
			}
		}

		feedURL = a.resolve(nextHref(doc))
	}
	return urls
}

// entryHref picks the page link of an Atom entry: the alternate link,
// or the first rel-less one.
func entryHref(links []feedLink) string {
	for _, l := range links {
		if (l.Rel == "" || l.Rel == "alternate") && l.Href != "" {
			return l.Href
		}
	}
	return ""
}

// nextHref finds the rel=next pagination link of a feed, checking both
// the RSS channel and the Atom top level.
func nextHref(doc feedDoc) string {
	for _, l := range append(doc.ChannelLinks, doc.Links...) {
		if l.Rel == "next" && l.Href != "" {
			return l.Href
		}
	}
	return ""
}
