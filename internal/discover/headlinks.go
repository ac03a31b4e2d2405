package discover

import (
	"context"
	"strings"

	"golang.org/x/net/html"
)

// fromHeadLinks fetches the seed page itself and inspects its <link>
// elements: rel=sitemap links are expanded through the sitemap walker,
// and rel=alternate links with an RSS or Atom type are walked as feeds.
func (a *Aggregator) fromHeadLinks(ctx context.Context) ([]string, error) {
	body, err := a.get(ctx, a.base.String())
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}

	var sitemaps, feeds []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "link" {
			rel := strings.ToLower(attrValue(n, "rel"))
			typ := strings.ToLower(attrValue(n, "type"))
			href := a.resolve(attrValue(n, "href"))

			switch {
			case href == "":
			case strings.Contains(rel, "sitemap"):
				sitemaps = append(sitemaps, href)
			case rel == "alternate" && (strings.Contains(typ, "rss") || strings.Contains(typ, "atom")):
				feeds = append(feeds, href)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	urls := a.walkSitemaps(ctx, sitemaps)
	for _, feed := range feeds {
		urls = append(urls, a.walkFeed(ctx, feed)...)
	}
	return urls, nil
}

// attrValue returns the named attribute of an element node.
func attrValue(n *html.Node, key string) string {
	for _, attr := range n.Attr {
		if attr.Key == key {
			return attr.Val
		}
	}
	return ""
}
