package crawler

import (
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/sitegraph/sitegraph/internal/urlkey"
)

// ParseResult holds what link extraction pulls out of one document.
type ParseResult struct {
	// Title is the text of the first <title> element, trimmed.
	Title string

	// Links are the absolute URLs of every <a href>, resolved against
	// the document URL, deduplicated in document order. Query strings
	// and fragments are already stripped.
	Links []string
}

// ParseHTML extracts the title and outgoing links from markup fetched
// at baseURL. Unresolvable and non-navigable hrefs are dropped.
func ParseHTML(markup, baseURL string) (*ParseResult, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	result := &ParseResult{}
	seen := make(map[string]bool)

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "a":
				for _, attr := range n.Attr {
					if attr.Key != "href" {
						continue
					}
					resolved := urlkey.ResolveReference(base, attr.Val)
					if resolved != "" && !seen[resolved] {
						seen[resolved] = true
						result.Links = append(result.Links, resolved)
					}
				}
			case "title":
				if result.Title == "" && n.FirstChild != nil && n.FirstChild.Type == html.TextNode {
					result.Title = strings.TrimSpace(n.FirstChild.Data)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return result, nil
}
