package fetch

import (
	"strings"

	"golang.org/x/net/html"
)

// docSignals holds the facts about a document that the shell-detection
// rules consult. Parsing happens once; every rule is a pure predicate.
type docSignals struct {
	noscriptWarning bool
	nextRoot        bool
	nuxtRoot        bool
	emptyAppDiv     bool
	angularRoot     bool
	frameworkAssets bool
	scriptCount     int
	divCount        int
	linkCount       int
}

// renderRule is one named signal that a page is a client-rendered shell
// needing the heavyweight fetch strategy.
type renderRule struct {
	name    string
	applies func(d *docSignals) bool
}

// renderRules is the ordered rule set. The first rule that fires wins;
// its name is reported for diagnostics.
var renderRules = []renderRule{
	{"noscript-warning", func(d *docSignals) bool { return d.noscriptWarning }},
	{"nextjs-root", func(d *docSignals) bool { return d.nextRoot }},
	{"nuxtjs-root", func(d *docSignals) bool { return d.nuxtRoot }},
	{"empty-app-div", func(d *docSignals) bool { return d.emptyAppDiv }},
	{"angular-root", func(d *docSignals) bool { return d.angularRoot }},
	{"framework-asset-paths", func(d *docSignals) bool { return d.frameworkAssets }},
	{"script-heavy", func(d *docSignals) bool { return d.divCount > 0 && d.scriptCount >= d.divCount }},
	{"no-links", func(d *docSignals) bool { return d.linkCount == 0 }},
}

// DetectRenderShell inspects lightweight-fetched markup for signals
// that the page is a client-rendered shell. linkCount is the number of
// links the caller managed to extract from the markup; zero extractable
// links is itself a signal. It returns the name of the first rule that
// fired, or false when the markup looks like a fully server-rendered
// document.
func DetectRenderShell(markup string, linkCount int) (string, bool) {
	signals := collectSignals(markup)
	signals.linkCount = linkCount

	for _, rule := range renderRules {
		if rule.applies(signals) {
			return rule.name, true
		}
	}
	return "", false
}

// collectSignals parses the markup and gathers everything the rules
// need in one pass.
func collectSignals(markup string) *docSignals {
	d := &docSignals{
		frameworkAssets: strings.Contains(markup, "/_next/static/") || strings.Contains(markup, "/_nuxt/"),
	}

	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// Unparseable markup yields no DOM signals; the substring and
		// link-count rules still apply.
		return d
	}

	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script":
				d.scriptCount++
			case "div":
				d.divCount++
				switch nodeID(n) {
				case "__next":
					d.nextRoot = true
				case "__nuxt":
					d.nuxtRoot = true
				case "app":
					if strings.TrimSpace(nodeText(n)) == "" {
						d.emptyAppDiv = true
					}
				}
			case "app-root":
				d.angularRoot = true
			case "noscript":
				text := strings.ToLower(nodeText(n))
				if strings.Contains(text, "enable javascript") || strings.Contains(text, "javascript enabled") {
					d.noscriptWarning = true
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return d
}

// nodeID returns the id attribute of an element node.
func nodeID(n *html.Node) string {
	for _, attr := range n.Attr {
		if attr.Key == "id" {
			return attr.Val
		}
	}
	return ""
}

// nodeText returns the concatenated text content beneath a node.
func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
