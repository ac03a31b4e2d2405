// Package main provides the entry point for the sitegraph CLI.
//
// sitegraph maps the reachable page graph of a single web domain:
// starting from a seed URL it discovers same-domain pages, follows
// in-page links breadth-first, and persists the resulting node/edge
// graph so repeated runs resume instead of re-crawling.
//
// Usage:
//
//	sitegraph crawl <seed-url>
//
// See --help for all available options.
package main

// main is the entry point for sitegraph.
func main() {
	Execute()
}
