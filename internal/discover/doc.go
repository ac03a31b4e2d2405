// Package discover assembles a candidate URL set for a domain before
// crawling begins. Five independent channels run concurrently: robots.txt
// sitemap directives and disallow hints, well-known sitemap paths, the
// llms.txt manifest, common feed endpoints, and the seed page's HTML head
// links. A failure in one channel never affects the others; results are
// merged into a deduplicated set of canonical keys after all channels
// complete.
package discover
