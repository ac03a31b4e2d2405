// Package urlkey provides URL identity for the crawler.
//
// Every other component keys its data on the canonical form produced
// here. A canonical key is a scheme-, www-, port-, and trailing-slash-
// insensitive string identity for a URL: two URLs with the same key are
// the same graph node.
//
// Design decision: We collapse identity down to "host + normalized path"
// rather than keeping full URLs because:
//  1. The graph must converge across http/https and www variants
//  2. Query strings and fragments never change which page a blog serves
//  3. A plain string key makes the JSON store human-readable
//
// # Components
//
//   - Canonicalize: URL -> canonical key (empty means unusable)
//   - PageLike: asset vs page classification on a key's extension
//   - Scope: the (domain, path prefix) pair restricting the crawl
//   - ResolveReference: href resolution with non-navigable schemes dropped
package urlkey
