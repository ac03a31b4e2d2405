// Package graph owns the persisted adjacency mapping of the crawl.
//
// The on-disk form is a single JSON object: a convenience "urls" key
// holding the sorted union of every known node, followed by one entry
// per crawled node mapping its canonical key to a sorted list of
// neighbor keys. Presence as a key means "crawled" (an empty list means
// the fetch yielded no same-scope page links); presence only as a
// neighbor means "known but not yet crawled".
//
// Design decision: The store is written after every crawled node, not
// batched at run end. Combined with the temp-file-then-rename write this
// bounds data loss on interruption to the single in-flight node, which
// is what makes runs resumable.
//
// Concurrent runs against the same file are not supported; there is no
// file locking. This is an accepted limitation for a single-operator
// tool.
package graph
