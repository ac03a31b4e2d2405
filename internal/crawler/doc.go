// Package crawler walks the page graph of one domain breadth-first.
//
// The walk is intentionally serial: store writes and visited-state
// transitions need no locking, and the store stays consistent after an
// interrupt at any point. Every visited node is persisted before the
// next one is fetched, so a rerun resumes from the store instead of
// re-crawling.
package crawler
