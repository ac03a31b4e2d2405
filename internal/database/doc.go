// Package database provides SQLite-based storage for fetch history.
// The graph itself lives in the JSON store; the database is a sidecar
// recording when each page was fetched, with what strategy, and what
// content hash it had, so successive runs can be compared.
package database
