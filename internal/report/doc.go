// Package report renders crawl run summaries.
// Three formats are supported: a human-readable text summary for the
// terminal, GitHub Flavored Markdown for documentation, and JSON for
// machine consumption.
package report
