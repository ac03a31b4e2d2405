package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page represents one fetched web page.
// It carries the response data the walker needs for link extraction and
// the metadata the fetch-history database records.
type Page struct {
	// URL is the full URL the content was actually fetched from. This
	// can differ from the canonical key's reconstruction when a scheme
	// variant won.
	URL string `json:"url"`

	// Key is the canonical key of the page.
	Key string `json:"key"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type of the response, taken from the
	// Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag.
	// Empty for pages without one.
	Title string `json:"title,omitempty"`

	// HTML is the working markup for link extraction. When render
	// escalation fired this holds the rendered document, otherwise the
	// lightweight response body. Limited to MaxPageSize bytes.
	HTML string `json:"-"`

	// Hash is the SHA-256 hash of the working markup, used by the
	// fetch-history database for change detection across runs.
	Hash string `json:"hash"`

	// Strategy names the fetch strategy that produced the markup
	// ("http" or "render").
	Strategy string `json:"strategy"`
}

// MaxPageSize is the maximum size of page content to keep.
// Larger pages are truncated; link extraction rarely needs more.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// ComputeHash calculates and sets the SHA-256 hash of the working
// markup. Call this after the final HTML is in place.
func (p *Page) ComputeHash() {
	if p.HTML == "" {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256([]byte(p.HTML))
	p.Hash = hex.EncodeToString(sum[:])
}

// Truncate enforces MaxPageSize on the working markup.
func (p *Page) Truncate() {
	if len(p.HTML) > MaxPageSize {
		p.HTML = p.HTML[:MaxPageSize]
	}
}

// IsHTML reports whether the content type indicates an HTML document.
func (p *Page) IsHTML() bool {
	return strings.Contains(strings.ToLower(p.ContentType), "html")
}
