package model

import (
	"strings"
	"testing"
)

// TestPageComputeHash tests content hashing.
func TestPageComputeHash(t *testing.T) {
	t.Parallel()

	t.Run("empty content produces empty hash", func(t *testing.T) {
		t.Parallel()

		p := &Page{}
		p.ComputeHash()
		if p.Hash != "" {
			t.Errorf("expected empty hash, got %q", p.Hash)
		}
	})

	t.Run("identical content produces identical hashes", func(t *testing.T) {
		t.Parallel()

		a := &Page{HTML: "<html></html>"}
		b := &Page{HTML: "<html></html>"}
		a.ComputeHash()
		b.ComputeHash()
		if a.Hash == "" || a.Hash != b.Hash {
			t.Errorf("expected matching non-empty hashes, got %q and %q", a.Hash, b.Hash)
		}
	})
}

// TestPageTruncate tests the page size limit.
func TestPageTruncate(t *testing.T) {
	t.Parallel()

	p := &Page{HTML: strings.Repeat("x", MaxPageSize+100)}
	p.Truncate()
	if len(p.HTML) != MaxPageSize {
		t.Errorf("expected %d bytes after truncation, got %d", MaxPageSize, len(p.HTML))
	}
}

// TestPageIsHTML tests content-type classification.
func TestPageIsHTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{"text/html", true},
		{"text/html; charset=utf-8", true},
		{"application/xhtml+xml", true},
		{"application/json", false},
		{"image/png", false},
		{"", false},
	}

	for _, tt := range tests {
		p := &Page{ContentType: tt.contentType}
		if got := p.IsHTML(); got != tt.want {
			t.Errorf("IsHTML(%q) = %v, want %v", tt.contentType, got, tt.want)
		}
	}
}
