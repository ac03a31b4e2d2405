package crawler

import (
	"reflect"
	"testing"
)

// TestParseHTML tests link and title extraction.
func TestParseHTML(t *testing.T) {
	t.Parallel()

	t.Run("extracts resolved links in document order", func(t *testing.T) {
		t.Parallel()

		markup := `<html><head><title> Docs Home </title></head><body>
			<a href="/guide">Guide</a>
			<a href="intro?ref=nav#top">Intro</a>
			<a href="https://other.com/page">External</a>
			<a href="/guide">Guide again</a>
			<a href="mailto:team@example.com">Mail</a>
		</body></html>`

		result, err := ParseHTML(markup, "https://example.com/docs/")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}

		wantLinks := []string{
			"https://example.com/guide",
			"https://example.com/docs/intro",
			"https://other.com/page",
		}
		if !reflect.DeepEqual(result.Links, wantLinks) {
			t.Errorf("Links = %v, want %v", result.Links, wantLinks)
		}
		if result.Title != "Docs Home" {
			t.Errorf("Title = %q, want %q", result.Title, "Docs Home")
		}
	})

	t.Run("handles documents without links or title", func(t *testing.T) {
		t.Parallel()

		result, err := ParseHTML("<html><body><p>text</p></body></html>", "https://example.com/")
		if err != nil {
			t.Fatalf("parse failed: %v", err)
		}
		if len(result.Links) != 0 || result.Title != "" {
			t.Errorf("expected empty result, got %+v", result)
		}
	})

	t.Run("rejects an unparsable base URL", func(t *testing.T) {
		t.Parallel()

		if _, err := ParseHTML("<html></html>", "http://bad url"); err == nil {
			t.Error("expected an error for a malformed base URL")
		}
	})
}
