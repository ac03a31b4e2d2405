package main

import (
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/sitegraph/sitegraph/internal/graph"
)

// chdir changes into dir for the duration of the test, restoring the
// previous working directory on cleanup (t.Chdir needs Go 1.24+).
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	if err != nil {
		t.Fatalf("failed to get working directory: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("failed to chdir to %q: %v", dir, err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Fatalf("failed to restore working directory: %v", err)
		}
	})
}

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl <seed-url>" {
			t.Errorf("expected use 'crawl <seed-url>', got %q", cmd.Use)
		}
	})

	t.Run("has expected flags", func(t *testing.T) {
		t.Parallel()

		for _, name := range []string{
			"json", "no-discover", "filter", "timeout", "config",
			"markdown", "json-report", "output", "no-history",
		} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected flag %q", name)
			}
		}
	})
}

// TestNormalizeSeedURL tests scheme defaulting.
func TestNormalizeSeedURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"example.com", "https://example.com"},
		{"example.com/docs", "https://example.com/docs"},
		{"http://example.com", "http://example.com"},
		{"https://example.com", "https://example.com"},
		{"  example.com  ", "https://example.com"},
		{"", ""},
	}

	for _, tt := range tests {
		if got := normalizeSeedURL(tt.in); got != tt.want {
			t.Errorf("normalizeSeedURL(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

// TestResolveStorePath tests store-path selection and the legacy
// migration guard.
func TestResolveStorePath(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("explicit path skips migration", func(t *testing.T) {
		chdir(t, t.TempDir())

		legacy := graph.Adjacency{"example.com": {}}
		if err := graph.Write(legacy, graph.LegacyPath); err != nil {
			t.Fatalf("failed to write legacy store: %v", err)
		}

		got := resolveStorePath("mygraph.json", "example.com", logger)
		if got != "mygraph.json" {
			t.Errorf("resolveStorePath = %q, want mygraph.json", got)
		}
		if _, err := os.Stat("mygraph.json"); err == nil {
			t.Error("explicit store path must not be pre-seeded from the legacy file")
		}
	})

	t.Run("default path migrates the legacy store", func(t *testing.T) {
		chdir(t, t.TempDir())

		legacy := graph.Adjacency{"example.com": {}}
		if err := graph.Write(legacy, graph.LegacyPath); err != nil {
			t.Fatalf("failed to write legacy store: %v", err)
		}

		got := resolveStorePath("", "example.com", logger)
		if got != "example-com.json" {
			t.Errorf("resolveStorePath = %q, want example-com.json", got)
		}
		adj, err := graph.Load(got)
		if err != nil {
			t.Fatalf("failed to load migrated store: %v", err)
		}
		if _, ok := adj["example.com"]; !ok {
			t.Error("expected legacy content in the per-domain store")
		}
	})
}

// TestBuildCrawlConfig tests flag-to-config mapping.
func TestBuildCrawlConfig(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()
	if err := cmd.Flags().Set("filter", "/docs"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if err := cmd.Flags().Set("no-discover", "true"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}
	if err := cmd.Flags().Set("json", "out.json"); err != nil {
		t.Fatalf("failed to set flag: %v", err)
	}

	cfg, err := buildCrawlConfig(cmd, []string{"example.com"})
	if err != nil {
		t.Fatalf("buildCrawlConfig failed: %v", err)
	}

	if cfg.SeedURL != "https://example.com" {
		t.Errorf("SeedURL = %q, want https://example.com", cfg.SeedURL)
	}
	if cfg.Filter != "/docs" {
		t.Errorf("Filter = %q, want /docs", cfg.Filter)
	}
	if !cfg.NoDiscover {
		t.Error("expected NoDiscover to be set")
	}
	if cfg.StorePath != "out.json" {
		t.Errorf("StorePath = %q, want out.json", cfg.StorePath)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected a valid config, got %v", err)
	}
}
