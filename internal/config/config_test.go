package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig tests default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	c := NewConfig()
	if c.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", c.Timeout, DefaultTimeout)
	}
	if c.UserAgent != DefaultUserAgent {
		t.Errorf("UserAgent = %q, want %q", c.UserAgent, DefaultUserAgent)
	}
	if c.MaxBodySize != DefaultMaxBodySize {
		t.Errorf("MaxBodySize = %d, want %d", c.MaxBodySize, DefaultMaxBodySize)
	}
	if c.DBDir == "" {
		t.Error("expected a default DB directory")
	}
}

// TestConfigValidate tests validation error cases.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	valid := func() *Config {
		c := NewConfig()
		c.SeedURL = "https://example.com/"
		return c
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"valid config", func(*Config) {}, nil},
		{"missing seed", func(c *Config) { c.SeedURL = "" }, ErrNoSeed},
		{"zero timeout", func(c *Config) { c.Timeout = 0 }, ErrInvalidTimeout},
		{"negative body size", func(c *Config) { c.MaxBodySize = -1 }, ErrInvalidMaxBodySize},
		{"conflicting formats", func(c *Config) {
			c.JSONReport = true
			c.MarkdownReport = true
		}, ErrConflictingReportFormats},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := valid()
			tt.mutate(c)
			if err := c.Validate(); !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestLoadConfigFile tests YAML loading and the not-found sentinel.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads sites and defaults", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		content := `defaults:
  headers:
    X-Crawl: "1"
sites:
  example.com:
    cookie: "session=abc"
    filter: "/docs"
    noDiscover: true
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("load failed: %v", err)
		}

		sc := cf.GetSiteConfig("example.com")
		if sc.Cookie != "session=abc" {
			t.Errorf("Cookie = %q, want session=abc", sc.Cookie)
		}
		if sc.Filter != "/docs" {
			t.Errorf("Filter = %q, want /docs", sc.Filter)
		}
		if !sc.NoDiscover {
			t.Error("expected NoDiscover to be set")
		}
		if sc.Headers["X-Crawl"] != "1" {
			t.Errorf("expected default header to be inherited, got %v", sc.Headers)
		}

		// An unknown domain gets the defaults only.
		other := cf.GetSiteConfig("other.com")
		if other.Cookie != "" || other.Headers["X-Crawl"] != "1" {
			t.Errorf("unexpected merged config for unknown domain: %+v", other)
		}
	})

	t.Run("returns sentinel for a missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("rejects malformed YAML", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(":\n  - not yaml"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected a parse error")
		}
	})
}

// TestGetSiteConfigHeaderMerge tests that a site's header merge never
// leaks into the shared defaults.
func TestGetSiteConfigHeaderMerge(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Headers: map[string]string{"X-Crawl": "1"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Headers: map[string]string{"Authorization": "Bearer token"},
			},
		},
	}

	sc := cf.GetSiteConfig("example.com")
	if sc.Headers["X-Crawl"] != "1" || sc.Headers["Authorization"] != "Bearer token" {
		t.Errorf("unexpected merged headers: %v", sc.Headers)
	}

	if _, ok := cf.Defaults.Headers["Authorization"]; ok {
		t.Error("site headers must not pollute the defaults map")
	}
	other := cf.GetSiteConfig("other.com")
	if _, ok := other.Headers["Authorization"]; ok {
		t.Errorf("unknown domain inherited site headers: %v", other.Headers)
	}
}

// TestFindConfigFile tests explicit-path resolution.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path when it exists", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "custom.yml")
		if err := os.WriteFile(path, []byte("{}"), 0600); err != nil {
			t.Fatalf("failed to write config: %v", err)
		}
		if got := FindConfigFile(path); got != path {
			t.Errorf("FindConfigFile = %q, want %q", got, path)
		}
	})

	t.Run("returns empty for a missing explicit path", func(t *testing.T) {
		t.Parallel()

		if got := FindConfigFile(filepath.Join(t.TempDir(), "nope")); got != "" {
			t.Errorf("FindConfigFile = %q, want empty", got)
		}
	})
}
