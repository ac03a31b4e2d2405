package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are tuned for crawling ordinary public websites politely.
const (
	// DefaultTimeout is the per-request timeout for fetch attempts.
	// 15 seconds is generous for a single page on a healthy site;
	// anything slower is treated as a failed variant and the fetcher
	// moves on rather than stalling the whole walk.
	DefaultTimeout = 15 * time.Second

	// DefaultUserAgent identifies sitegraph in HTTP requests.
	// A descriptive User-Agent lets site operators identify crawler
	// traffic in their logs.
	DefaultUserAgent = "sitegraph/1.0 (+https://github.com/sitegraph/sitegraph)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for any real HTML page while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// AppName is the application name used for XDG directory paths.
	AppName = "sitegraph"
)

// Config holds all configuration options for a crawl run.
// It is populated from CLI flags and the optional config file, then
// passed through the application via dependency injection rather than
// global state.
//
// Design decision: We use a single flat struct instead of nested
// structs because the number of options is manageable, and nesting
// would add complexity without significant benefit.
type Config struct {
	// SeedURL is the URL the walk starts from. It must be an absolute
	// URL whose host survives canonicalization.
	SeedURL string

	// StorePath is the graph store location. When empty, a per-domain
	// filename derived from the allowed domain is used.
	StorePath string

	// Filter is an optional scope override: a full URL, "host/path",
	// or a bare path. When empty, the scope is the seed's own domain
	// and path.
	Filter string

	// NoDiscover disables the discovery phase; the walk then relies on
	// in-page links alone.
	NoDiscover bool

	// Timeout is the per-request timeout for every network operation:
	// fetch attempts, discovery requests, and render escalations.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated.
	MaxBodySize int64

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only info and above are logged.
	Verbose bool

	// ConfigFilePath is the path to the configuration file. If empty,
	// the tool searches for .sitegraph in the current directory and
	// then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file: cookies, headers, and scope filters keyed by domain.
	SiteConfigs *File

	// MarkdownReport enables Markdown report output instead of the
	// human-readable format.
	MarkdownReport bool

	// JSONReport enables JSON report output instead of the
	// human-readable format. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// ReportFile is the output file path for the report. When set, the
	// report is written to this file instead of stdout.
	ReportFile string

	// DBDir is the directory path for the fetch-history SQLite
	// database. Defaults to the XDG data directory.
	DBDir string

	// NoHistory disables fetch-history recording entirely.
	NoHistory bool
}

// NewConfig creates a new Config with default values.
//
// Design decision: We use a constructor function instead of relying on
// zero values because several defaults are non-zero (timeout, body
// size). This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for sitegraph.
// On Linux: ~/.local/share/sitegraph
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for sitegraph.
// On Linux: ~/.config/sitegraph
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns a specific
// error describing what is invalid.
//
// We return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	if c.SeedURL == "" {
		return ErrNoSeed
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	return nil
}
