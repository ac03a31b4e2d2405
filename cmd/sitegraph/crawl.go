package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitegraph/sitegraph/internal/config"
	"github.com/sitegraph/sitegraph/internal/crawler"
	"github.com/sitegraph/sitegraph/internal/database"
	"github.com/sitegraph/sitegraph/internal/discover"
	"github.com/sitegraph/sitegraph/internal/fetch"
	"github.com/sitegraph/sitegraph/internal/graph"
	"github.com/sitegraph/sitegraph/internal/log"
	"github.com/sitegraph/sitegraph/internal/model"
	"github.com/sitegraph/sitegraph/internal/report"
	"github.com/sitegraph/sitegraph/internal/urlkey"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <seed-url>",
		Short: "Crawl a domain into a page graph",
		Long: `Crawl maps the reachable page graph of the seed URL's domain.

Before walking, five discovery channels run concurrently to widen the
frontier beyond what link-following alone would find: robots.txt,
well-known sitemaps, llms.txt, feeds, and the seed page's head links.
The walk itself is breadth-first and serial; the graph store is written
after every visited page, so interrupted runs resume instead of
starting over.

By default the crawl is scoped to the seed's domain and path. Use
--filter to widen or narrow the scope.

Examples:
  # Crawl a whole domain
  sitegraph crawl https://example.com

  # Crawl only the documentation section
  sitegraph crawl https://example.com --filter /docs

  # Skip the discovery phase and follow links only
  sitegraph crawl https://example.com --no-discover

  # Write the graph to an explicit path
  sitegraph crawl https://example.com --json mygraph.json

Configuration file (.sitegraph) example:
  sites:
    example.com:
      cookie: "session_id=abc123"
      headers:
        Authorization: "Bearer token"
      filter: "/docs"`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	// Crawl behavior flags
	cmd.Flags().StringP("json", "j", "",
		"Graph store path (default: per-domain filename derived from the domain)")
	cmd.Flags().BoolP("no-discover", "D", false,
		"Disable the discovery phase (robots.txt, sitemaps, llms.txt, feeds)")
	cmd.Flags().StringP("filter", "f", "",
		"Scope filter: full URL, host/path, or bare path")
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Timeout for each network request")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .sitegraph in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json-report)")
	cmd.Flags().Bool("json-report", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// History flags
	cmd.Flags().Bool("no-history", false,
		"Disable fetch-history recording in the SQLite database")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildCrawlConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewSecureLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Handle interrupt signals: the walker finishes the in-flight node,
	// persists, and returns a partial summary.
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, finishing current page...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildCrawlConfig creates a Config from cobra command flags.
func buildCrawlConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.SeedURL = normalizeSeedURL(args[0])
	cfg.Verbose = getVerboseFlag(cmd)

	var err error

	cfg.StorePath, err = cmd.Flags().GetString("json")
	if err != nil {
		return nil, err
	}

	cfg.NoDiscover, err = cmd.Flags().GetBool("no-discover")
	if err != nil {
		return nil, err
	}

	cfg.Filter, err = cmd.Flags().GetString("filter")
	if err != nil {
		return nil, err
	}

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations. An explicitly specified file
	// that does not exist is an error; a missing default file is not.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json-report")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.NoHistory, err = cmd.Flags().GetBool("no-history")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// getVerboseFlag retrieves the verbose flag from the command or its
// parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// normalizeSeedURL prepends https:// when the seed has no scheme, so
// "example.com" works as a seed argument.
func normalizeSeedURL(seed string) string {
	seed = strings.TrimSpace(seed)
	if seed != "" && !strings.Contains(seed, "://") {
		seed = "https://" + seed
	}
	return seed
}

// runCrawl executes the crawl.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	seedKey := urlkey.Canonicalize(cfg.SeedURL)
	if seedKey == "" {
		return fmt.Errorf("%w: %s", config.ErrInvalidSeed, cfg.SeedURL)
	}
	seedDomain, _ := urlkey.KeyParts(seedKey)

	siteConfig := cfg.SiteConfigs.GetSiteConfig(seedDomain)

	// CLI flags win over per-site config for filter and discovery.
	filter := cfg.Filter
	if filter == "" {
		filter = siteConfig.Filter
	}
	noDiscover := cfg.NoDiscover || siteConfig.NoDiscover

	storePath := resolveStorePath(cfg.StorePath, seedDomain, logger)

	client := &http.Client{}
	selector := fetch.NewSelector(client,
		fetch.WithTimeout(cfg.Timeout),
		fetch.WithUserAgent(cfg.UserAgent),
		fetch.WithHeaders(siteConfig.Headers),
		fetch.WithCookie(siteConfig.Cookie),
		fetch.WithMaxBodySize(cfg.MaxBodySize),
		fetch.WithLogger(logger),
	)

	walkerOpts := []crawler.WalkerOption{
		crawler.WithStorePath(storePath),
		crawler.WithLogger(logger),
	}

	if filter != "" {
		domain, prefix := urlkey.ParseFilterSpec(filter, seedDomain)
		walkerOpts = append(walkerOpts, crawler.WithScope(domain, prefix))
	}

	if !noDiscover {
		aggregator, err := discover.NewAggregator(client, cfg.SeedURL,
			discover.WithTimeout(cfg.Timeout),
			discover.WithUserAgent(cfg.UserAgent),
			discover.WithLogger(logger),
		)
		if err != nil {
			return fmt.Errorf("%w: %s", config.ErrInvalidSeed, cfg.SeedURL)
		}
		walkerOpts = append(walkerOpts, crawler.WithDiscoverer(aggregator))
	}

	var db *database.HistoryDB
	if !cfg.NoHistory {
		var err error
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			// History is an optional sidecar; a broken database must
			// not prevent the crawl.
			logger.Warn("failed to open history database, continuing without", "error", err)
		} else {
			defer db.Close()
			walkerOpts = append(walkerOpts, crawler.WithRecorder(db))
		}
	}

	w, err := crawler.NewWalker(cfg.SeedURL, selector, walkerOpts...)
	if err != nil {
		return fmt.Errorf("%w: %s", config.ErrInvalidSeed, cfg.SeedURL)
	}

	fmt.Printf("Crawling %s...\n", cfg.SeedURL)
	startTime := time.Now()

	summary, err := w.Run(ctx)
	if err != nil {
		return err
	}

	elapsed := time.Since(startTime)
	fmt.Printf("Crawl completed in %s\n\n", elapsed.Round(time.Millisecond))

	if db != nil {
		if err := db.RecordRun(ctx, summary); err != nil {
			logger.Warn("failed to record run history", "error", err)
		}
	}

	return outputSummary(cfg, summary)
}

// resolveStorePath picks the graph store location. An explicit --json
// path is used untouched; only the per-domain default is a migration
// target for the legacy shared store file.
func resolveStorePath(explicit, seedDomain string, logger *slog.Logger) string {
	if explicit != "" {
		return explicit
	}

	storePath := graph.DefaultPath(seedDomain)
	if migrated, err := graph.MigrateLegacy(graph.LegacyPath, storePath); err != nil {
		logger.Warn("legacy store migration failed", "error", err)
	} else if migrated {
		logger.Info("migrated legacy store", "from", graph.LegacyPath, "to", storePath)
	}
	return storePath
}

// outputSummary renders the run summary in the requested format.
func outputSummary(cfg *config.Config, summary *model.Summary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var w report.Writer
	switch {
	case cfg.JSONReport:
		w = report.NewJSONWriter(output, report.WithPrettyPrint())
	case cfg.MarkdownReport:
		w = report.NewMarkdownWriter(output)
	default:
		w = report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	}

	_, err := w.Write(summary)
	return err
}
