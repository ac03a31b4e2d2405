package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sitegraph/sitegraph/internal/config"
)

// NewRootCmd creates the root command for sitegraph.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegraph",
		Short: "Map the page graph of a web domain",
		Long: `sitegraph discovers and maps the reachable page graph of a single web
domain. Starting from a seed URL, it finds same-domain pages via
robots.txt, sitemaps, llms.txt, feeds, and live link extraction, then
walks them breadth-first into a deduplicated node/edge graph keyed by
canonical URL identity.

The graph is persisted after every visited page, so an interrupted run
loses nothing and the next run resumes where it stopped.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewDiffCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command. A seed URL that has no parseable host
// exits with code 2 so callers can distinguish bad input from
// crawl-time failures.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, config.ErrInvalidSeed) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
