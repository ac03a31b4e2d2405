package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitegraph/sitegraph/internal/config"
	"github.com/sitegraph/sitegraph/internal/database"
)

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [domain]",
		Short: "Show crawl history from the database",
		Long: `History shows past crawl runs and page fetches recorded in the
fetch-history database.

Examples:
  # Show past runs for a domain
  sitegraph history example.com

  # Show the most recently fetched pages
  sitegraph history --fetches example.com

  # List every domain with recorded history
  sitegraph history --list-domains`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().BoolP("list-domains", "L", false,
		"List all domains with recorded history")
	cmd.Flags().Bool("fetches", false,
		"Show recent page fetches instead of runs")
	cmd.Flags().IntP("limit", "n", 20,
		"Maximum number of entries to show (0 for all)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listDomains, err := cmd.Flags().GetBool("list-domains")
	if err != nil {
		return err
	}

	var domain string
	if !listDomains {
		if len(args) == 0 {
			return errors.New("domain is required (use --list-domains to see available domains)")
		}
		domain = args[0]
	}

	// The database must already exist; history never creates one.
	db, err := database.Open(config.XDGDataDir(), database.Options{
		CreateIfNotExists: false,
		EnableWAL:         true,
	})
	if err != nil {
		return fmt.Errorf("no crawl history yet (run 'sitegraph crawl' first): %w", err)
	}
	defer db.Close()

	ctx := context.Background()

	if listDomains {
		return listHistoryDomains(ctx, db)
	}

	showFetches, err := cmd.Flags().GetBool("fetches")
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}

	if showFetches {
		return listRecentFetches(ctx, db, domain, limit)
	}
	return listRunHistory(ctx, db, domain, limit)
}

// listHistoryDomains lists every domain with recorded fetches.
func listHistoryDomains(ctx context.Context, db *database.HistoryDB) error {
	domains, err := db.Domains(ctx)
	if err != nil {
		return fmt.Errorf("failed to list domains: %w", err)
	}

	if len(domains) == 0 {
		fmt.Println("No crawl history found in the database.")
		fmt.Println("\nUse 'sitegraph crawl <seed-url>' to crawl a domain.")
		return nil
	}

	fmt.Printf("Crawled domains (%d):\n\n", len(domains))
	for _, domain := range domains {
		fmt.Printf("  %s\n", domain)
	}
	fmt.Println("\nUse 'sitegraph history <domain>' to see past runs.")

	return nil
}

// listRunHistory prints past crawl runs for a domain.
func listRunHistory(ctx context.Context, db *database.HistoryDB, domain string, limit int) error {
	runs, err := db.RunHistory(ctx, domain, limit)
	if err != nil {
		return fmt.Errorf("failed to get run history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Printf("No runs recorded for %s\n", domain)
		return nil
	}

	fmt.Printf("Runs for %s (%d):\n\n", domain, len(runs))
	fmt.Printf("  %-20s  %-10s  %-8s  %-10s  %s\n",
		"Started", "Nodes", "Fetched", "Discovered", "Status")
	fmt.Println("  " + strings.Repeat("-", 66))

	for _, run := range runs {
		status := "complete"
		if run.Interrupted {
			status = "interrupted"
		}
		fmt.Printf("  %-20s  %-10d  %-8d  %-10d  %s\n",
			run.StartedAt.Format("2006-01-02 15:04:05"),
			run.KnownNodes,
			run.PagesFetched,
			run.Discovered,
			status,
		)
	}

	return nil
}

// listRecentFetches prints the most recently fetched pages for a
// domain.
func listRecentFetches(ctx context.Context, db *database.HistoryDB, domain string, limit int) error {
	fetches, err := db.RecentFetches(ctx, domain, limit)
	if err != nil {
		return fmt.Errorf("failed to get fetches: %w", err)
	}

	if len(fetches) == 0 {
		fmt.Printf("No fetches recorded for %s\n", domain)
		return nil
	}

	fmt.Printf("Recent fetches for %s (%d):\n\n", domain, len(fetches))
	for _, f := range fetches {
		age := time.Since(f.FetchedAt).Round(time.Minute)
		fmt.Printf("  %-50s  %3d  %-7s  %s ago\n", f.Key, f.StatusCode, f.Strategy, age)
	}

	return nil
}
