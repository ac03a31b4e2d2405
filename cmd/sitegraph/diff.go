package main

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"sort"

	"github.com/spf13/cobra"

	"github.com/sitegraph/sitegraph/internal/graph"
)

// NewDiffCmd creates the diff command.
func NewDiffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff <old-store> <new-store>",
		Short: "Compare two graph store files",
		Long: `Diff compares two graph store files and reports which pages appeared,
which disappeared, and which changed their outgoing links.

This is useful for tracking how a site evolves between crawls: copy the
store file before a re-crawl, then diff the copy against the updated
store.

Examples:
  # Compare yesterday's snapshot against today's
  sitegraph diff example-com.json.bak example-com.json

  # Machine-readable output
  sitegraph diff --json-report old.json new.json`,
		Args: cobra.ExactArgs(2),
		RunE: runDiffCmd,
	}

	cmd.Flags().Bool("json-report", false,
		"Output the diff in JSON format")

	return cmd
}

// storeDiff is the outcome of comparing two stores.
type storeDiff struct {
	// Added are nodes present only in the new store.
	Added []string `json:"added"`

	// Removed are nodes present only in the old store.
	Removed []string `json:"removed"`

	// Rewired are nodes present in both whose neighbor lists differ.
	Rewired []string `json:"rewired"`
}

// runDiffCmd executes the diff command.
func runDiffCmd(cmd *cobra.Command, args []string) error {
	oldAdj, err := graph.Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[0], err)
	}
	newAdj, err := graph.Load(args[1])
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", args[1], err)
	}

	diff := diffStores(oldAdj, newAdj)

	jsonOutput, err := cmd.Flags().GetBool("json-report")
	if err != nil {
		return err
	}

	if jsonOutput {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(diff)
	}

	printDiffSection("Added", diff.Added)
	printDiffSection("Removed", diff.Removed)
	printDiffSection("Rewired", diff.Rewired)

	if len(diff.Added) == 0 && len(diff.Removed) == 0 && len(diff.Rewired) == 0 {
		fmt.Println("No differences.")
	}
	return nil
}

// diffStores computes the node-level difference between two stores.
// Only crawled nodes (keys) are compared; neighbor-only mentions count
// through the Rewired bucket of their parent.
func diffStores(oldAdj, newAdj graph.Adjacency) storeDiff {
	var diff storeDiff

	for key, newNeighbors := range newAdj {
		oldNeighbors, ok := oldAdj[key]
		switch {
		case !ok:
			diff.Added = append(diff.Added, key)
		case !reflect.DeepEqual(oldNeighbors, newNeighbors):
			diff.Rewired = append(diff.Rewired, key)
		}
	}
	for key := range oldAdj {
		if _, ok := newAdj[key]; !ok {
			diff.Removed = append(diff.Removed, key)
		}
	}

	sort.Strings(diff.Added)
	sort.Strings(diff.Removed)
	sort.Strings(diff.Rewired)
	return diff
}

// printDiffSection prints one bucket of the diff, skipping empty ones.
func printDiffSection(title string, keys []string) {
	if len(keys) == 0 {
		return
	}
	fmt.Printf("%s (%d):\n", title, len(keys))
	for _, key := range keys {
		fmt.Printf("  %s\n", key)
	}
	fmt.Println()
}
