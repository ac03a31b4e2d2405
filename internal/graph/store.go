package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/sitegraph/sitegraph/internal/urlkey"
)

const (
	// unionKey is the top-level convenience key holding the sorted union
	// of every node mentioned anywhere in the mapping. Consumers must
	// ignore it when treating the object as an adjacency mapping; Load
	// strips it, so legacy files (which lack it) parse identically.
	unionKey = "urls"

	// BackupSuffix is appended to a store file that failed to parse.
	// The corrupt original is preserved rather than silently emptied.
	BackupSuffix = ".bak"

	tmpSuffix = ".tmp"
)

// Adjacency is the in-memory adjacency mapping: canonical key to the
// sorted, deduplicated list of canonical keys the page links to.
type Adjacency map[string][]string

// Nodes returns the sorted union of every node mentioned as either a
// key or a neighbor.
func (adj Adjacency) Nodes() []string {
	seen := make(map[string]bool, len(adj))
	for key, neighbors := range adj {
		seen[key] = true
		for _, nb := range neighbors {
			seen[nb] = true
		}
	}

	nodes := make([]string, 0, len(seen))
	for node := range seen {
		nodes = append(nodes, node)
	}
	sort.Strings(nodes)
	return nodes
}

// Load reads an adjacency mapping from path.
//
// Both store formats are accepted: the current one (with the top-level
// "urls" union key) and the legacy bare mapping. A missing file yields
// an empty mapping. A file that fails to parse is renamed aside with
// BackupSuffix and an empty mapping is returned so the run can proceed
// and eventually overwrite it.
func Load(path string) (Adjacency, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided store path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return Adjacency{}, nil
		}
		return nil, fmt.Errorf("failed to read store: %w", err)
	}

	var raw map[string][]string
	if err := json.Unmarshal(data, &raw); err != nil {
		// Preserve the corrupt file and start fresh.
		if renameErr := os.Rename(path, path+BackupSuffix); renameErr != nil {
			return nil, fmt.Errorf("failed to back up corrupt store: %w", renameErr)
		}
		return Adjacency{}, nil
	}

	adj := make(Adjacency, len(raw))
	for key, neighbors := range raw {
		if key == unionKey {
			continue
		}
		if neighbors == nil {
			neighbors = []string{}
		}
		adj[key] = neighbors
	}
	return adj, nil
}

// Write persists the mapping to path atomically: the JSON document is
// written to a temporary file in the same directory and renamed over
// the target, so a partially-written store is never visible.
func Write(adj Adjacency, path string) error {
	out := make(map[string][]string, len(adj)+1)
	out[unionKey] = adj.Nodes()
	for key, neighbors := range adj {
		out[key] = neighbors
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode store: %w", err)
	}

	tmp := path + tmpSuffix
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("failed to write store: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("failed to replace store: %w", err)
	}
	return nil
}

// Clean returns a copy of the mapping with non-page-like keys dropped
// and non-page-like neighbors filtered out of every edge list. Edge
// lists are deduplicated and sorted for determinism.
func Clean(adj Adjacency) Adjacency {
	cleaned := make(Adjacency, len(adj))
	for key, neighbors := range adj {
		if !urlkey.PageLike(key) {
			continue
		}

		seen := make(map[string]bool, len(neighbors))
		uniq := make([]string, 0, len(neighbors))
		for _, nb := range neighbors {
			if !urlkey.PageLike(nb) || seen[nb] {
				continue
			}
			seen[nb] = true
			uniq = append(uniq, nb)
		}
		sort.Strings(uniq)
		cleaned[key] = uniq
	}
	return cleaned
}

// DefaultPath derives the per-domain store filename for a domain:
// dots become hyphens, e.g. "example.com" -> "example-com.json".
func DefaultPath(domain string) string {
	return strings.ReplaceAll(domain, ".", "-") + ".json"
}

// LegacyPath is the shared store filename used before per-domain files.
const LegacyPath = "crawl_map.json"

// MigrateLegacy performs the one-time migration of a legacy shared
// store into a per-domain file. It only acts when the legacy file
// exists and the per-domain file does not; the legacy file is left in
// place. Returns true when a migration happened.
func MigrateLegacy(legacyPath, domainPath string) (bool, error) {
	if _, err := os.Stat(legacyPath); err != nil {
		return false, nil
	}
	if _, err := os.Stat(domainPath); err == nil {
		return false, nil
	}

	adj, err := Load(legacyPath)
	if err != nil {
		return false, fmt.Errorf("failed to load legacy store: %w", err)
	}
	if err := Write(Clean(adj), domainPath); err != nil {
		return false, fmt.Errorf("failed to migrate legacy store: %w", err)
	}
	return true, nil
}
