package model

import "time"

// Summary describes the outcome of one crawl run. It is what the report
// writers render and what the CLI prints when the frontier drains.
type Summary struct {
	// Domain is the allowed domain the crawl was scoped to.
	Domain string `json:"domain"`

	// PathPrefix is the optional path-prefix filter, empty when the
	// whole domain was in scope.
	PathPrefix string `json:"path_prefix,omitempty"`

	// KnownNodes is the total number of canonical keys mentioned in the
	// store as either a key or a neighbor.
	KnownNodes int `json:"known_nodes"`

	// PagesFetched is the number of pages actually fetched this run.
	// Resumed runs fetch only newly-reachable nodes, so this is usually
	// far smaller than KnownNodes.
	PagesFetched int `json:"pages_fetched"`

	// Discovered is the number of in-scope keys the discovery phase
	// contributed to the frontier. Zero when discovery was disabled.
	Discovered int `json:"discovered"`

	// StorePath is the location of the persisted graph file.
	StorePath string `json:"store_path"`

	// Nodes is the sorted list of every known canonical key.
	Nodes []string `json:"nodes"`

	// StartedAt and FinishedAt bound the run's wall-clock time.
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	// Interrupted is true when the run stopped on a signal rather than
	// by draining the frontier. Partial progress is durable either way.
	Interrupted bool `json:"interrupted,omitempty"`
}

// Duration returns the wall-clock time the run took.
func (s *Summary) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
