package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sitegraph/sitegraph/internal/model"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// verbose enables the full node listing in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables the full node listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the summary in human-readable format.
func (w *SimpleWriter) Write(summary *model.Summary) (int, error) {
	var sb strings.Builder

	scope := summary.Domain
	if summary.PathPrefix != "" {
		scope += summary.PathPrefix
	}

	fmt.Fprintf(&sb, "Crawl of %s\n", scope)
	fmt.Fprintf(&sb, "%s\n\n", strings.Repeat("=", len("Crawl of ")+len(scope)))

	fmt.Fprintf(&sb, "  Known nodes:   %d\n", summary.KnownNodes)
	fmt.Fprintf(&sb, "  Pages fetched: %d\n", summary.PagesFetched)
	if summary.Discovered > 0 {
		fmt.Fprintf(&sb, "  Discovered:    %d\n", summary.Discovered)
	}
	fmt.Fprintf(&sb, "  Store:         %s\n", summary.StorePath)
	fmt.Fprintf(&sb, "  Duration:      %s\n", summary.Duration().Round(time.Millisecond))
	if summary.Interrupted {
		fmt.Fprintf(&sb, "  Interrupted:   yes (progress saved; rerun to resume)\n")
	}

	if w.verbose && len(summary.Nodes) > 0 {
		fmt.Fprintf(&sb, "\nNodes:\n")
		for _, node := range summary.Nodes {
			fmt.Fprintf(&sb, "  %s\n", node)
		}
	}

	return io.WriteString(w.output, sb.String())
}
