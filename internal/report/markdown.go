package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"

	"github.com/sitegraph/sitegraph/internal/model"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent
// markdown generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given
// writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeNodes(md, summary)

	return len(md.String()), md.Build()
}

// writeHeader writes the run overview table.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *model.Summary) {
	md.H1("Site Graph Report")
	md.PlainText("")

	scope := summary.Domain
	if summary.PathPrefix != "" {
		scope += summary.PathPrefix
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Scope", "`" + scope + "`"},
			{"Known Nodes", strconv.Itoa(summary.KnownNodes)},
			{"Pages Fetched", strconv.Itoa(summary.PagesFetched)},
			{"Discovered", strconv.Itoa(summary.Discovered)},
			{"Store", "`" + summary.StorePath + "`"},
			{"Started", summary.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Status", w.statusText(summary)},
		},
	})
	md.PlainText("")
}

// statusText returns the status cell based on run state.
func (w *MarkdownWriter) statusText(summary *model.Summary) string {
	if summary.Interrupted {
		return "⚠️ Interrupted (partial results saved)"
	}
	return "✅ Complete"
}

// writeNodes writes the node listing.
func (w *MarkdownWriter) writeNodes(md *markdown.Markdown, summary *model.Summary) {
	if len(summary.Nodes) == 0 {
		return
	}

	md.H2("Nodes")
	md.PlainText("")

	items := make([]string, 0, len(summary.Nodes))
	for _, node := range summary.Nodes {
		items = append(items, "`"+node+"`")
	}
	md.BulletList(items...)
	md.PlainText("")
}
