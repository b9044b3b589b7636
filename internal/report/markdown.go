package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary *Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeRuns(md, summary)
	w.writeAlert(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the summary header.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary *Summary) {
	md.H1("Crawl Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Generated", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")},
			{"Origins", strconv.Itoa(len(summary.Runs))},
			{"Total Records", strconv.Itoa(summary.TotalRecords())},
		},
	})
	md.PlainText("")
}

// writeRuns writes the per-origin run table.
func (w *MarkdownWriter) writeRuns(md *markdown.Markdown, summary *Summary) {
	md.H2("Runs")
	md.PlainText("")

	if len(summary.Runs) == 0 {
		md.PlainText("No origins crawled.")
		md.PlainText("")
		return
	}

	rows := make([][]string, len(summary.Runs))
	for i, run := range summary.Runs {
		rows[i] = []string{
			"`" + run.Origin + "`",
			run.Status(),
			strconv.Itoa(run.StartPage),
			strconv.Itoa(run.PagesCompleted),
			strconv.Itoa(run.RecordsAdded),
			strconv.Itoa(run.TotalRecords),
			run.Elapsed.String(),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Origin", "Status", "Resumed From", "Pages", "Records Added", "Total Records", "Elapsed"},
		Rows:   rows,
	})
	md.PlainText("")
}

// writeAlert writes an alert summarizing how the crawl ended.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary *Summary) {
	blocked := 0
	failed := 0
	for _, run := range summary.Runs {
		if run.Blocked {
			blocked++
		} else if run.Error != "" {
			failed++
		}
	}

	switch {
	case blocked > 0:
		md.Warningf(
			"%d origin(s) blocked the crawl. Progress up to the last completed page is saved; re-run later to resume.",
			blocked,
		)
	case failed > 0:
		md.Importantf(
			"%d origin(s) ended with an error. See the run table for details.",
			failed,
		)
	default:
		md.Tip("All origins crawled cleanly.")
	}
	md.PlainText("")
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Summary generated by [crawlpage](https://github.com/crawlpage/crawlpage)*")
}
