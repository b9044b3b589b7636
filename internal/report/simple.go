package report

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with clear section
// formatting.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether runs with no new pages are shown.
	showEmpty bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show runs that added nothing.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
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
func (w *SimpleWriter) Write(summary *Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	for _, run := range summary.Runs {
		if run.PagesCompleted == 0 && run.Error == "" && !run.Blocked && !w.showEmpty {
			w.writeQuietRun(&sb, run)
			continue
		}
		w.writeRun(&sb, run)
	}
	w.writeFooter(&sb, summary)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the summary header.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary *Summary) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                         CRAWL SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Generated: %s\n", summary.GeneratedAt.Format("2006-01-02 15:04:05 MST")))
	sb.WriteString(fmt.Sprintf("Origins:   %d\n", len(summary.Runs)))
	sb.WriteString("\n")
}

// writeQuietRun writes a one-line entry for a run that changed nothing.
func (w *SimpleWriter) writeQuietRun(sb *strings.Builder, run Run) {
	sb.WriteString(fmt.Sprintf("[=] %s: already complete (%d records)\n\n", run.Origin, run.TotalRecords))
}

// writeRun writes one origin's run section.
func (w *SimpleWriter) writeRun(sb *strings.Builder, run Run) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(run.Origin)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  Status:          %s\n", run.Status()))
	sb.WriteString(fmt.Sprintf("  Resumed from:    page %d\n", run.StartPage))
	sb.WriteString(fmt.Sprintf("  Pages this run:  %d\n", run.PagesCompleted))
	sb.WriteString(fmt.Sprintf("  Records added:   %d\n", run.RecordsAdded))
	sb.WriteString(fmt.Sprintf("  Total pages:     %d\n", run.TotalPages))
	sb.WriteString(fmt.Sprintf("  Total records:   %d\n", run.TotalRecords))
	if run.Cooldowns > 0 {
		sb.WriteString(fmt.Sprintf("  Cooldowns:       %d\n", run.Cooldowns))
	}
	if run.Error != "" {
		sb.WriteString(fmt.Sprintf("  Error:           %s\n", run.Error))
	}
	sb.WriteString(fmt.Sprintf("  Elapsed:         %s\n", run.Elapsed.Round(10*time.Millisecond)))
	sb.WriteString("\n")
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder, summary *Summary) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Total records across all origins: %d\n", summary.TotalRecords()))
	if summary.AnyBlocked() {
		sb.WriteString("One or more origins blocked the crawl. Re-run later to resume.\n")
	}
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
