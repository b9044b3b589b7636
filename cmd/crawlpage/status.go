package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crawlpage/crawlpage/internal/model"
	"github.com/crawlpage/crawlpage/internal/state"
)

// NewStatusCmd creates the status command.
func NewStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [origin...]",
		Short: "Show crawl progress for one or more origins",
		Long: `Status reads each origin's progress file and reports how far the
crawl has gotten: completed pages, collected records, and the page the next
run will resume from.

Examples:
  crawlpage status https://books.toscrape.com/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runStatusCmd,
	}
}

// runStatusCmd executes the status command.
func runStatusCmd(cmd *cobra.Command, args []string) error {
	stateDir := getStateDir(cmd)
	out := cmd.OutOrStdout()

	for _, origin := range args {
		store := state.New(statePathFor(stateDir, origin))
		st, err := store.Load()
		if err != nil {
			return fmt.Errorf("load state for %s: %w", origin, err)
		}

		resume := state.ResumeAddress(origin, st)
		fmt.Fprintf(out, "%s\n", origin)
		fmt.Fprintf(out, "  progress file:   %s\n", store.Path())
		fmt.Fprintf(out, "  completed pages: %d %v\n", len(st.CompletedPages), compactPages(st))
		fmt.Fprintf(out, "  records:         %d\n", len(st.Records))
		fmt.Fprintf(out, "  next run starts: page %d\n\n", resume.Index)
	}
	return nil
}

// compactPages renders the completed page set, collapsing a contiguous run
// into a range.
func compactPages(st *model.CrawlState) string {
	pages := st.SortedPages()
	if len(pages) == 0 {
		return "(none)"
	}
	contiguous := true
	for i := 1; i < len(pages); i++ {
		if pages[i] != pages[i-1]+1 {
			contiguous = false
			break
		}
	}
	if contiguous && len(pages) > 3 {
		return fmt.Sprintf("[%d..%d]", pages[0], pages[len(pages)-1])
	}
	if len(pages) > 12 {
		return fmt.Sprintf("%v ...", pages[:12])
	}
	return fmt.Sprintf("%v", pages)
}
