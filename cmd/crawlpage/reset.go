package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/crawlpage/crawlpage/internal/state"
)

// NewResetCmd creates the reset command.
func NewResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset [origin...]",
		Short: "Discard crawl progress for one or more origins",
		Long: `Reset deletes each origin's progress file so the next crawl starts
from page 1. Records already exported are untouched; the SQLite archive, if
enabled, also keeps its history.

Reset refuses to run without --force to avoid accidental data loss.

Examples:
  crawlpage reset --force https://books.toscrape.com/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runResetCmd,
	}

	cmd.Flags().BoolP("force", "f", false,
		"Actually delete the progress files")

	return cmd
}

// runResetCmd executes the reset command.
func runResetCmd(cmd *cobra.Command, args []string) error {
	force, err := cmd.Flags().GetBool("force")
	if err != nil {
		return err
	}
	if !force {
		return fmt.Errorf("reset discards crawl progress; re-run with --force to confirm")
	}

	stateDir := getStateDir(cmd)
	out := cmd.OutOrStdout()

	for _, origin := range args {
		store := state.New(statePathFor(stateDir, origin))
		if err := store.Reset(); err != nil {
			return fmt.Errorf("reset %s: %w", origin, err)
		}
		fmt.Fprintf(out, "reset %s (%s)\n", origin, store.Path())
	}
	return nil
}
