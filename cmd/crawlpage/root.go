// Package main provides the entry point for the crawlpage CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crawlpage/crawlpage/internal/config"
)

// NewRootCmd creates the root command for crawlpage.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawlpage",
		Short: "Resumable crawler for paginated listing sites",
		Long: `Crawlpage walks a paginated listing site page by page, extracts
structured records with CSS selectors, and persists progress after every
completed page. An interrupted crawl resumes from the first incomplete page;
re-running a finished crawl adds nothing.

The crawler is polite by default: randomized delays between requests, bounded
retries with exponential backoff, and an immediate stop when the site signals
a block (HTTP 429 or anti-automation content).`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().StringP("state-dir", "s", "",
		"Directory for progress files and the page archive (default: XDG data dir)")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewStatusCmd())
	cmd.AddCommand(NewResetCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// statePathFor returns the progress file path for an origin. Each origin
// gets its own file named after a sanitized form of its URL, so multiple
// sites can share one state directory.
func statePathFor(stateDir, origin string) string {
	name := origin
	for _, prefix := range []string{"https://", "http://"} {
		name = strings.TrimPrefix(name, prefix)
	}
	name = strings.TrimSuffix(name, "/")
	sanitized := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '-':
			return r
		default:
			return '_'
		}
	}, name)
	return filepath.Join(stateDir, "progress-"+sanitized+".json")
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// getStateDir resolves the state directory flag, falling back to the XDG
// data directory.
func getStateDir(cmd *cobra.Command) string {
	dir, err := cmd.Flags().GetString("state-dir")
	if err != nil || dir == "" {
		dir, err = cmd.Root().PersistentFlags().GetString("state-dir")
		if err != nil {
			dir = ""
		}
	}
	if dir == "" {
		return config.XDGDataDir()
	}
	return dir
}
