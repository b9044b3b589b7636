package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/crawlpage/crawlpage/internal/model"
	"github.com/crawlpage/crawlpage/internal/state"
)

// NewExportCmd creates the export command.
func NewExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [origin...]",
		Short: "Export collected records as JSON",
		Long: `Export reads each origin's progress file and writes all collected
records as a flat JSON array, in page order. The progress files are not
modified; export can run at any time, including mid-crawl.

Examples:
  # Print records to stdout
  crawlpage export https://books.toscrape.com/

  # Write records from two origins into one file
  crawlpage export -o records.json https://books.toscrape.com/ https://quotes.toscrape.com/`,
		Args: cobra.MinimumNArgs(1),
		RunE: runExportCmd,
	}

	cmd.Flags().StringP("output", "o", "",
		"Write records to this file instead of stdout")

	return cmd
}

// runExportCmd executes the export command.
func runExportCmd(cmd *cobra.Command, args []string) error {
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	stateDir := getStateDir(cmd)
	if output == "" {
		records, err := collectRecords(stateDir, args)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(records)
	}

	return exportRecords(stateDir, args, output, slog.Default())
}

// collectRecords loads and concatenates the records of all origins, each
// origin's records in page order.
func collectRecords(stateDir string, origins []string) ([]model.Record, error) {
	records := make([]model.Record, 0)
	for _, origin := range origins {
		store := state.New(statePathFor(stateDir, origin))
		st, err := store.Load()
		if err != nil {
			return nil, fmt.Errorf("load state for %s: %w", origin, err)
		}
		records = append(records, st.Records...)
	}
	return records, nil
}

// exportRecords writes all origins' records to a JSON file.
func exportRecords(stateDir string, origins []string, path string, logger *slog.Logger) error {
	records, err := collectRecords(stateDir, origins)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("serialize records: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("create export directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write export file: %w", err)
	}

	logger.Info("records exported", "path", path, "records", len(records))
	return nil
}
