package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/crawlpage/crawlpage/internal/model"
)

// TestExportCmdStdout tests exporting records to stdout.
func TestExportCmdStdout(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	origin := "https://books.toscrape.com/"
	seedProgress(t, stateDir, origin, 2, 3)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--state-dir", stateDir, origin})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var records []model.Record
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("export output is not valid JSON: %v", err)
	}
	if len(records) != 6 {
		t.Errorf("exported %d records, want 6", len(records))
	}
}

// TestExportCmdFile tests exporting records to a file.
func TestExportCmdFile(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	origins := []string{
		"https://books.toscrape.com/",
		"https://quotes.toscrape.com/",
	}
	seedProgress(t, stateDir, origins[0], 1, 2)
	seedProgress(t, stateDir, origins[1], 1, 4)

	exportPath := filepath.Join(t.TempDir(), "nested", "records.json")

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--state-dir", stateDir, "--output", exportPath, origins[0], origins[1]})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	data, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read export file: %v", err)
	}
	var records []model.Record
	if err := json.Unmarshal(data, &records); err != nil {
		t.Fatalf("export file is not valid JSON: %v", err)
	}
	if len(records) != 6 {
		t.Errorf("exported %d records, want 6 across both origins", len(records))
	}
}

// TestExportCmdEmptyState tests exporting an origin with no progress.
func TestExportCmdEmptyState(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"export", "--state-dir", t.TempDir(), "https://never.example.com/"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	var records []model.Record
	if err := json.Unmarshal(out.Bytes(), &records); err != nil {
		t.Fatalf("export output is not valid JSON: %v", err)
	}
	if len(records) != 0 {
		t.Errorf("exported %d records from empty state, want 0", len(records))
	}
}
