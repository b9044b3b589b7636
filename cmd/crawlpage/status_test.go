package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crawlpage/crawlpage/internal/model"
	"github.com/crawlpage/crawlpage/internal/state"
)

// seedProgress writes a progress file for an origin under stateDir.
func seedProgress(t *testing.T, stateDir, origin string, pages int, recordsPerPage int) {
	t.Helper()
	st := model.NewCrawlState()
	for p := 1; p <= pages; p++ {
		records := make([]model.Record, 0, recordsPerPage)
		for i := 0; i < recordsPerPage; i++ {
			records = append(records, model.Record{"page": p, "n": i})
		}
		st.CompletePage(p, records)
	}
	store := state.New(statePathFor(stateDir, origin))
	if err := store.Save(st); err != nil {
		t.Fatalf("seed progress: %v", err)
	}
}

// TestStatusCmd tests the status command output.
func TestStatusCmd(t *testing.T) {
	t.Parallel()

	stateDir := t.TempDir()
	origin := "https://books.toscrape.com/"
	seedProgress(t, stateDir, origin, 3, 20)

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status", "--state-dir", stateDir, origin})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	got := out.String()
	for _, want := range []string{
		origin,
		"completed pages: 3",
		"records:         60",
		"next run starts: page 4",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("status output missing %q, got:\n%s", want, got)
		}
	}
}

// TestStatusCmdEmptyState tests status for an origin never crawled.
func TestStatusCmdEmptyState(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"status", "--state-dir", t.TempDir(), "https://never.example.com/"})

	if err := root.Execute(); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out.String(), "next run starts: page 1") {
		t.Errorf("empty state should resume at page 1, got:\n%s", out.String())
	}
}

// TestStatusCmdRequiresOrigin tests that status demands an argument.
func TestStatusCmdRequiresOrigin(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"status"})

	if err := root.Execute(); err == nil {
		t.Error("expected error when no origin is given")
	}
}
