package main

import (
	"strings"
	"testing"
)

// TestNewRootCmd tests the root command creation.
func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	cmd := NewRootCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawlpage" {
			t.Errorf("expected use 'crawlpage', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has version", func(t *testing.T) {
		t.Parallel()
		if cmd.Version == "" {
			t.Error("expected non-empty version")
		}
	})

	t.Run("has verbose flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.PersistentFlags().Lookup("verbose")
		if flag == nil {
			t.Fatal("expected verbose flag")
		}
		if flag.Shorthand != "v" {
			t.Errorf("expected shorthand 'v', got %q", flag.Shorthand)
		}
		if flag.DefValue != "false" {
			t.Errorf("expected default 'false', got %q", flag.DefValue)
		}
	})

	t.Run("has state-dir flag", func(t *testing.T) {
		t.Parallel()
		if cmd.PersistentFlags().Lookup("state-dir") == nil {
			t.Fatal("expected state-dir flag")
		}
	})

	t.Run("has subcommands", func(t *testing.T) {
		t.Parallel()
		wanted := map[string]bool{
			"crawl":   false,
			"status":  false,
			"reset":   false,
			"export":  false,
			"init":    false,
			"version": false,
		}
		for _, sub := range cmd.Commands() {
			name := strings.Fields(sub.Use)[0]
			if _, ok := wanted[name]; ok {
				wanted[name] = true
			}
		}
		for name, found := range wanted {
			if !found {
				t.Errorf("expected %s subcommand", name)
			}
		}
	})

	t.Run("silences usage and errors", func(t *testing.T) {
		t.Parallel()
		if !cmd.SilenceUsage {
			t.Error("expected SilenceUsage to be true")
		}
		if !cmd.SilenceErrors {
			t.Error("expected SilenceErrors to be true")
		}
	})
}

// TestStatePathFor tests progress file naming.
func TestStatePathFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		origin string
		want   string
	}{
		{
			name:   "https origin",
			origin: "https://books.toscrape.com/",
			want:   "/tmp/st/progress-books.toscrape.com.json",
		},
		{
			name:   "http origin with path",
			origin: "http://quotes.toscrape.com/tag/life",
			want:   "/tmp/st/progress-quotes.toscrape.com_tag_life.json",
		},
		{
			name:   "port number",
			origin: "https://localhost:8080/",
			want:   "/tmp/st/progress-localhost_8080.json",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := statePathFor("/tmp/st", tt.origin)
			if got != tt.want {
				t.Errorf("statePathFor(%q) = %q, want %q", tt.origin, got, tt.want)
			}
		})
	}

	t.Run("distinct origins get distinct files", func(t *testing.T) {
		t.Parallel()
		a := statePathFor("/tmp/st", "https://a.example.com/")
		b := statePathFor("/tmp/st", "https://b.example.com/")
		if a == b {
			t.Error("two origins mapped to the same progress file")
		}
	})
}
