package state

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/crawlpage/crawlpage/internal/model"
)

// Store reads and writes the progress file for one origin.
//
// The progress document schema is fixed:
//
//	{"completed_pages": [1, 2, 3], "records": [{...}, ...]}
//
// Running two crawl processes against the same progress file concurrently
// is undefined behavior; callers are responsible for not doing that.
type Store struct {
	// path is the progress file location.
	path string

	// logger reports corrupt-state recoveries.
	logger *slog.Logger

	// rename swaps the temp file into place. Overridable in tests to
	// exercise crash-atomicity.
	rename func(oldpath, newpath string) error
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for state warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a Store for the progress file at path.
func New(path string, opts ...Option) *Store {
	s := &Store{
		path:   path,
		logger: slog.Default(),
		rename: os.Rename,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Path returns the progress file location.
func (s *Store) Path() string { return s.path }

// Load reads the persisted crawl state. A missing file yields an empty
// state (first run); a corrupt or truncated file also degrades to an empty
// state with a logged warning rather than failing the whole run, because a
// damaged progress file only costs re-fetching, never correctness.
func (s *Store) Load() (*model.CrawlState, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return model.NewCrawlState(), nil
		}
		return nil, fmt.Errorf("read progress file %s: %w", s.path, err)
	}

	var st model.CrawlState
	if err := json.Unmarshal(data, &st); err != nil {
		s.logger.Warn("progress file is corrupt, starting from empty state",
			"path", s.path,
			"error", err,
		)
		return model.NewCrawlState(), nil
	}
	if st.CompletedPages == nil {
		st.CompletedPages = make([]int, 0)
	}
	if st.Records == nil {
		st.Records = make([]model.Record, 0)
	}
	return &st, nil
}

// Save writes the full state atomically: marshal to a temp file in the
// same directory, fsync, then rename over the target. A crash at any point
// leaves either the previous snapshot or the new one, never a truncated
// mix.
func (s *Store) Save(st *model.CrawlState) error {
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal crawl state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpPath := tmp.Name()

	// Any failure past this point must not leave the temp file behind.
	cleanup := func(cause error) error {
		_ = tmp.Close()       //nolint:errcheck // Best effort cleanup
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return cause
	}

	if _, err := tmp.Write(data); err != nil {
		return cleanup(fmt.Errorf("write temp state file: %w", err))
	}
	if err := tmp.Sync(); err != nil {
		return cleanup(fmt.Errorf("sync temp state file: %w", err))
	}
	if err := tmp.Chmod(0600); err != nil {
		return cleanup(fmt.Errorf("chmod temp state file: %w", err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("close temp state file: %w", err)
	}

	if err := s.rename(tmpPath, s.path); err != nil {
		_ = os.Remove(tmpPath) //nolint:errcheck // Best effort cleanup
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}

// Reset deletes the progress file. This is an operator action invoked by
// the reset subcommand; the engine itself never deletes state.
func (s *Store) Reset() error {
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove progress file %s: %w", s.path, err)
	}
	return nil
}

// ResumeAddress computes where the next run starts: page max(completed)+1
// when any page has completed, otherwise the origin's first page. This is
// the sole resume rule.
func ResumeAddress(origin string, st *model.CrawlState) model.PageAddress {
	maxIdx := st.MaxCompleted()
	if maxIdx == 0 {
		return model.FirstPage(origin)
	}
	return model.PageAddress{Origin: origin, Index: maxIdx + 1}
}
