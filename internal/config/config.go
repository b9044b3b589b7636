package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values. Where the choice is not obvious the
// rationale is noted; all of them can be overridden via CLI flags.
const (
	// DefaultTimeout bounds a single HTTP request. Ten seconds is generous
	// for static listing pages while keeping stuck connections short-lived.
	DefaultTimeout = 10 * time.Second

	// DefaultRetryTotal is the total number of attempts per request,
	// including the first. Three attempts catches flaky responses without
	// hammering a struggling server.
	DefaultRetryTotal = 3

	// DefaultBackoffFactor scales the exponential backoff between retry
	// attempts: factor * 2^(attempt-1) seconds.
	DefaultBackoffFactor = 1 * time.Second

	// DefaultMinDelay and DefaultMaxDelay bound the randomized politeness
	// delay inserted before every request. The jitter makes the crawler's
	// traffic pattern less mechanical under shared rate limits.
	DefaultMinDelay = 500 * time.Millisecond
	DefaultMaxDelay = 1500 * time.Millisecond

	// DefaultCooldown is how long the engine sleeps after a fatal fetch
	// error before retrying the same page. Long unattended crawls prefer
	// eventual completion over fast failure.
	DefaultCooldown = 10 * time.Second

	// DefaultUserAgent identifies the crawler in HTTP requests so site
	// operators can distinguish it and rate limits apply predictably.
	DefaultUserAgent = "crawlpage/1.0 (+https://github.com/crawlpage/crawlpage)"

	// DefaultMaxBodySize caps the response body read per page. Listing
	// pages are small; the cap guards against pathological responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultConcurrency is the number of origins crawled in parallel when
	// several are given. Each origin is still crawled strictly page by page.
	DefaultConcurrency = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "crawlpage"

	// StateFileName is the default progress file name inside the state dir.
	StateFileName = "progress.json"
)

// Config holds all crawler options. It is populated from CLI flags and
// passed down via dependency injection rather than global state, so tests
// can run isolated engines in parallel.
type Config struct {
	// Origins are the base URLs of the paginated sites to crawl.
	Origins []string

	// StateDir is the directory holding progress files and the optional
	// page archive. Defaults to the XDG data directory.
	StateDir string

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration

	// RetryTotal is the total attempt count per request, including the first.
	RetryTotal int

	// BackoffFactor scales the exponential backoff between attempts.
	BackoffFactor time.Duration

	// MinDelay and MaxDelay bound the randomized delay before each request.
	// MinDelay must not exceed MaxDelay; both must be non-negative.
	MinDelay time.Duration
	MaxDelay time.Duration

	// Cooldown is the engine-level sleep before re-fetching a page after a
	// fatal error.
	Cooldown time.Duration

	// UserAgent is sent with every request.
	UserAgent string

	// MaxBodySize caps the bytes read from a response body.
	MaxBodySize int64

	// Concurrency bounds parallel origin crawls. Within one origin the
	// traversal is always sequential.
	Concurrency int

	// Verbose enables slog.LevelDebug output; otherwise Info and above.
	Verbose bool

	// LogFile, when set, mirrors log output to a rotating file. Useful for
	// crawls left running unattended.
	LogFile string

	// ConfigFilePath is the path to the site configuration file. Empty
	// means search .crawlpage in the working directory then the home dir.
	ConfigFilePath string

	// Sites holds per-origin configuration loaded from the config file.
	Sites *File

	// Archive enables the SQLite page archive alongside the progress file.
	Archive bool

	// JSONReport and MarkdownReport select the summary format. Mutually
	// exclusive; the default is a human-readable summary.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile writes the summary to a file instead of stdout.
	ReportFile string

	// OutputFile is where the final flat record list is exported after a
	// completed crawl. Empty disables the export.
	OutputFile string

	// MetricsAddr, when set, serves Prometheus metrics at this address
	// (e.g. ":9090") for the duration of the crawl.
	MetricsAddr string
}

// NewConfig returns a Config with all defaults applied.
func NewConfig() *Config {
	return &Config{
		StateDir:      XDGDataDir(),
		Timeout:       DefaultTimeout,
		RetryTotal:    DefaultRetryTotal,
		BackoffFactor: DefaultBackoffFactor,
		MinDelay:      DefaultMinDelay,
		MaxDelay:      DefaultMaxDelay,
		Cooldown:      DefaultCooldown,
		UserAgent:     DefaultUserAgent,
		MaxBodySize:   DefaultMaxBodySize,
		Concurrency:   DefaultConcurrency,
	}
}

// XDGDataDir returns the XDG data directory for crawlpage.
// On Linux: ~/.local/share/crawlpage.
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for crawlpage.
// On Linux: ~/.config/crawlpage.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks the configuration and returns the first problem found.
// It is called once after CLI parsing, before any crawling begins, so
// misconfiguration fails fast with a clear message.
func (c *Config) Validate() error {
	if len(c.Origins) == 0 {
		return ErrNoOrigin
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.RetryTotal < 1 {
		return ErrInvalidRetryTotal
	}
	if c.MinDelay < 0 || c.MaxDelay < 0 || c.MinDelay > c.MaxDelay {
		return ErrInvalidDelayBounds
	}
	if c.Cooldown < 0 {
		return ErrInvalidCooldown
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if c.Concurrency < 1 {
		return ErrInvalidConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	return nil
}
