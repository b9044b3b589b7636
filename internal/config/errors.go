package config

import "errors"

// Configuration validation errors returned by Config.Validate().
//
// Design decision: Package-level sentinel errors rather than fmt.Errorf
// in Validate() so callers can use errors.Is() while the messages stay
// human-readable.
var (
	// ErrNoOrigin is returned when no origin URL is given to crawl.
	ErrNoOrigin = errors.New("no origin specified: provide one or more site URLs")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidRetryTotal is returned when the attempt count is below one.
	ErrInvalidRetryTotal = errors.New("invalid retry total: must be at least 1")

	// ErrInvalidDelayBounds is returned when the politeness delay interval
	// is negative or inverted (min > max).
	ErrInvalidDelayBounds = errors.New("invalid delay bounds: need 0 <= min <= max")

	// ErrInvalidCooldown is returned when the fatal-error cooldown is negative.
	ErrInvalidCooldown = errors.New("invalid cooldown: must be non-negative")

	// ErrInvalidMaxBodySize is returned when the body cap is negative.
	ErrInvalidMaxBodySize = errors.New("invalid max body size: must be non-negative")

	// ErrInvalidConcurrency is returned when the origin concurrency is below one.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be at least 1")

	// ErrConflictingReportFormats is returned when both --json and
	// --markdown are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")
)
