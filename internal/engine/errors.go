package engine

import "errors"

var (
	// ErrBlocked is returned when the site signals the crawler to stop.
	// A blocked crawl must not be retried automatically; progress up to
	// the previous page is already persisted for a later resume.
	ErrBlocked = errors.New("crawl blocked by target site")

	// ErrExtract is returned when a fetched page cannot be parsed into
	// records. Retrying the same bytes would fail the same way, so the
	// engine aborts and leaves the page incomplete for inspection.
	ErrExtract = errors.New("page extraction failed")
)
