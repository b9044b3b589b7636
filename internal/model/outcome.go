package model

import "fmt"

// OutcomeKind enumerates the possible results of fetching one page.
//
// Design decision: We use an explicit tagged result instead of sentinel
// errors flowing through a generic error return because:
//  1. NotFound is a normal terminal condition, not an error
//  2. Blocked must never be folded into transient-retry handling
//  3. The engine's transition table can switch exhaustively on the tag
type OutcomeKind int

const (
	// OutcomeSuccess means the page was fetched with a 2xx status.
	OutcomeSuccess OutcomeKind = iota

	// OutcomeBlocked means the site signalled the crawler to stop:
	// HTTP 429 or anti-automation content in the body.
	OutcomeBlocked

	// OutcomeNotFound means HTTP 404, the expected end of a paginated
	// listing (one past the last page).
	OutcomeNotFound

	// OutcomeTransient means a retryable failure exhausted in-flight;
	// transport escalates it to OutcomeFatal before the engine sees it,
	// so this kind only appears mid-retry in transport internals.
	OutcomeTransient

	// OutcomeFatal means an unrecoverable failure after retries were
	// exhausted, or a non-network error.
	OutcomeFatal
)

// String returns the outcome kind name for logs.
func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSuccess:
		return "success"
	case OutcomeBlocked:
		return "blocked"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeTransient:
		return "transient_error"
	case OutcomeFatal:
		return "fatal_error"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// FetchOutcome is the classified result of one page fetch, including the
// body on success and the underlying cause on failure.
type FetchOutcome struct {
	// Kind is the outcome tag the engine switches on.
	Kind OutcomeKind

	// Body is the fetched page body, decoded to UTF-8. Only set on success.
	Body []byte

	// StatusCode is the final HTTP status observed, 0 on connection failure.
	StatusCode int

	// Attempts is how many HTTP attempts were made for this fetch.
	Attempts int

	// Err is the underlying cause for transient and fatal outcomes.
	Err error
}

// Success reports whether the page body is usable.
func (o FetchOutcome) Success() bool { return o.Kind == OutcomeSuccess }
