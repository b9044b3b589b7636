package extract

import (
	"errors"

	"github.com/crawlpage/crawlpage/internal/model"
)

// Result is what one page yields: the ordered records found on it and the
// link to the next page, empty when this is the last page.
type Result struct {
	// Records are the items on the page, in document order.
	Records []model.Record

	// NextLink is the href of the next-page link, relative or absolute.
	// Empty means the listing ends here.
	NextLink string
}

// Extractor parses a fetched page body into records and a next-page link.
// Implementations must be pure with respect to engine state: no side
// effects beyond the returned Result.
type Extractor interface {
	// Extract parses the page at addr. Returning an error means the page
	// was fetched fine but cannot be interpreted; the engine treats that
	// as a distinct non-retryable condition.
	Extract(addr model.PageAddress, body []byte) (*Result, error)
}

// ErrNoItems is returned when the item selector matches nothing on a page
// that was expected to carry records. A listing page with zero items means
// either the selectors are wrong or the site changed its markup; both need
// an operator, not a retry.
var ErrNoItems = errors.New("no items matched on page")
