package model

import (
	"fmt"
	"net/url"
	"strings"
)

// PageAddress identifies one paginated listing page: an origin plus a
// 1-based page index. Pages are ordered 1..N with no gaps; the index is
// the sole ordering key for resume decisions.
type PageAddress struct {
	// Origin is the site's base URL, e.g. "https://books.toscrape.com/".
	Origin string

	// Index is the 1-based page number within the paginated listing.
	Index int

	// URL is the absolute URL of this page. When empty, the address is
	// resolved from Origin and Index via the origin's page pattern.
	URL string
}

// DefaultPagePattern is the path pattern used to build a page URL from an
// index when no explicit URL is known. The %d verb receives the index.
// books.toscrape.com style: catalogue/page-2.html.
const DefaultPagePattern = "catalogue/page-%d.html"

// FirstPage returns the address of page 1 for the given origin.
// Page 1 is always the origin itself: paginated sites serve the first
// page of the listing at their root.
func FirstPage(origin string) PageAddress {
	return PageAddress{Origin: origin, Index: 1, URL: origin}
}

// Resolve returns the absolute URL for the address. An explicit URL wins;
// otherwise the URL is built from the origin and the page pattern.
func (a PageAddress) Resolve(pattern string) (string, error) {
	if a.URL != "" {
		return a.URL, nil
	}
	if a.Index < 1 {
		return "", fmt.Errorf("invalid page index %d", a.Index)
	}
	if pattern == "" {
		pattern = DefaultPagePattern
	}
	base, err := url.Parse(a.Origin)
	if err != nil {
		return "", fmt.Errorf("invalid origin %q: %w", a.Origin, err)
	}
	rel, err := url.Parse(fmt.Sprintf(pattern, a.Index))
	if err != nil {
		return "", fmt.Errorf("invalid page pattern %q: %w", pattern, err)
	}
	return base.ResolveReference(rel).String(), nil
}

// Next returns the address of the following page, resolving the given
// relative link against this page's URL. An empty link yields an address
// built from the page pattern, keeping index arithmetic consistent.
func (a PageAddress) Next(relLink string) PageAddress {
	next := PageAddress{Origin: a.Origin, Index: a.Index + 1}
	if relLink == "" {
		return next
	}
	base, err := url.Parse(a.URL)
	if err != nil || a.URL == "" {
		base, err = url.Parse(a.Origin)
		if err != nil {
			return next
		}
	}
	rel, err := url.Parse(strings.TrimSpace(relLink))
	if err != nil {
		return next
	}
	next.URL = base.ResolveReference(rel).String()
	return next
}

// String renders the address for logs: "page 3 (https://...)".
func (a PageAddress) String() string {
	if a.URL != "" {
		return fmt.Sprintf("page %d (%s)", a.Index, a.URL)
	}
	return fmt.Sprintf("page %d of %s", a.Index, a.Origin)
}
