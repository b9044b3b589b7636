package model

import "sort"

// CrawlState is the durable aggregate persisted after every completed page.
// It holds the set of completed page indices and all records collected so
// far, in page order.
//
// Invariant: if page i is in CompletedPages, all of its records are present
// in Records exactly once. The engine appends records and marks the page as
// one unit before saving, so a crash can lose an in-flight page but never
// half of one.
type CrawlState struct {
	// CompletedPages lists the indices of fully processed pages.
	// Membership and max() matter; insertion order does not.
	CompletedPages []int `json:"completed_pages"`

	// Records is the append-only sequence of scraped records.
	Records []Record `json:"records"`
}

// NewCrawlState returns an empty state, ready for a first run.
func NewCrawlState() *CrawlState {
	return &CrawlState{
		CompletedPages: make([]int, 0),
		Records:        make([]Record, 0),
	}
}

// Completed reports whether the given page index is already done.
func (s *CrawlState) Completed(index int) bool {
	for _, p := range s.CompletedPages {
		if p == index {
			return true
		}
	}
	return false
}

// MaxCompleted returns the highest completed page index, or 0 when no page
// has completed yet.
func (s *CrawlState) MaxCompleted() int {
	maxIdx := 0
	for _, p := range s.CompletedPages {
		if p > maxIdx {
			maxIdx = p
		}
	}
	return maxIdx
}

// CompletePage appends the page's records and marks its index completed as
// a single in-memory unit. Re-completing an already completed page is a
// no-op so a resumed run can never duplicate records.
func (s *CrawlState) CompletePage(index int, records []Record) {
	if s.Completed(index) {
		return
	}
	s.Records = append(s.Records, records...)
	s.CompletedPages = append(s.CompletedPages, index)
}

// SortedPages returns the completed page indices in ascending order.
// Used by reports; the persisted order is insertion order.
func (s *CrawlState) SortedPages() []int {
	pages := make([]int, len(s.CompletedPages))
	copy(pages, s.CompletedPages)
	sort.Ints(pages)
	return pages
}
