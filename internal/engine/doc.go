// Package engine drives the crawl of one paginated listing: resume from
// durable state, fetch and extract page by page, persist after every
// completed page, and stop cleanly on the listing's end or a block signal.
// A multi-origin runner crawls several sites concurrently, one engine each.
package engine
