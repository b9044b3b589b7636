// Package transport performs HTTP page fetches with bounded retry,
// exponential backoff, and outcome classification. It turns the messy
// space of HTTP results into the small set of outcomes the crawl engine's
// state machine switches on.
package transport
