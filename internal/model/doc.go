// Package model defines the core data types shared across the crawler:
// scraped records, page addresses, fetch outcomes, and the durable
// crawl state that makes interrupted runs resumable.
package model
