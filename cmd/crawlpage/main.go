// Package main provides the entry point for the crawlpage CLI.
//
// Crawlpage is a resumable crawler for paginated listing sites. It walks a
// listing page by page, extracts structured records, and persists progress
// after every page so an interrupted crawl picks up where it left off.
//
// Usage:
//
//	crawlpage crawl https://books.toscrape.com/
//	crawlpage status https://books.toscrape.com/
//	crawlpage export --output records.json https://books.toscrape.com/
//
// See --help for all available options.
package main

// main is the entry point for crawlpage.
func main() {
	Execute()
}
