// Package extract turns fetched listing pages into records. The crawl
// engine only depends on the Extractor contract; the CSS-selector
// implementation and its built-in site profiles live here so the engine
// never touches real HTML in its own tests.
package extract
