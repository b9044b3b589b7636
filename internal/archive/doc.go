// Package archive provides optional SQLite-backed history for crawl runs:
// one row per fetched page and one row per extracted record. The progress
// file remains the source of truth for resume decisions; the archive
// exists for inspection and cross-run comparison.
package archive
