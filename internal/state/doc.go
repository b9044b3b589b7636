// Package state persists crawl progress to a JSON document so an
// interrupted run resumes at the first incomplete page instead of page 1.
// Saves are atomic relative to process crashes: the file on disk is always
// a complete, consistent snapshot.
package state
