// Package block detects site-side signals that the crawler has been
// rate-limited or challenged and should stop rather than retry.
package block
