package block

import (
	"net/http"
	"strings"
)

// defaultMarkers are body substrings that indicate an anti-automation
// challenge. Matching is case-insensitive.
var defaultMarkers = []string{
	"captcha",
	"access denied",
	"are you a robot",
	"unusual traffic",
}

// Detector classifies a fetched response as blocked or not.
// Blocked means the site told the crawler to stop: retrying into a block
// compounds rate-limit penalties, so the engine aborts instead.
type Detector struct {
	markers []string
}

// Option configures a Detector.
type Option func(*Detector)

// WithMarkers replaces the default anti-automation marker denylist.
func WithMarkers(markers []string) Option {
	return func(d *Detector) {
		if len(markers) > 0 {
			d.markers = markers
		}
	}
}

// New creates a Detector with the default marker denylist.
func New(opts ...Option) *Detector {
	d := &Detector{markers: defaultMarkers}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Blocked reports whether the response indicates a block: HTTP 429, or an
// anti-automation marker anywhere in the body text. This check runs before
// normal status-code handling so a 429 is surfaced as a block rather than
// silently retried as a generic transient error.
func (d *Detector) Blocked(statusCode int, body []byte) bool {
	if statusCode == http.StatusTooManyRequests {
		return true
	}
	lower := strings.ToLower(string(body))
	for _, marker := range d.markers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
