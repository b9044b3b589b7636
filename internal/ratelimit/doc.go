// Package ratelimit inserts a randomized politeness delay before each
// request so the crawler's traffic stays irregular and well below any
// shared rate limit.
package ratelimit
