package transport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/html/charset"

	"github.com/crawlpage/crawlpage/internal/block"
	"github.com/crawlpage/crawlpage/internal/model"
)

// retryableStatuses are the HTTP statuses worth retrying. 429 is absent on
// purpose: the block detector claims it before retry handling runs.
var retryableStatuses = map[int]bool{
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

// Client fetches pages over HTTP and classifies the result.
//
// Design decision: The retry loop is written out explicitly rather than
// delegated to resty's built-in retry because the attempt count, the
// backoff sequence, and the block-before-retry ordering are contractual
// behavior that tests pin down exactly.
type Client struct {
	// rc is the underlying resty client carrying timeout, user agent, and
	// per-site headers.
	rc *resty.Client

	// detector classifies blocked responses before any retry decision.
	detector *block.Detector

	// retryTotal is the total attempt count per fetch, including the first.
	retryTotal int

	// backoffFactor scales the exponential backoff between attempts.
	backoffFactor time.Duration

	// maxBodySize caps the bytes read from a response body.
	maxBodySize int64

	// logger records per-attempt diagnostics.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryTotal sets the total attempt count per fetch (minimum 1).
func WithRetryTotal(total int) Option {
	return func(c *Client) {
		if total >= 1 {
			c.retryTotal = total
		}
	}
}

// WithBackoffFactor sets the base duration of the exponential backoff.
func WithBackoffFactor(factor time.Duration) Option {
	return func(c *Client) {
		if factor > 0 {
			c.backoffFactor = factor
		}
	}
}

// WithMaxBodySize sets the response body read cap.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		if size > 0 {
			c.maxBodySize = size
		}
	}
}

// WithDetector sets the block detector consulted before retry handling.
func WithDetector(d *block.Detector) Option {
	return func(c *Client) {
		if d != nil {
			c.detector = d
		}
	}
}

// WithLogger sets the logger for per-attempt diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithCookie sends the given cookie string with every request.
func WithCookie(cookie string) Option {
	return func(c *Client) {
		if cookie != "" {
			c.rc.SetHeader("Cookie", cookie)
		}
	}
}

// WithHeaders adds extra headers to every request.
func WithHeaders(headers map[string]string) Option {
	return func(c *Client) {
		for k, v := range headers {
			c.rc.SetHeader(k, v)
		}
	}
}

// New creates a Client. Every request carries the given user agent so the
// crawler is identifiable by the target server and behaves predictably
// under shared rate limits.
func New(userAgent string, timeout time.Duration, opts ...Option) *Client {
	rc := resty.New().
		SetTimeout(timeout).
		SetHeader("User-Agent", userAgent).
		SetHeader("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8").
		SetHeader("Accept-Language", "en-US,en;q=0.8").
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5)).
		SetDoNotParseResponse(true)

	c := &Client{
		rc:            rc,
		detector:      block.New(),
		retryTotal:    3,
		backoffFactor: 1 * time.Second,
		maxBodySize:   5 * 1024 * 1024,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch performs a GET with bounded retry and returns the classified
// outcome. It never returns a Go error: every failure mode is an outcome
// the engine's transition table handles explicitly.
func (c *Client) Fetch(ctx context.Context, url string) model.FetchOutcome {
	var lastErr error
	var lastStatus int

	for attempt := 1; attempt <= c.retryTotal; attempt++ {
		if attempt > 1 {
			if err := c.backoff(ctx, attempt); err != nil {
				return model.FetchOutcome{
					Kind:     model.OutcomeFatal,
					Attempts: attempt - 1,
					Err:      err,
				}
			}
		}

		outcome, retryable := c.attempt(ctx, url, attempt)
		if !retryable {
			outcome.Attempts = attempt
			return outcome
		}

		lastErr = outcome.Err
		lastStatus = outcome.StatusCode
		c.logger.Debug("retryable fetch failure",
			"url", url,
			"attempt", attempt,
			"status", outcome.StatusCode,
			"error", outcome.Err,
		)
	}

	// Retries exhausted: escalate the transient failure to fatal.
	if lastErr == nil {
		lastErr = fmt.Errorf("status %d after %d attempts", lastStatus, c.retryTotal)
	}
	return model.FetchOutcome{
		Kind:       model.OutcomeFatal,
		StatusCode: lastStatus,
		Attempts:   c.retryTotal,
		Err:        lastErr,
	}
}

// attempt performs a single GET and classifies it. The second return value
// reports whether the failure is retryable.
func (c *Client) attempt(ctx context.Context, url string, attempt int) (model.FetchOutcome, bool) {
	resp, err := c.rc.R().SetContext(ctx).Get(url)
	if err != nil {
		if ctx.Err() != nil {
			return model.FetchOutcome{Kind: model.OutcomeFatal, Err: ctx.Err()}, false
		}
		// Connection-level failure: worth retrying.
		return model.FetchOutcome{
			Kind: model.OutcomeTransient,
			Err:  fmt.Errorf("attempt %d: %w", attempt, err),
		}, true
	}

	body, readErr := c.readBody(resp)
	status := resp.StatusCode()

	// Block detection runs before any status-code handling so a 429 or an
	// anti-bot challenge is never folded into generic retry behavior.
	if c.detector.Blocked(status, body) {
		return model.FetchOutcome{Kind: model.OutcomeBlocked, StatusCode: status}, false
	}

	switch {
	case status == http.StatusNotFound:
		// One past the last page of a paginated listing. Normal end.
		return model.FetchOutcome{Kind: model.OutcomeNotFound, StatusCode: status}, false

	case status >= 200 && status < 300:
		if readErr != nil {
			return model.FetchOutcome{
				Kind:       model.OutcomeTransient,
				StatusCode: status,
				Err:        fmt.Errorf("attempt %d: read body: %w", attempt, readErr),
			}, true
		}
		return model.FetchOutcome{
			Kind:       model.OutcomeSuccess,
			StatusCode: status,
			Body:       c.decode(body, resp.Header().Get("Content-Type")),
		}, false

	case retryableStatuses[status]:
		return model.FetchOutcome{
			Kind:       model.OutcomeTransient,
			StatusCode: status,
			Err:        fmt.Errorf("attempt %d: status %d", attempt, status),
		}, true

	default:
		return model.FetchOutcome{
			Kind:       model.OutcomeFatal,
			StatusCode: status,
			Err:        fmt.Errorf("unexpected status %d", status),
		}, false
	}
}

// readBody reads the response body up to the configured cap.
func (c *Client) readBody(resp *resty.Response) ([]byte, error) {
	raw := resp.RawBody()
	if raw == nil {
		return nil, nil
	}
	defer raw.Close() //nolint:errcheck // Nothing to do about a close failure here

	return io.ReadAll(io.LimitReader(raw, c.maxBodySize))
}

// decode converts a non-UTF-8 body to UTF-8 using the charset declared in
// the Content-Type header or sniffed from the content. Older listing sites
// still serve windows-1252 and friends; downstream selector matching
// assumes UTF-8.
func (c *Client) decode(body []byte, contentType string) []byte {
	enc, name, _ := charset.DetermineEncoding(body, contentType)
	if enc == nil || name == "utf-8" {
		return body
	}
	decoded, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		// Undecodable bytes are rare and non-fatal; the extractor can
		// still work on the raw body.
		return body
	}
	return decoded
}

// backoff sleeps factor * 2^(n-1) before retry attempt n (counting retries
// from 1), giving a strictly increasing sequence. Cancellable via ctx.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	// attempt is the upcoming attempt number (2 for the first retry).
	d := c.backoffFactor * (1 << (attempt - 2))

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
