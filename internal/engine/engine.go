package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/crawlpage/crawlpage/internal/config"
	"github.com/crawlpage/crawlpage/internal/extract"
	"github.com/crawlpage/crawlpage/internal/model"
	"github.com/crawlpage/crawlpage/internal/state"
)

// Fetcher fetches one URL and classifies the result. The transport client
// implements it; tests substitute scripted fakes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) model.FetchOutcome
}

// Pacer blocks between requests to keep the crawl polite.
type Pacer interface {
	Wait(ctx context.Context) error
}

// Archiver records processed pages in long-term history. Archive failures
// never abort a crawl; the progress file is the source of truth.
type Archiver interface {
	SavePage(ctx context.Context, addr model.PageAddress, statusCode int, body []byte, records []model.Record) error
}

// Observer receives crawl progress events, e.g. for metrics. Implementations
// must be safe for concurrent use under the multi-origin runner.
type Observer interface {
	ObserveFetch(origin string, outcome model.FetchOutcome)
	ObservePage(origin string, addr model.PageAddress, records int)
	ObserveCooldown(origin string)
}

// Result summarizes one crawl run for reports and the CLI exit path.
type Result struct {
	// Origin is the crawled site's base URL.
	Origin string

	// StartPage is the page index the run resumed from.
	StartPage int

	// PagesCompleted counts pages completed during this run only.
	PagesCompleted int

	// RecordsAdded counts records collected during this run only.
	RecordsAdded int

	// TotalPages and TotalRecords cover all runs, including earlier ones.
	TotalPages   int
	TotalRecords int

	// Cooldowns counts fatal-error recoveries during this run.
	Cooldowns int

	// Blocked reports whether the run ended on a block signal.
	Blocked bool

	// Failure holds the run-ending error message when the crawl ended
	// early. Empty on clean completion.
	Failure string

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration
}

// Engine crawls one origin's paginated listing to completion.
//
// Design decision: The engine is single-threaded per origin. Page N+1's URL
// can come from page N's next link, and the resume rule depends on a gapless
// prefix of completed pages, so in-origin fan-out would buy little and
// complicate both. Concurrency lives one level up, across origins.
type Engine struct {
	origin    string
	fetcher   Fetcher
	extractor extract.Extractor
	store     *state.Store

	pacer       Pacer
	archive     Archiver
	observer    Observer
	logger      *slog.Logger
	cooldown    time.Duration
	pagePattern string
}

// Option configures an Engine.
type Option func(*Engine)

// WithPacer sets the politeness delay applied before every fetch.
func WithPacer(p Pacer) Option {
	return func(e *Engine) {
		e.pacer = p
	}
}

// WithArchive enables SQLite history for processed pages.
func WithArchive(a Archiver) Option {
	return func(e *Engine) {
		e.archive = a
	}
}

// WithObserver sets the progress event sink.
func WithObserver(o Observer) Option {
	return func(e *Engine) {
		e.observer = o
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithCooldown sets the pause before re-attempting a page after a fatal
// fetch outcome.
func WithCooldown(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.cooldown = d
		}
	}
}

// WithPagePattern sets the path pattern used to build page URLs when no
// next link is available, e.g. "catalogue/page-%d.html".
func WithPagePattern(pattern string) Option {
	return func(e *Engine) {
		if pattern != "" {
			e.pagePattern = pattern
		}
	}
}

// New creates an Engine for one origin.
func New(origin string, fetcher Fetcher, extractor extract.Extractor, store *state.Store, opts ...Option) *Engine {
	e := &Engine{
		origin:      origin,
		fetcher:     fetcher,
		extractor:   extractor,
		store:       store,
		cooldown:    config.DefaultCooldown,
		pagePattern: model.DefaultPagePattern,
	}

	for _, opt := range opts {
		opt(e)
	}

	if e.logger == nil {
		e.logger = slog.Default()
	}

	return e
}

// Crawl runs the crawl from the resume point until the listing ends, the
// site blocks, extraction fails, or the context is cancelled.
//
// The loop persists the full state after every completed page, so a crash
// or cancellation loses at most the in-flight page. Cancellation is honored
// at the three blocking points: the politeness wait, the fetch, and the
// fatal-error cooldown.
func (e *Engine) Crawl(ctx context.Context) (*Result, error) {
	start := time.Now()

	st, err := e.store.Load()
	if err != nil {
		return nil, fmt.Errorf("load crawl state: %w", err)
	}

	addr := state.ResumeAddress(e.origin, st)
	result := &Result{Origin: e.origin, StartPage: addr.Index}

	e.logger.Info("starting crawl",
		"origin", e.origin,
		"start_page", addr.Index,
		"completed_pages", len(st.CompletedPages),
	)

	for {
		if err := e.wait(ctx); err != nil {
			return e.finish(result, st, start), err
		}

		url, err := addr.Resolve(e.pagePattern)
		if err != nil {
			return e.finish(result, st, start), fmt.Errorf("resolve %s: %w", addr, err)
		}

		outcome := e.fetcher.Fetch(ctx, url)
		if e.observer != nil {
			e.observer.ObserveFetch(e.origin, outcome)
		}

		switch outcome.Kind {
		case model.OutcomeNotFound:
			// One past the last page. The listing is exhausted.
			e.logger.Info("reached end of listing",
				"origin", e.origin,
				"last_page", addr.Index-1,
			)
			return e.finish(result, st, start), nil

		case model.OutcomeBlocked:
			result.Blocked = true
			e.logger.Error("block signal received, aborting",
				"origin", e.origin,
				"page", addr.Index,
				"status", outcome.StatusCode,
			)
			return e.finish(result, st, start), fmt.Errorf("%w: page %d (status %d)", ErrBlocked, addr.Index, outcome.StatusCode)

		case model.OutcomeSuccess:
			next, done, err := e.processPage(ctx, st, addr, outcome, result)
			if err != nil {
				return e.finish(result, st, start), err
			}
			if done {
				// No next link on the page. The listing is exhausted;
				// synthesizing page N+1 from the pattern here would walk
				// past the real listing on sites that answer unknown
				// paths with 200.
				e.logger.Info("reached end of listing",
					"origin", e.origin,
					"last_page", addr.Index,
				)
				return e.finish(result, st, start), nil
			}
			addr = next

		default:
			// Fatal after retries, or transient escalated by transport.
			// Cancellation surfaces here as a fetch error.
			if ctx.Err() != nil {
				return e.finish(result, st, start), ctx.Err()
			}
			if err := e.coolOff(ctx, addr, outcome, result); err != nil {
				return e.finish(result, st, start), err
			}
			// Retry the same page.
		}
	}
}

// processPage extracts, persists, and archives one fetched page. It returns
// the next page's address, or done=true when the page carries no next link.
func (e *Engine) processPage(ctx context.Context, st *model.CrawlState, addr model.PageAddress, outcome model.FetchOutcome, result *Result) (next model.PageAddress, done bool, err error) {
	res, err := e.extractor.Extract(addr, outcome.Body)
	if err != nil {
		e.logger.Error("extraction failed",
			"origin", e.origin,
			"page", addr.Index,
			"error", err,
		)
		return addr, false, fmt.Errorf("%w: page %d: %v", ErrExtract, addr.Index, err)
	}

	if !st.Completed(addr.Index) {
		st.CompletePage(addr.Index, res.Records)
		if err := e.store.Save(st); err != nil {
			return addr, false, fmt.Errorf("persist page %d: %w", addr.Index, err)
		}
		result.PagesCompleted++
		result.RecordsAdded += len(res.Records)
	}

	if e.archive != nil {
		if err := e.archive.SavePage(ctx, addr, outcome.StatusCode, outcome.Body, res.Records); err != nil {
			e.logger.Warn("archive write failed",
				"origin", e.origin,
				"page", addr.Index,
				"error", err,
			)
		}
	}

	if e.observer != nil {
		e.observer.ObservePage(e.origin, addr, len(res.Records))
	}

	e.logger.Info("page completed",
		"origin", e.origin,
		"page", addr.Index,
		"records", len(res.Records),
		"attempts", outcome.Attempts,
	)

	if res.NextLink == "" {
		return addr, true, nil
	}
	return addr.Next(res.NextLink), false, nil
}

// wait applies the politeness delay, honoring cancellation.
func (e *Engine) wait(ctx context.Context) error {
	if e.pacer == nil {
		return ctx.Err()
	}
	return e.pacer.Wait(ctx)
}

// coolOff pauses after a fatal fetch outcome before the page is retried.
// There is no bound on the number of cooldown cycles; only cancellation or
// a successful fetch ends them.
func (e *Engine) coolOff(ctx context.Context, addr model.PageAddress, outcome model.FetchOutcome, result *Result) error {
	result.Cooldowns++
	if e.observer != nil {
		e.observer.ObserveCooldown(e.origin)
	}

	e.logger.Warn("fatal fetch outcome, cooling off",
		"origin", e.origin,
		"page", addr.Index,
		"status", outcome.StatusCode,
		"error", outcome.Err,
		"cooldown", e.cooldown,
	)

	timer := time.NewTimer(e.cooldown)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// finish fills the run totals and elapsed time.
func (e *Engine) finish(result *Result, st *model.CrawlState, start time.Time) *Result {
	result.TotalPages = len(st.CompletedPages)
	result.TotalRecords = len(st.Records)
	result.Elapsed = time.Since(start)
	return result
}

// IsBlocked reports whether err indicates a block-signal abort.
func IsBlocked(err error) bool {
	return errors.Is(err, ErrBlocked)
}
