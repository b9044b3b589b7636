package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// Runner crawls multiple origins concurrently, one Engine per origin.
//
// Design decision: We use a separate Runner rather than adding multi-origin
// support to Engine because:
// 1. It keeps the Engine focused on a single sequential crawl
// 2. Each origin needs its own state file, extractor, and rate limiter
// 3. A block on one origin must not abort the others
type Runner struct {
	// engineFactory builds a fresh engine for each origin. A factory keeps
	// per-origin wiring (state path, site profile, pacer) out of the Runner.
	engineFactory func(origin string) (*Engine, error)

	// concurrency is the maximum number of origins crawled at once.
	concurrency int

	// logger is used for run-level logging.
	logger *slog.Logger

	mu sync.Mutex
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithRunnerLogger sets a custom logger for the runner.
func WithRunnerLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithConcurrency sets the maximum number of concurrent crawls.
// Default is 4 if not specified.
func WithConcurrency(n int) RunnerOption {
	return func(r *Runner) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// NewRunner creates a Runner.
func NewRunner(engineFactory func(origin string) (*Engine, error), opts ...RunnerOption) *Runner {
	r := &Runner{
		engineFactory: engineFactory,
		concurrency:   4,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = slog.Default()
	}

	return r
}

// Run crawls all origins, respecting the concurrency limit and context
// cancellation. Results keep the order of the origins slice.
//
// A failed origin (blocked, extraction error, fatal persistence error) is
// reported in its Result and logged, but does not stop the other crawls.
// The error return is non-nil only when the whole run was cancelled.
func (r *Runner) Run(ctx context.Context, origins []string) ([]*Result, error) {
	r.logger.Info("starting multi-origin crawl",
		"origins", len(origins),
		"concurrency", r.concurrency,
	)

	startTime := time.Now()
	results := make([]*Result, len(origins))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)

	for i, origin := range origins {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			eng, err := r.engineFactory(origin)
			if err != nil {
				r.logger.Error("engine setup failed",
					"origin", origin,
					"error", err,
				)
				r.store(results, i, &Result{Origin: origin, Failure: err.Error()})
				return nil
			}

			result, err := eng.Crawl(ctx)
			if result == nil {
				// Crawl failed before producing a result, e.g. an
				// unreadable state file.
				result = &Result{Origin: origin}
			}
			r.store(results, i, result)

			switch {
			case err == nil:
				r.logger.Info("crawl finished",
					"origin", origin,
					"pages", result.PagesCompleted,
					"records", result.RecordsAdded,
				)
			case ctx.Err() != nil:
				return ctx.Err()
			default:
				// Recorded in the result; keep crawling the other origins.
				result.Failure = err.Error()
				r.logger.Warn("crawl ended early",
					"origin", origin,
					"error", err,
				)
			}
			return nil
		})
	}

	err := g.Wait()

	r.logger.Info("multi-origin crawl complete",
		"origins", len(origins),
		"elapsed", time.Since(startTime),
	)

	return results, err
}

func (r *Runner) store(results []*Result, i int, result *Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	results[i] = result
}
