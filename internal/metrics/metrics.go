// Package metrics exposes crawl progress as Prometheus metrics.
package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/crawlpage/crawlpage/internal/model"
)

// Metrics implements the engine's Observer with Prometheus collectors.
//
// Design decision: collectors live on a struct with a private registry
// rather than as package globals because tests and the multi-origin runner
// create engines repeatedly; re-registering globals would panic.
type Metrics struct {
	registry *prometheus.Registry

	fetchesTotal   *prometheus.CounterVec
	attemptsTotal  *prometheus.CounterVec
	pagesCompleted *prometheus.CounterVec
	recordsTotal   *prometheus.CounterVec
	blocksTotal    *prometheus.CounterVec
	cooldownsTotal *prometheus.CounterVec
	lastPage       *prometheus.GaugeVec
}

// New creates a Metrics with all collectors registered.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		fetchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_fetches_total",
				Help: "Total page fetches, labeled by origin and outcome.",
			},
			[]string{"origin", "outcome", "status_code"},
		),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_http_attempts_total",
				Help: "Total HTTP attempts including in-flight retries.",
			},
			[]string{"origin"},
		),
		pagesCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_pages_completed_total",
				Help: "Total pages extracted and persisted.",
			},
			[]string{"origin"},
		),
		recordsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_records_total",
				Help: "Total records collected.",
			},
			[]string{"origin"},
		),
		blocksTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_blocks_total",
				Help: "Total block signals received from target sites.",
			},
			[]string{"origin"},
		),
		cooldownsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlpage_cooldowns_total",
				Help: "Total cooldown cycles after fatal fetch outcomes.",
			},
			[]string{"origin"},
		),
		lastPage: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "crawlpage_last_completed_page",
				Help: "Highest page index completed this run, per origin.",
			},
			[]string{"origin"},
		),
	}

	m.registry.MustRegister(
		m.fetchesTotal,
		m.attemptsTotal,
		m.pagesCompleted,
		m.recordsTotal,
		m.blocksTotal,
		m.cooldownsTotal,
		m.lastPage,
	)

	return m
}

// ObserveFetch records the classified outcome of one page fetch.
func (m *Metrics) ObserveFetch(origin string, outcome model.FetchOutcome) {
	m.fetchesTotal.WithLabelValues(
		origin,
		outcome.Kind.String(),
		strconv.Itoa(outcome.StatusCode),
	).Inc()
	m.attemptsTotal.WithLabelValues(origin).Add(float64(outcome.Attempts))
	if outcome.Kind == model.OutcomeBlocked {
		m.blocksTotal.WithLabelValues(origin).Inc()
	}
}

// ObservePage records a completed page and its record count.
func (m *Metrics) ObservePage(origin string, addr model.PageAddress, records int) {
	m.pagesCompleted.WithLabelValues(origin).Inc()
	m.recordsTotal.WithLabelValues(origin).Add(float64(records))
	m.lastPage.WithLabelValues(origin).Set(float64(addr.Index))
}

// ObserveCooldown records one cooldown cycle.
func (m *Metrics) ObserveCooldown(origin string) {
	m.cooldownsTotal.WithLabelValues(origin).Inc()
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes the metrics endpoint until the context is cancelled.
// Serve blocks; run it in a goroutine alongside the crawl.
func (m *Metrics) Serve(ctx context.Context, addr string, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("exposing metrics", "address", addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
