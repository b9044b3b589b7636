package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/crawlpage/crawlpage/internal/archive"
	"github.com/crawlpage/crawlpage/internal/block"
	"github.com/crawlpage/crawlpage/internal/config"
	"github.com/crawlpage/crawlpage/internal/engine"
	"github.com/crawlpage/crawlpage/internal/extract"
	"github.com/crawlpage/crawlpage/internal/log"
	"github.com/crawlpage/crawlpage/internal/metrics"
	"github.com/crawlpage/crawlpage/internal/ratelimit"
	"github.com/crawlpage/crawlpage/internal/report"
	"github.com/crawlpage/crawlpage/internal/state"
	"github.com/crawlpage/crawlpage/internal/transport"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl [origin...]",
		Short: "Crawl one or more paginated listing sites",
		Long: `Crawl walks each origin's paginated listing from the first incomplete
page, extracts records, and persists progress after every completed page.

A finished listing ends when the page after the last returns 404. A block
signal (HTTP 429 or anti-automation content) aborts that origin immediately;
progress up to the previous page is saved and a later run resumes from there.

Examples:
  # Crawl a site with the built-in books profile
  crawlpage crawl https://books.toscrape.com/

  # Crawl several sites concurrently
  crawlpage crawl https://books.toscrape.com/ https://quotes.toscrape.com/

  # Slower politeness delays and a JSON summary
  crawlpage crawl --min-delay 2s --max-delay 5s --json https://books.toscrape.com/

  # Export all collected records after the crawl
  crawlpage crawl --export records.json https://books.toscrape.com/

Configuration file (.crawlpage) example:
  defaults:
    profile: books
  sites:
    https://quotes.toscrape.com/:
      profile: quotes
      minDelayMs: 1000
      maxDelayMs: 3000
    https://private.example.com/:
      cookie: "session_id=abc123"
      selectors:
        item: ".listing-row"
        fields:
          name: "h2 a"
          link: "h2 a@href"
        next: "a.next-page"`,
		Args: cobra.ArbitraryArgs,
		RunE: runCrawlCmd,
	}

	// Transport flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each request")
	cmd.Flags().IntP("retry", "r", config.DefaultRetryTotal,
		"Total attempts per request, including the first")
	cmd.Flags().Duration("backoff", config.DefaultBackoffFactor,
		"Backoff factor between retry attempts (doubles each retry)")
	cmd.Flags().String("user-agent", config.DefaultUserAgent,
		"User-Agent header sent with every request")
	cmd.Flags().Int64("max-body", config.DefaultMaxBodySize,
		"Maximum response body size in bytes")

	// Politeness flags
	cmd.Flags().Duration("min-delay", config.DefaultMinDelay,
		"Minimum randomized delay before each request")
	cmd.Flags().Duration("max-delay", config.DefaultMaxDelay,
		"Maximum randomized delay before each request")
	cmd.Flags().Duration("cooldown", config.DefaultCooldown,
		"Pause before re-attempting a page after a fatal fetch error")

	// Concurrency across origins
	cmd.Flags().IntP("batch", "b", config.DefaultConcurrency,
		"Number of origins crawled concurrently")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Site configuration file path (default: .crawlpage in current or home directory)")

	// Storage flags
	cmd.Flags().Bool("archive", false,
		"Record fetched pages in the SQLite archive alongside the progress file")

	// Summary flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON summary (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown summary (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write summary to specified file path (creates directories if needed)")
	cmd.Flags().String("export", "",
		"Export all collected records to this JSON file after the crawl")

	// Observability flags
	cmd.Flags().String("metrics", "",
		"Serve Prometheus metrics at this address for the crawl's duration (e.g. :9090)")
	cmd.Flags().String("log-file", "",
		"Mirror logs to a rotating file at this path")

	return cmd
}

// runCrawlCmd executes the crawl command.
func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := log.NewLogger(os.Stderr, log.Options{
		Verbose: cfg.Verbose,
		File:    cfg.LogFile,
	})
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runCrawl(ctx, cfg, logger)
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Origins = args
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.StateDir = getStateDir(cmd)

	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.RetryTotal, err = cmd.Flags().GetInt("retry")
	if err != nil {
		return nil, err
	}

	cfg.BackoffFactor, err = cmd.Flags().GetDuration("backoff")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.MaxBodySize, err = cmd.Flags().GetInt64("max-body")
	if err != nil {
		return nil, err
	}

	cfg.MinDelay, err = cmd.Flags().GetDuration("min-delay")
	if err != nil {
		return nil, err
	}

	cfg.MaxDelay, err = cmd.Flags().GetDuration("max-delay")
	if err != nil {
		return nil, err
	}

	cfg.Cooldown, err = cmd.Flags().GetDuration("cooldown")
	if err != nil {
		return nil, err
	}

	cfg.Concurrency, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.Sites, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		cfg.Sites = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	cfg.Archive, err = cmd.Flags().GetBool("archive")
	if err != nil {
		return nil, err
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.OutputFile, err = cmd.Flags().GetString("export")
	if err != nil {
		return nil, err
	}

	cfg.MetricsAddr, err = cmd.Flags().GetString("metrics")
	if err != nil {
		return nil, err
	}

	cfg.LogFile, err = cmd.Flags().GetString("log-file")
	if err != nil {
		return nil, err
	}

	return cfg, nil
}

// runCrawl executes the crawl across all configured origins.
func runCrawl(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	logger.Info("starting crawl",
		"origins", cfg.Origins,
		"state_dir", cfg.StateDir,
		"concurrency", cfg.Concurrency,
		"archive", cfg.Archive,
	)

	var arch *archive.Archive
	if cfg.Archive {
		var err error
		arch, err = archive.Open(cfg.StateDir)
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arch.Close()
		logger.Info("archive opened", "dir", cfg.StateDir)
	}

	var m *metrics.Metrics
	if cfg.MetricsAddr != "" {
		m = metrics.New()
		go func() {
			if err := m.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", "error", err)
			}
		}()
	}

	runner := engine.NewRunner(
		engineFactory(cfg, arch, m, logger),
		engine.WithConcurrency(cfg.Concurrency),
		engine.WithRunnerLogger(logger),
	)

	results, err := runner.Run(ctx, cfg.Origins)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cancelled := errors.Is(err, context.Canceled)

	summary := report.NewSummary(results)
	if outErr := outputSummary(cfg, summary); outErr != nil {
		logger.Error("summary output failed", "error", outErr)
	}

	if cfg.OutputFile != "" {
		if expErr := exportRecords(cfg.StateDir, cfg.Origins, cfg.OutputFile, logger); expErr != nil {
			logger.Error("record export failed", "error", expErr)
		}
	}

	if cancelled {
		return context.Canceled
	}
	if summary.AnyBlocked() {
		return engine.ErrBlocked
	}
	return nil
}

// engineFactory builds the per-origin engine wiring for the runner.
func engineFactory(cfg *config.Config, arch *archive.Archive, m *metrics.Metrics, logger *slog.Logger) func(origin string) (*engine.Engine, error) {
	return func(origin string) (*engine.Engine, error) {
		siteCfg := cfg.Sites.GetSiteConfig(origin)

		extractor, err := extract.FromSiteConfig(siteCfg)
		if err != nil {
			return nil, fmt.Errorf("extractor for %s: %w", origin, err)
		}

		transportOpts := []transport.Option{
			transport.WithRetryTotal(cfg.RetryTotal),
			transport.WithBackoffFactor(cfg.BackoffFactor),
			transport.WithMaxBodySize(cfg.MaxBodySize),
			transport.WithDetector(block.New()),
			transport.WithLogger(logger),
		}
		if siteCfg.Cookie != "" {
			transportOpts = append(transportOpts, transport.WithCookie(siteCfg.Cookie))
		}
		if len(siteCfg.Headers) > 0 {
			transportOpts = append(transportOpts, transport.WithHeaders(siteCfg.Headers))
		}
		client := transport.New(cfg.UserAgent, cfg.Timeout, transportOpts...)

		minDelay, maxDelay := cfg.MinDelay, cfg.MaxDelay
		if siteCfg.MinDelayMS > 0 {
			minDelay = time.Duration(siteCfg.MinDelayMS) * time.Millisecond
		}
		if siteCfg.MaxDelayMS > 0 {
			maxDelay = time.Duration(siteCfg.MaxDelayMS) * time.Millisecond
		}

		store := state.New(
			statePathFor(cfg.StateDir, origin),
			state.WithLogger(logger),
		)

		engineOpts := []engine.Option{
			engine.WithPacer(ratelimit.New(minDelay, maxDelay)),
			engine.WithLogger(logger),
			engine.WithCooldown(cfg.Cooldown),
		}
		if siteCfg.PagePattern != "" {
			engineOpts = append(engineOpts, engine.WithPagePattern(siteCfg.PagePattern))
		}
		if arch != nil {
			engineOpts = append(engineOpts, engine.WithArchive(arch))
		}
		if m != nil {
			engineOpts = append(engineOpts, engine.WithObserver(m))
		}

		return engine.New(origin, client, extractor, store, engineOpts...), nil
	}
}

// outputSummary writes the crawl summary in the requested format.
func outputSummary(cfg *config.Config, summary *report.Summary) error {
	var output *os.File
	if cfg.ReportFile != "" {
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	var writer report.Writer
	switch {
	case cfg.JSONReport:
		writer = report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
	case cfg.MarkdownReport:
		writer = report.NewMarkdownWriter(output)
	default:
		writer = report.NewSimpleWriter(output)
	}

	_, err := writer.Write(summary)
	return err
}
