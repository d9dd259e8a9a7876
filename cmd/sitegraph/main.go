package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amosWeiskopf/sitegraph/internal/config"
	applog "github.com/amosWeiskopf/sitegraph/internal/log"
	"github.com/amosWeiskopf/sitegraph/internal/metrics"
	"github.com/amosWeiskopf/sitegraph/internal/models"
	"github.com/amosWeiskopf/sitegraph/pkg/analyzer"
	"github.com/amosWeiskopf/sitegraph/pkg/crawler"
	"github.com/amosWeiskopf/sitegraph/pkg/renderer"
	"github.com/amosWeiskopf/sitegraph/pkg/reporter"
	"github.com/amosWeiskopf/sitegraph/pkg/utils"
	"github.com/briandowns/spinner"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

const usageMessage = "You need to provide a site url to crawl. E.g: http://markusos.github.io/"

// errMissingSite has already been reported to the user when returned
var errMissingSite = errors.New("missing site url")

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitegraph [URL]",
		Short: "sitegraph - crawl a site and draw its sitemap",
		Long: `sitegraph walks a website depth-first from its root, follows internal links only,
and prints the discovered link structure as a Graphviz DOT graph.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 || args[0] == "" {
				fmt.Fprintln(stderr, usageMessage)
				return errMissingSite
			}
			return run(cmd, args[0], stdout, stderr)
		},
	}

	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	flags := cmd.Flags()
	flags.Int("max-depth", crawler.DefaultMaxDepth, "Maximum link depth to fetch (the root is depth 0)")
	flags.Int("max-pages", 0, "Maximum number of pages to fetch (0 means unlimited)")
	flags.String("renderer", config.RendererChrome, "Page renderer (chrome, http)")
	flags.Bool("headless", true, "Run Chrome headless")
	flags.String("format", reporter.FormatDOT, "Output format (dot, json, markdown)")
	flags.String("output", "", "Output file (default stdout)")
	flags.Int("top-linked", 10, "Number of most linked pages to report")
	flags.Duration("timeout", 30*time.Second, "Per page timeout")
	flags.String("user-agent", config.DefaultUserAgent, "User agent sent with every request")
	flags.String("metrics-addr", "", "Serve Prometheus metrics on this address while crawling")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.String("log-format", applog.FormatConsole, "Log format (console, json)")
	flags.Bool("progress", false, "Show a progress spinner on stderr")
	flags.String("config", "", "Config file path")
	flags.Bool("verbose", false, "Enable verbose output")

	return cmd
}

func run(cmd *cobra.Command, site string, stdout, stderr io.Writer) error {
	flags := cmd.Flags()
	configPath, _ := flags.GetString("config")

	cfg, err := config.Load(configPath, flags)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if verbose, _ := flags.GetBool("verbose"); verbose {
		cfg.Logging.Level = zerolog.DebugLevel.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	root, err := utils.CanonicalRoot(site)
	if err != nil {
		return err
	}

	logger, err := applog.New(stderr, cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return err
	}

	rep, err := reporter.New(cfg.Output.Format)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		srv := metrics.NewServer(cfg.Metrics.Addr, m, applog.Component(logger, "metrics"))
		srv.Start()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("stopping metrics server")
			}
		}()
	}

	opts := []crawler.Option{
		crawler.WithMaxDepth(cfg.Crawler.MaxDepth),
		crawler.WithMaxPages(cfg.Crawler.MaxPages),
		crawler.WithLogger(applog.Component(logger, "crawler")),
		crawler.WithMetrics(m),
	}
	stopProgress := func() {}
	if cfg.Output.Progress {
		var progress crawler.ProgressFunc
		progress, stopProgress = startProgress(stderr, root)
		opts = append(opts, crawler.WithProgress(progress))
	}

	result, err := crawler.New(newRenderer(cfg, logger), opts...).Crawl(ctx, root)
	stopProgress()
	if err != nil {
		return fmt.Errorf("crawl failed: %w", err)
	}
	if ctx.Err() != nil {
		logger.Warn().Msg("crawl interrupted, writing partial graph")
	}

	summary := analyzer.New(cfg.Output.TopLinked).Analyze(result)
	logSummary(logger, summary)

	return writeReport(rep, cfg.Output.Path, stdout, result, summary)
}

func newRenderer(cfg *config.Config, logger zerolog.Logger) crawler.Renderer {
	if cfg.Crawler.Renderer == config.RendererHTTP {
		return renderer.NewHTTP(nil, cfg.Crawler.UserAgent, cfg.Crawler.Timeout,
			renderer.WithHTTPLogger(applog.Component(logger, "http")),
		)
	}
	return renderer.NewChrome(cfg.Crawler.UserAgent, cfg.Crawler.Timeout,
		renderer.WithHeadless(cfg.Crawler.Headless),
		renderer.WithChromeLogger(applog.Component(logger, "chrome")),
	)
}

// startProgress shows a spinner on w until the returned stop func is called.
// Nothing is drawn when w is not a terminal.
func startProgress(w io.Writer, root string) (crawler.ProgressFunc, func()) {
	s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(w))
	s.Suffix = " crawling " + root
	s.Start()

	progress := func(pageURL string, fetched int) {
		s.Lock()
		s.Suffix = fmt.Sprintf(" %d fetched, %s", fetched, pageURL)
		s.Unlock()
	}
	return progress, s.Stop
}

func logSummary(logger zerolog.Logger, s *models.Summary) {
	ev := logger.Info().
		Int("nodes", s.Nodes).
		Int("edges", s.Edges).
		Int("stubs", s.Stubs)
	if len(s.TopLinked) > 0 {
		ev = ev.Str("most_linked", s.TopLinked[0].URL).Int("most_linked_count", s.TopLinked[0].Count)
	}
	ev.Msg("graph summary")

	for _, lc := range s.TopLinked {
		logger.Debug().Str("url", lc.URL).Int("inbound", lc.Count).Float64("pagerank", s.PageRank[lc.URL]).Msg("top linked")
	}
}

func writeReport(rep *reporter.Reporter, path string, stdout io.Writer, result *models.CrawlResult, summary *models.Summary) error {
	if path == "" {
		return rep.Write(stdout, result, summary)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := rep.Write(f, result, summary); err != nil {
		f.Close()
		return fmt.Errorf("failed to write report: %w", err)
	}
	return f.Close()
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if !errors.Is(err, errMissingSite) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(1)
	}
}
