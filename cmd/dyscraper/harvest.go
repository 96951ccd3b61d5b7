package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"dyscraper/pkg/auth"
	"dyscraper/pkg/config"
	"dyscraper/pkg/douyin"
	"dyscraper/pkg/export"
	"dyscraper/pkg/logger"
	"dyscraper/pkg/metrics"
	"dyscraper/pkg/ui"
	"dyscraper/pkg/ui/tui"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var (
	// Harvest command flags
	outputDir       string
	exportJSON      bool
	exportText      bool
	exportYAML      bool
	timestamped     bool
	cookie          string
	accountName     string
	userAgent       string
	maxAttempts     int
	retryDelay      time.Duration
	pageDelay       time.Duration
	maxPages        int
	rateLimit       int
	metricsTextfile string
	useTUI          bool
	notify          bool
)

// harvestCmd represents the harvest command
var harvestCmd = &cobra.Command{
	Use:   "harvest <profile-url|sec_user_id>",
	Short: "Collect every playable video of a Douyin creator",
	Long: `Collect the metadata of every playable video posted by a Douyin creator.

The creator can be given as a profile URL, a /user/<id> path or a bare
sec_user_id. Pages are fetched one after another; a page that keeps failing
after all retry attempts aborts the run and nothing is written.

A logged-in browser cookie makes the listing API far more reliable. It is
taken from, in order:
  - --cookie or DYSCRAPER_COOKIE
  - the account named with --account
  - the most recently stored account (see 'dyscraper auth login')`,
	Example: `  # Harvest with default settings
  dyscraper harvest https://www.douyin.com/user/MS4wLjABAAAA...

  # Only write the link list, without a timestamp in the file name
  dyscraper harvest MS4wLjABAAAA... --json=false --timestamped=false

  # Use a stored account and also write YAML
  dyscraper harvest MS4wLjABAAAA... --account work --yaml

  # Stop after 5 pages and cap requests at 30 per minute
  dyscraper harvest MS4wLjABAAAA... --max-pages 5 --rate-limit 30

  # Interactive terminal UI with a desktop notification at the end
  dyscraper harvest MS4wLjABAAAA... --tui --notify`,
	Args: cobra.ExactArgs(1),
	RunE: runHarvest,
}

func init() {
	rootCmd.AddCommand(harvestCmd)

	f := harvestCmd.Flags()
	f.StringVarP(&outputDir, "output", "o", "", "output directory for exports (default ./downloads)")
	f.BoolVar(&exportJSON, "json", true, "write the JSON metadata export")
	f.BoolVar(&exportText, "txt", true, "write the plain-text link list")
	f.BoolVar(&exportYAML, "yaml", false, "write a YAML metadata export")
	f.BoolVar(&timestamped, "timestamped", true, "add a UTC timestamp to export file names")
	f.StringVar(&cookie, "cookie", "", "Douyin session cookie (prefer 'auth login')")
	f.StringVarP(&accountName, "account", "a", "", "use a specific stored account")
	f.StringVar(&userAgent, "user-agent", "", "override the browser user agent")
	f.IntVar(&maxAttempts, "max-attempts", 5, "attempts per page before giving up")
	f.DurationVar(&retryDelay, "retry-delay", 2*time.Second, "pause between attempts")
	f.DurationVar(&pageDelay, "page-delay", time.Second, "pause between pages")
	f.IntVar(&maxPages, "max-pages", 0, "stop after this many pages (0 = no limit)")
	f.IntVar(&rateLimit, "rate-limit", 0, "request ceiling per minute across all attempts (0 = off)")
	f.StringVar(&metricsTextfile, "metrics-textfile", "", "write Prometheus metrics to this file after the run")
	f.BoolVar(&useTUI, "tui", false, "use interactive terminal UI with real-time progress")
	f.BoolVar(&notify, "notify", false, "send a desktop notification when the run ends")
}

// harvestFlags collects the flags the user actually set, so that defaults
// never shadow the config file or the environment
func harvestFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	set := func(name string, value interface{}) {
		if cmd.Flags().Changed(name) {
			flags[name] = value
		}
	}

	set("output", outputDir)
	set("json", exportJSON)
	set("txt", exportText)
	set("yaml", exportYAML)
	set("timestamped", timestamped)
	set("cookie", cookie)
	set("account", accountName)
	set("user-agent", userAgent)
	set("max-attempts", maxAttempts)
	set("retry-delay", retryDelay)
	set("page-delay", pageDelay)
	set("max-pages", maxPages)
	set("rate-limit", rateLimit)
	set("metrics-textfile", metricsTextfile)
	set("log-level", logLevel)

	return flags
}

func runHarvest(cmd *cobra.Command, args []string) error {
	secUserID, err := douyin.ResolveSecUserID(args[0])
	if err != nil {
		return err
	}

	cfg, err := config.Load(configFile, harvestFlags(cmd))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := setupLogging(cfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	log := logger.GetLogger()
	log.WithField("version", version).Info("dyscraper starting")

	manager, err := auth.NewManager()
	if err != nil {
		log.WithError(err).Warn("Credential manager unavailable")
	}
	headers, err := resolveCredentials(cfg, manager, log)
	if err != nil {
		ui.PrintInfo("Stored accounts", "Use 'dyscraper auth list' to see them")
		return err
	}
	if headers == nil && cfg.Douyin.Cookie == "" && !quiet && !useTUI {
		ui.PrintWarning("No Douyin cookie configured, requests may be rejected")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	collector := metrics.NewCollector()

	var summary *export.Summary
	if useTUI {
		summary, err = runWithTUI(ctx, stop, cfg, headers, collector, log, secUserID)
	} else {
		summary, err = runWithPrinter(ctx, cfg, headers, collector, log, secUserID)
	}

	if cfg.Metrics.Textfile != "" {
		if werr := collector.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.WithError(werr).Warn("Failed to write metrics textfile")
		} else {
			log.WithField("path", cfg.Metrics.Textfile).Info("Metrics written")
		}
	}

	if notify {
		notifyResult(ui.NewNotifier(ui.Out), summary, err)
	}

	if err != nil {
		log.WithError(err).WithField("sec_user_id", secUserID).Error("Harvest failed")
		if useTUI || quiet {
			return err
		}
		return reportedError{err: err}
	}

	log.WithField("sec_user_id", secUserID).Info("Harvest completed successfully")
	return nil
}

func setupLogging(cfg *config.Config) error {
	if !useTUI {
		return logger.Initialize(&cfg.Logging)
	}
	// the terminal belongs to the TUI, so console logging is off
	log, err := logger.NewFileOnly(&cfg.Logging)
	if err != nil {
		return err
	}
	logger.SetLogger(log)
	return nil
}

func runWithPrinter(ctx context.Context, cfg *config.Config, headers douyin.HeaderProvider, collector *metrics.Collector, log logger.Logger, secUserID string) (*export.Summary, error) {
	var out io.Writer = ui.Out
	if quiet {
		out = io.Discard
	}

	printer := ui.NewStatusPrinter(out, verbose)
	p := newPipeline(cfg, headers, printer, collector, log)
	if !quiet {
		ui.PrintInfo("Target Profile", secUserID)
		ui.PrintInfo("Output Directory", p.exporter.OutputDir())
		ui.PrintHighlight("[INITIATING HARVEST SEQUENCE]")
	}

	summary, err := p.run(ctx, secUserID)

	stats := printer.Stats()
	log.InfoWithFields("Run statistics", map[string]interface{}{
		"pages":   stats.Pages,
		"total":   stats.Total,
		"retries": stats.Retries,
		"elapsed": stats.Elapsed.String(),
	})

	if err == nil && !quiet {
		ui.PrintSuccess("[HARVEST COMPLETED SUCCESSFULLY]")
	}
	return summary, err
}

func runWithTUI(ctx context.Context, stop context.CancelFunc, cfg *config.Config, headers douyin.HeaderProvider, collector *metrics.Collector, log logger.Logger, secUserID string) (*export.Summary, error) {
	view := tui.New(secUserID, stop)
	p := newPipeline(cfg, headers, view, collector, log)

	var summary *export.Summary
	var g errgroup.Group
	g.Go(func() error {
		if err := view.Run(); err != nil {
			stop()
			return fmt.Errorf("terminal UI failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		summary, err = p.run(ctx, secUserID)
		return err
	})

	err := g.Wait()
	log.WithField("state", view.State().String()).Debug("Terminal UI closed")
	if err != nil {
		return nil, err
	}

	// the alt screen is gone, leave the artifact list in the scrollback
	ui.NewStatusPrinter(ui.Out, false).Exported(summary)
	return summary, nil
}

func notifyResult(n *ui.Notifier, summary *export.Summary, err error) {
	switch {
	case err != nil:
		n.SendError("Harvest failed", err.Error())
	case summary == nil || summary.Empty:
		n.SendSuccess("Harvest complete", "No videos found")
	default:
		n.SendSuccess("Harvest complete", fmt.Sprintf("%d videos exported", exportedCount(summary)))
	}
}
