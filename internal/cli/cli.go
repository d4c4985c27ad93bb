package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/pfrederiksen/course-events/internal/config"
	"github.com/pfrederiksen/course-events/internal/logger"
	"github.com/spf13/cobra"
)

const (
	ExitSuccess = 0
	ExitError   = 1
)

var (
	flagConfigFile      string
	flagURL             string
	flagRegLinkSelector string
	flagTitleSelector   string
	flagDateSelector    string
	flagStateFile       string
	flagFeedFile        string
	flagWebhookURL      string
	flagUserAgent       string
	flagTimeout         int
	flagFormat          string
	flagDryRun          bool
	flagVerbose         bool
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "course-events",
		Short: "Check for newly opened course registrations",
		Long: `A CLI tool that scrapes a course listing page for newly opened
registration opportunities, tracks them across runs in a persisted
known-events store, regenerates an RSS feed of every event ever seen,
and optionally posts new events to a webhook.`,
		SilenceUsage: true,
		RunE:         runCheck,
	}

	cmd.Flags().StringVar(&flagConfigFile, "config", "", "Path to YAML config file")
	cmd.Flags().StringVar(&flagURL, "url", "", "Target listing page URL")
	cmd.Flags().StringVar(&flagRegLinkSelector, "reg-link-selector", "", "CSS selector for registration links")
	cmd.Flags().StringVar(&flagTitleSelector, "title-selector", "", "CSS selector for event titles")
	cmd.Flags().StringVar(&flagDateSelector, "date-selector", "", "CSS selector for event dates")
	cmd.Flags().StringVar(&flagStateFile, "state-file", "", "Path to the known-events state file")
	cmd.Flags().StringVar(&flagFeedFile, "feed-file", "", "Path to the generated RSS feed file")
	cmd.Flags().StringVar(&flagWebhookURL, "webhook-url", "", "Webhook endpoint for new-event notifications")
	cmd.Flags().StringVar(&flagUserAgent, "user-agent", "", "User-Agent header for page fetches")
	cmd.Flags().IntVar(&flagTimeout, "timeout", 0, "Request timeout in seconds")
	cmd.Flags().StringVar(&flagFormat, "format", "text", "Output format: text or json")
	cmd.Flags().BoolVar(&flagDryRun, "dry-run", false, "Print webhook payloads instead of sending them")
	cmd.Flags().BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")

	return cmd
}

// runCheck is the main command logic: one detection run
func runCheck(cmd *cobra.Command, args []string) error {
	format := OutputFormat(strings.ToLower(flagFormat))
	if format != FormatText && format != FormatJSON {
		return fmt.Errorf("invalid format: %s (must be 'text' or 'json')", flagFormat)
	}

	if flagVerbose {
		logger.SetDefault(logger.New(logger.LevelDebug, os.Stderr))
	}

	cfg, err := config.Load(flagConfigFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Debug("starting run", logger.Fields{
		"target_url": cfg.TargetURL,
		"state_file": cfg.StateFile,
		"feed_file":  cfg.FeedFile,
		"webhook":    cfg.WebhookURL != "",
	})

	n, err := buildNotifier(cfg, flagDryRun)
	if err != nil {
		return fmt.Errorf("initializing notifier: %w", err)
	}

	result, err := runOnce(cfg, n)
	if err != nil {
		return err
	}

	if err := WriteOutput(os.Stdout, result, format); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

// applyFlagOverrides lets explicitly set flags win over file and environment
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if cmd.Flags().Changed("url") {
		cfg.TargetURL = flagURL
	}
	if cmd.Flags().Changed("reg-link-selector") {
		cfg.RegLinkSelector = flagRegLinkSelector
	}
	if cmd.Flags().Changed("title-selector") {
		cfg.TitleSelector = flagTitleSelector
	}
	if cmd.Flags().Changed("date-selector") {
		cfg.DateSelector = flagDateSelector
	}
	if cmd.Flags().Changed("state-file") {
		cfg.StateFile = flagStateFile
	}
	if cmd.Flags().Changed("feed-file") {
		cfg.FeedFile = flagFeedFile
	}
	if cmd.Flags().Changed("webhook-url") {
		cfg.WebhookURL = flagWebhookURL
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = flagUserAgent
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TimeoutSeconds = flagTimeout
	}
}

// Execute runs the CLI
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(ExitError)
	}
}
