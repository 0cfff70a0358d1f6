// Package main provides the CLI entrypoint for phenhance.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/phenhance/internal/analytics"
	"github.com/jmylchreest/phenhance/internal/config"
	"github.com/jmylchreest/phenhance/internal/store"
	"github.com/jmylchreest/phenhance/internal/theme"
	"github.com/jmylchreest/phenhance/internal/tracking"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

// Global configuration and state
var (
	cfg        *config.Config
	globalOpts struct {
		verbose    bool
		configPath string
		referrer   string
	}
	logger *slog.Logger
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "phenhance",
	Short: "Theme preference and session analytics for Linux desktops",
	Long: `phenhance records the user's light/dark color-scheme preference and a few
session events to PostHog.

It follows the desktop color scheme through the XDG Settings portal (or GTK
settings.ini when no portal is running) and emits a theme_preference event
whenever the resolved theme changes.`,
	Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime),
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		setupLogger()

		var err error
		cfg, err = config.LoadConfig(globalOpts.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		applyFlagOverrides(cfg)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalOpts.verbose, "verbose", "v", false,
		"Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/phenhance/config.toml)")
	rootCmd.PersistentFlags().StringVar(&globalOpts.referrer, "referrer", "",
		"Launch referrer recorded once as initial_referrer (overrides config and "+config.EnvReferrer+")")
}

// applyFlagOverrides applies command-line values over the loaded config.
func applyFlagOverrides(c *config.Config) {
	if globalOpts.referrer != "" {
		c.Session.Referrer = globalOpts.referrer
	}
}

// setupLogger configures the global slog logger.
func setupLogger() {
	level := slog.LevelWarn
	if globalOpts.verbose {
		level = slog.LevelDebug
	}

	// Log to stderr so stdout is clean for output
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}

// session holds the pieces a tracking command needs.
type session struct {
	coordinator *tracking.Coordinator
	client      analytics.Client
	source      theme.Source
	state       *store.State
}

// openSession loads the distinct id, detects the color-scheme source and
// builds the analytics client. A missing source is not an error: the
// coordinator is built without one and reports every operation as failed.
func openSession(ctx context.Context) (*session, error) {
	statePath, err := store.StateFilePath()
	if err != nil {
		return nil, fmt.Errorf("failed to get state path: %w", err)
	}
	state, created, err := store.LoadOrCreateState(statePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load state: %w", err)
	}
	if created {
		logger.Debug("created new distinct id", "distinct_id", state.DistinctID)
	}
	if err := state.Touch(statePath); err != nil {
		logger.Warn("failed to update state", "error", err)
	}

	source, err := theme.Detect(ctx, cfg.Theme.ColorScheme, logger)
	if err != nil {
		logger.Warn("no color scheme source", "error", err)
		source = nil
	}

	client, err := newAnalyticsClient(state.DistinctID)
	if err != nil {
		closeSource(source)
		return nil, err
	}

	coordinator := tracking.New(source, client, logger)
	coordinator.SetBaseURL(cfg.Organization.BaseURL)
	coordinator.SetReferrer(cfg.Session.Referrer)
	if timeout := cfg.Organization.Timeout.Duration(); timeout > 0 {
		coordinator.SetHTTPClient(&http.Client{Timeout: timeout})
	}

	return &session{
		coordinator: coordinator,
		client:      client,
		source:      source,
		state:       state,
	}, nil
}

// Close flushes the analytics client and releases the source.
func (s *session) Close() {
	if err := s.client.Close(); err != nil {
		logger.Warn("failed to close analytics client", "error", err)
	}
	closeSource(s.source)
}

// newAnalyticsClient returns a PostHog client, or a LogClient when no API
// key is configured.
func newAnalyticsClient(distinctID string) (analytics.Client, error) {
	if cfg.Analytics.APIKey == "" {
		logger.Debug("no analytics API key configured, logging events only")
		return analytics.NewLogClient(logger), nil
	}

	client, err := analytics.NewPostHog(analytics.PostHogConfig{
		APIKey:     cfg.Analytics.APIKey,
		Endpoint:   cfg.Analytics.Endpoint,
		DistinctID: distinctID,
		Interval:   cfg.Analytics.FlushPeriod.Duration(),
		BatchSize:  cfg.Analytics.BatchSize,
	}, logger)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func closeSource(source theme.Source) {
	if c, ok := source.(interface{ Close() error }); ok {
		if err := c.Close(); err != nil {
			logger.Debug("failed to close color scheme source", "error", err)
		}
	}
}

// parseProperties parses key=value arguments. Integer, float and boolean
// values are converted; everything else stays a string.
func parseProperties(args []string) (map[string]any, error) {
	props := make(map[string]any, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid property %q, expected key=value", arg)
		}
		props[key] = parseValue(value)
	}
	return props, nil
}

func parseValue(value string) any {
	if i, err := strconv.Atoi(value); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
