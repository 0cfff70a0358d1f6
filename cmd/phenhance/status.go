package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/phenhance/internal/config"
	"github.com/jmylchreest/phenhance/internal/output"
	"github.com/jmylchreest/phenhance/internal/store"
)

var statusOpts struct {
	format   string
	template string
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the local installation state",
	Long: `Print the distinct id, when this installation was first seen and last
run, and where configuration and state live. Nothing is sent and no state
is created.`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Flags().StringVarP(&statusOpts.format, "format", "f", "text",
		"Output format (text, json, yaml)")
	statusCmd.Flags().StringVar(&statusOpts.template, "template", "",
		"Custom Go template for text output")
}

func runStatus(cmd *cobra.Command, args []string) error {
	formatter, err := createFormatter(statusOpts.format, statusOpts.template)
	if err != nil {
		return err
	}

	statePath, err := store.StateFilePath()
	if err != nil {
		return fmt.Errorf("failed to get state path: %w", err)
	}

	report := output.StatusReport{
		ConfigPath: globalOpts.configPath,
		StatePath:  statePath,
		Analytics:  "log",
	}
	if report.ConfigPath == "" {
		report.ConfigPath = config.ConfigPath()
	}
	if cfg.Analytics.APIKey != "" {
		report.Analytics = cfg.Analytics.Endpoint
	}

	state, err := store.LoadState(statePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		report.DistinctID = "(none)"
	case err != nil:
		return fmt.Errorf("failed to load state: %w", err)
	default:
		report.DistinctID = state.DistinctID
		report.FirstSeenAt = unixTime(state.FirstSeenAt)
		report.LastRunAt = unixTime(state.LastRunAt)
	}

	return formatter.Format(os.Stdout, report)
}

func unixTime(sec int64) time.Time {
	if sec == 0 {
		return time.Time{}
	}
	return time.Unix(sec, 0)
}
