package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/phenhance/internal/metrics"
	"github.com/jmylchreest/phenhance/internal/tracking"
)

// lookupGrace bounds how long shutdown waits for a pending organization lookup.
const lookupGrace = 5 * time.Second

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track the theme preference until interrupted",
	Long: `Start a tracking session and keep it running until SIGINT or SIGTERM.

The session records the initial referrer once, emits the current theme,
follows color-scheme changes and looks up the organization in the
background when an auth key is configured.

When metrics.listen is set, Prometheus metrics are served on /metrics.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sess, err := openSession(ctx)
	if err != nil {
		return err
	}
	defer sess.Close()

	var metricsServer *http.Server
	if cfg.Metrics.Listen != "" {
		reg := prometheus.NewRegistry()
		sess.coordinator.SetRecorder(metrics.NewPrometheusRecorder(reg))
		metricsServer = startMetricsServer(cfg.Metrics.Listen, reg)
	}

	if !sess.coordinator.Initialize(ctx, tracking.Options{AuthKey: cfg.Organization.AuthKey}) {
		logger.Warn("tracking unavailable in this session")
	} else {
		logger.Info("tracking session started", "distinct_id", sess.state.DistinctID)
	}

	<-ctx.Done()
	logger.Debug("shutting down")

	sess.coordinator.Teardown()
	waitLookup(sess.coordinator.PendingLookup())

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Warn("failed to stop metrics server", "error", err)
		}
	}
	return nil
}

// waitLookup gives an in-flight organization lookup a chance to finish
// before the analytics client is flushed.
func waitLookup(lookup *tracking.Lookup) {
	if lookup == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), lookupGrace)
	defer cancel()
	if _, err := lookup.Wait(ctx); err != nil {
		logger.Warn("organization lookup still pending at shutdown", "error", err)
	}
}

func startMetricsServer(addr string, reg *prometheus.Registry) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler(reg))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", fmt.Errorf("listen on %s: %w", addr, err))
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
