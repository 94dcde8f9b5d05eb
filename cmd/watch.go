package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/coachcal/internal/config"
	"github.com/teemow/coachcal/internal/logging"
	"github.com/teemow/coachcal/internal/server"
)

func newWatchCmd() *cobra.Command {
	var (
		interval    time.Duration
		metricsAddr string
	)

	defaults := config.Default()

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Scan repeatedly until interrupted",
		Long: `Run a scan immediately and then once per interval until SIGINT or SIGTERM.

While running, Prometheus metrics are served on /metrics and health checks on
/healthz, /readyz and /healthz/detailed of the metrics address. Set --metrics-addr to an
empty string to disable the metrics server.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, logger, err := loadApplication(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("interval") {
				if interval <= 0 {
					return fmt.Errorf("interval must be positive, got %s", interval)
				}
				app.Watch.Interval = interval
			}
			if cmd.Flags().Changed("metrics-addr") {
				app.Watch.MetricsAddr = metricsAddr
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := newRuntime(ctx, app, logger, false)
			if err != nil {
				return err
			}
			defer rt.Close()

			health := server.NewHealthChecker()

			if handler := rt.provider.PrometheusHandler(); handler != nil && app.Watch.MetricsAddr != "" {
				metricsServer, err := server.NewMetricsServer(server.MetricsServerConfig{
					Addr:           app.Watch.MetricsAddr,
					MetricsHandler: handler,
					Health:         health,
				})
				if err != nil {
					return fmt.Errorf("failed to create metrics server: %w", err)
				}

				go func() {
					if err := metricsServer.Start(); err != nil {
						logger.Error("metrics server error", logging.Err(err))
					}
				}()

				defer func() {
					shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					if err := metricsServer.Shutdown(shutdownCtx); err != nil {
						logger.Warn("error during metrics server shutdown", logging.Err(err))
					}
				}()
			}

			scan := func() {
				_, err := rt.runner.Run(ctx)
				if ctx.Err() != nil {
					return
				}
				health.RecordScan(time.Now(), err)
				if err != nil {
					logger.Error("scan failed", logging.Err(err))
				}
			}

			logger.Info("watching mailbox", "interval", app.Watch.Interval.String())

			ticker := time.NewTicker(app.Watch.Interval)
			defer ticker.Stop()

			scan()
			for {
				select {
				case <-ctx.Done():
					health.SetShuttingDown()
					logger.Info("shutdown signal received, stopping")
					return nil
				case <-ticker.C:
					scan()
				}
			}
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", defaults.Watch.Interval, "Time between scans")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", defaults.Watch.MetricsAddr, "Metrics server address")

	return cmd
}
