package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/teemow/coachcal/internal/config"
	"github.com/teemow/coachcal/internal/extract"
	"github.com/teemow/coachcal/internal/google"
	"github.com/teemow/coachcal/internal/instrumentation"
	"github.com/teemow/coachcal/internal/logging"
	"github.com/teemow/coachcal/internal/pipeline"
)

// runtime holds everything a scan needs. Close releases the instrumentation.
type runtime struct {
	provider *instrumentation.Provider
	runner   *pipeline.Runner
	logger   *slog.Logger
}

func newAuthenticator(app config.Application, logger *slog.Logger, metrics *instrumentation.Metrics) (*google.Authenticator, error) {
	oauthConfig, err := google.LoadOAuthConfig(app.Auth.CredentialsFile)
	if err != nil {
		return nil, err
	}

	adapter := logging.NewSlogAdapter(logger)
	return &google.Authenticator{
		Config:  oauthConfig,
		Store:   google.NewFileTokenStore(app.Auth.TokenFile),
		Flow:    &google.LocalServerFlow{Out: os.Stderr, Logger: adapter},
		Metrics: metrics,
		Logger:  adapter,
	}, nil
}

func newRuntime(ctx context.Context, app config.Application, logger *slog.Logger, dryRun bool) (*runtime, error) {
	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(ctx, instrConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create instrumentation provider: %w", err)
	}

	rt := &runtime{provider: provider, logger: logger}
	if err := rt.setup(ctx, app, instrConfig, dryRun); err != nil {
		rt.Close()
		return nil, err
	}
	return rt, nil
}

func (rt *runtime) setup(ctx context.Context, app config.Application, instrConfig instrumentation.Config, dryRun bool) error {
	metrics := rt.provider.Metrics()

	auth, err := newAuthenticator(app, rt.logger, metrics)
	if err != nil {
		return err
	}

	ts, err := auth.TokenSource(ctx)
	if err != nil {
		return fmt.Errorf("failed to authorize: %w", err)
	}

	services, err := google.NewServices(ctx, ts, metrics)
	if err != nil {
		return err
	}

	loc, err := app.Location()
	if err != nil {
		return err
	}

	var audit *instrumentation.AuditLogger
	if instrConfig.AuditLogging.Enabled {
		audit = instrumentation.NewAuditLogger(rt.logger, instrConfig.AuditLogging)
	}

	rt.runner, err = pipeline.New(pipeline.Config{
		Mailbox:  services.Gmail,
		Calendar: services.Calendar,
		Extractor: extract.New(extract.Options{
			Location:      loc,
			Layouts:       app.Extract.Layouts,
			Duration:      app.Extract.Duration,
			SummaryPrefix: app.Extract.SummaryPrefix,
		}),
		Query:      app.Query(),
		CalendarID: app.Calendar.ID,
		TimeZone:   app.Calendar.TimeZone,
		DryRun:     dryRun,
		Logger:     logging.NewSlogAdapter(rt.logger),
		Metrics:    metrics,
		Audit:      audit,
	})
	return err
}

// Close flushes and stops the instrumentation provider.
func (rt *runtime) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := rt.provider.Shutdown(ctx); err != nil {
		rt.logger.Warn("error during instrumentation shutdown", logging.Err(err))
	}
}
