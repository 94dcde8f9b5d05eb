package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

func newAuthCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize coachcal to use your Gmail and Calendar",
		Long: `Open the Google consent page and store the resulting token.

The authorization URL is printed to stderr. After consenting, the browser is
redirected to a short-lived local server that completes the exchange. The
token is written to the --token file and reused by later scans.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, logger, err := loadApplication(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			// A one-off command has no exporter to feed.
			auth, err := newAuthenticator(app, logger, nil)
			if err != nil {
				return err
			}

			if _, err := auth.Authorize(ctx); err != nil {
				return fmt.Errorf("failed to authorize: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Token saved to %s\n", app.Auth.TokenFile)
			return nil
		},
	}
}
