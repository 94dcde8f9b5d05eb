package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/teemow/coachcal/internal/config"
	"github.com/teemow/coachcal/internal/logging"
)

// rootCmd represents the base command for the coachcal application
var rootCmd = &cobra.Command{
	Use:   "coachcal",
	Short: "Turns coaching invitation emails into calendar events",
	Long: `coachcal scans unread Gmail messages under a label, works out when each
coaching session takes place and adds it to Google Calendar.

The date comes from the invitation's calendar attachment when there is one,
otherwise from the subject line. Processed messages are marked read so they
are not picked up again.

Running coachcal without a subcommand performs a single scan.`,
	SilenceUsage: true,
}

// version will be set by main
var version = "dev"

// globalFlags are the persistent flags shared by every command.
var globalFlags struct {
	configFile  string
	logLevel    string
	logFormat   string
	label       string
	timezone    string
	calendarID  string
	credentials string
	token       string
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// Execute is the main entry point for the CLI application
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "coachcal version %s\n" .Version}}`)

	// If no subcommand is provided, run the scan command by default
	if len(os.Args) == 1 {
		os.Args = append(os.Args, "scan")
	}

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	defaults := config.Default()

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&globalFlags.configFile, "config", "coachcal.yaml", "Path to the YAML config file (ignored when missing)")
	flags.StringVar(&globalFlags.logLevel, "log-level", defaults.Log.Level, "Log level: debug, info, warn, error")
	flags.StringVar(&globalFlags.logFormat, "log-format", defaults.Log.Format, "Log format: text or json")
	flags.StringVar(&globalFlags.label, "label", defaults.Mail.Label, "Gmail label holding the invitations")
	flags.StringVar(&globalFlags.timezone, "timezone", defaults.Calendar.TimeZone, "IANA timezone for parsed dates and created events")
	flags.StringVar(&globalFlags.calendarID, "calendar", defaults.Calendar.ID, "Calendar that receives the events")
	flags.StringVar(&globalFlags.credentials, "credentials", defaults.Auth.CredentialsFile, "OAuth client secret file downloaded from the Google Cloud console")
	flags.StringVar(&globalFlags.token, "token", defaults.Auth.TokenFile, "File the OAuth token is stored in")

	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newWatchCmd())
	rootCmd.AddCommand(newAuthCmd())
	rootCmd.AddCommand(newVersionCmd())
}

// loadApplication loads the layered configuration, applies the flags the
// user set explicitly and installs the logger.
func loadApplication(cmd *cobra.Command) (config.Application, *slog.Logger, error) {
	app, err := config.Load(globalFlags.configFile)
	if err != nil {
		return config.Application{}, nil, err
	}

	applyFlagOverrides(cmd, &app)

	if err := app.Validate(); err != nil {
		return config.Application{}, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.Setup(cmd.ErrOrStderr(), app.Log.Level, app.Log.Format)
	if err != nil {
		return config.Application{}, nil, err
	}

	return app, logger, nil
}

// applyFlagOverrides copies explicitly set flags into app. Flags left at their
// defaults do not mask values from the config file or the environment.
func applyFlagOverrides(cmd *cobra.Command, app *config.Application) {
	overrides := []struct {
		flag   string
		value  string
		target *string
	}{
		{"log-level", globalFlags.logLevel, &app.Log.Level},
		{"log-format", globalFlags.logFormat, &app.Log.Format},
		{"label", globalFlags.label, &app.Mail.Label},
		{"timezone", globalFlags.timezone, &app.Calendar.TimeZone},
		{"calendar", globalFlags.calendarID, &app.Calendar.ID},
		{"credentials", globalFlags.credentials, &app.Auth.CredentialsFile},
		{"token", globalFlags.token, &app.Auth.TokenFile},
	}

	for _, o := range overrides {
		if cmd.Flags().Changed(o.flag) {
			*o.target = o.value
		}
	}
}
