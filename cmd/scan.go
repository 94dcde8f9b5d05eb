package cmd

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/coachcal/internal/pipeline"
)

// shutdownTimeout bounds how long cleanup may take after a signal.
const shutdownTimeout = 10 * time.Second

func newScanCmd() *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Add events for unread coaching invitations once",
		Long: `Scan the configured Gmail label for unread messages, create a calendar
event for every message a date can be found in and mark those messages read.

Messages without a recognizable date are left unread. With --dry-run nothing
is written: the events that would be created are only reported.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, logger, err := loadApplication(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			rt, err := newRuntime(ctx, app, logger, dryRun)
			if err != nil {
				return err
			}
			defer rt.Close()

			report, err := rt.runner.Run(ctx)
			if err != nil {
				return fmt.Errorf("scan failed: %w", err)
			}

			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Extract dates without creating events or marking messages read")

	return cmd
}

// printReport writes one line per message followed by the totals.
func printReport(w io.Writer, report *pipeline.Report) {
	for _, o := range report.Outcomes {
		switch {
		case o.Err != nil:
			fmt.Fprintf(w, "%-8s %s %q: %v\n", o.Status, o.MessageID, o.Subject, o.Err)
		case o.Start.IsZero():
			fmt.Fprintf(w, "%-8s %s %q\n", o.Status, o.MessageID, o.Subject)
		default:
			fmt.Fprintf(w, "%-8s %s %q at %s (%s)\n", o.Status, o.MessageID, o.Subject,
				o.Start.Format("Mon Jan 2, 2006 3:04PM MST"), o.Source)
		}
	}

	fmt.Fprintf(w, "Processed %d messages: %d created, %d skipped, %d failed",
		report.Scanned, report.Created, report.Skipped, report.Failed)
	if report.Planned > 0 {
		fmt.Fprintf(w, ", %d planned", report.Planned)
	}
	fmt.Fprintln(w)
}
