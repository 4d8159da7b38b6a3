// Package process implements the batch processing subcommand.
package process

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/linker"
	"github.com/atelierops/maillink-go/internal/observability"
)

// Command creates the process subcommand
func Command(settings *conf.Settings) *cobra.Command {
	var sinceStr string

	processCmd := &cobra.Command{
		Use:   "process",
		Short: "Match and commit links for ingested messages",
		Long: "Runs the matcher and link committer over messages ingested since " +
			"the given time, or since the last link activity when no time is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			var since time.Time
			if sinceStr != "" {
				parsed, err := parseSince(sinceStr)
				if err != nil {
					return err
				}
				since = parsed
			}

			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database backend enabled")
			}
			if err := store.Open(); err != nil {
				return fmt.Errorf("opening datastore: %w", err)
			}
			defer func() { _ = store.Close() }()

			metrics, err := observability.NewMetrics()
			if err != nil {
				return fmt.Errorf("initializing metrics: %w", err)
			}

			// Interrupt cleanly between messages; per-message transactions
			// mean no partial state is left behind.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			engine := linker.New(store, settings, metrics.Linker)
			report, err := engine.ProcessSince(ctx, since)
			if report != nil {
				fmt.Print(report.Render())
			}
			if err != nil {
				return fmt.Errorf("batch interrupted: %w", err)
			}
			if report != nil && len(report.FailedPairs) > 0 {
				return fmt.Errorf("%d candidates failed to persist, re-run to retry", len(report.FailedPairs))
			}
			return nil
		},
	}

	processCmd.Flags().StringVar(&sinceStr, "since", "", "Process messages sent at or after this time (RFC 3339 or YYYY-MM-DD)")

	return processCmd
}

// parseSince accepts RFC 3339 timestamps or bare ISO dates.
func parseSince(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid --since value %q, want RFC 3339 or YYYY-MM-DD", s)
}
