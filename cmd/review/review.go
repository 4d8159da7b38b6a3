// Package review implements the suggestion review subcommands.
package review

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
	"github.com/atelierops/maillink-go/internal/errors"
	"github.com/atelierops/maillink-go/internal/linker"
)

// Command creates the review subcommand with list/approve/reject actions
func Command(settings *conf.Settings) *cobra.Command {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Review queued link suggestions",
	}

	reviewCmd.AddCommand(listCommand(settings))
	reviewCmd.AddCommand(approveCommand(settings))
	reviewCmd.AddCommand(rejectCommand(settings))

	return reviewCmd
}

func listCommand(settings *conf.Settings) *cobra.Command {
	var status string
	var entityID uint
	var limit int

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List suggestions, pending ones by default",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			suggestions, err := store.ListSuggestions(status, entityID, limit)
			if err != nil {
				return err
			}
			if len(suggestions) == 0 {
				fmt.Println("no suggestions")
				return nil
			}

			fmt.Printf("%-6s %-9s %-10s %-8s %-5s  %s\n",
				"ID", "MESSAGE", "ENTITY", "STATUS", "CONF", "RATIONALE")
			for i := range suggestions {
				s := &suggestions[i]
				fmt.Printf("%-6d %-9d %-10d %-8s %.2f  %s\n",
					s.ID, s.MessageID, s.EntityID, s.Status, s.Confidence, s.Rationale)
			}
			return nil
		},
	}

	listCmd.Flags().StringVar(&status, "status", datastore.SuggestionPending, "Filter by status (pending, approved, rejected, empty for all)")
	listCmd.Flags().UintVar(&entityID, "entity", 0, "Filter by entity id")
	listCmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows to show")

	return listCmd
}

func approveCommand(settings *conf.Settings) *cobra.Command {
	var resolvedBy string

	approveCmd := &cobra.Command{
		Use:   "approve <suggestion-id>",
		Short: "Approve a suggestion, committing the link and reinforcing its pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := linker.New(store, settings, nil)
			link, err := engine.ApproveSuggestion(id, resolvedBy)
			if err != nil {
				return describeResolveError(err)
			}
			fmt.Printf("linked message %d to entity %d at confidence %.2f\n",
				link.MessageID, link.EntityID, link.Confidence)
			return nil
		},
	}

	approveCmd.Flags().StringVar(&resolvedBy, "by", "", "Reviewer name recorded on the resolution")
	_ = approveCmd.MarkFlagRequired("by")

	return approveCmd
}

func rejectCommand(settings *conf.Settings) *cobra.Command {
	var resolvedBy, reason string

	rejectCmd := &cobra.Command{
		Use:   "reject <suggestion-id>",
		Short: "Reject a suggestion and penalize its pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := openStore(settings)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			engine := linker.New(store, settings, nil)
			if err := engine.RejectSuggestion(id, resolvedBy, reason); err != nil {
				return describeResolveError(err)
			}
			fmt.Printf("suggestion %d rejected\n", id)
			return nil
		},
	}

	rejectCmd.Flags().StringVar(&resolvedBy, "by", "", "Reviewer name recorded on the resolution")
	rejectCmd.Flags().StringVar(&reason, "reason", "", "Optional free-text reason, stored for audit")
	_ = rejectCmd.MarkFlagRequired("by")

	return rejectCmd
}

func openStore(settings *conf.Settings) (datastore.Interface, error) {
	store := datastore.New(settings)
	if store == nil {
		return nil, fmt.Errorf("no database backend enabled")
	}
	if err := store.Open(); err != nil {
		return nil, fmt.Errorf("opening datastore: %w", err)
	}
	return store, nil
}

func parseID(arg string) (uint, error) {
	id, err := strconv.ParseUint(arg, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid suggestion id %q", arg)
	}
	return uint(id), nil
}

// describeResolveError keeps recoverable review errors readable on the CLI.
func describeResolveError(err error) error {
	switch {
	case errors.IsNotFound(err):
		return fmt.Errorf("no such suggestion: %w", err)
	case errors.IsAlreadyResolved(err):
		return fmt.Errorf("suggestion was already resolved: %w", err)
	default:
		return err
	}
}
