// Package patterns implements the pattern library inspection subcommand.
package patterns

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/datastore"
)

// Command creates the patterns subcommand
func Command(settings *conf.Settings) *cobra.Command {
	patternsCmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect the learned pattern library",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := datastore.New(settings)
			if store == nil {
				return fmt.Errorf("no database backend enabled")
			}
			if err := store.Open(); err != nil {
				return fmt.Errorf("opening datastore: %w", err)
			}
			defer func() { _ = store.Close() }()

			patterns, err := store.GetActivePatterns()
			if err != nil {
				return err
			}
			if len(patterns) == 0 {
				fmt.Println("no learned patterns")
				return nil
			}

			fmt.Printf("%-6s %-16s %-30s %-8s %-5s %-5s %-5s  %s\n",
				"ID", "KIND", "VALUE", "ENTITY", "CONF", "USED", "REJ", "LAST USED")
			for i := range patterns {
				p := &patterns[i]
				lastUsed := "-"
				if !p.LastUsedAt.IsZero() {
					lastUsed = p.LastUsedAt.Format("2006-01-02 15:04")
				}
				fmt.Printf("%-6d %-16s %-30s %-8d %.2f  %-5d %-5d %s\n",
					p.ID, p.Kind, p.Value, p.TargetEntityID,
					p.Confidence, p.TimesUsed, p.TimesRejected, lastUsed)
			}
			return nil
		},
	}

	return patternsCmd
}
