package cmd

import (
	"github.com/spf13/cobra"

	"github.com/atelierops/maillink-go/cmd/patterns"
	"github.com/atelierops/maillink-go/cmd/process"
	"github.com/atelierops/maillink-go/cmd/review"
	"github.com/atelierops/maillink-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "maillink",
		Short: "Email-to-entity linking engine CLI",
	}

	setupFlags(rootCmd, settings)

	subcommands := []*cobra.Command{
		process.Command(settings),
		review.Command(settings),
		patterns.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines global flags shared by all subcommands.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
	rootCmd.PersistentFlags().Float64Var(&settings.Linker.HighThreshold, "high", settings.Linker.HighThreshold, "Confidence at or above which links are committed directly")
	rootCmd.PersistentFlags().Float64Var(&settings.Linker.LowThreshold, "low", settings.Linker.LowThreshold, "Confidence below which candidates are dropped as noise")
}
