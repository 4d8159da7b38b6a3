package main

import (
	"fmt"
	"os"

	"github.com/atelierops/maillink-go/cmd"
	"github.com/atelierops/maillink-go/internal/conf"
	"github.com/atelierops/maillink-go/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	logging.Init(logging.ParseLevel(settings.Main.Log.Level))

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
