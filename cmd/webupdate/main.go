package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd *cobra.Command

func init() {
	rootCmd = &cobra.Command{
		Use:   "webupdate",
		Short: "Stamp and watch web build versions",
		Long: "webupdate stamps a version manifest into a site's build output and " +
			"runs a sidecar that notifies visitors and operators when a newer build ships.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Best-effort: a missing .env is the normal case.
			_ = godotenv.Load()
		},
	}

	initStampCmd()
	initWatchCmd()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
