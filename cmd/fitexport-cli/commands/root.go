package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "fitexport-cli",
	Short: "fitexport-cli exports diaries, measurements and foods from your fitness account.",
}

var configPath *string
var sessionsPath *string
var instrumentDir *string

func init() {
	configPath = rootCmd.PersistentFlags().String("config", "config.json5", "Path to the credentials config.")
	sessionsPath = rootCmd.PersistentFlags().String("sessions", "sessions.db", "The database to persist login sessions to.")
	instrumentDir = rootCmd.PersistentFlags().String("instrument-http", "", "When set, dump every request/response under this directory.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
