package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Logs in with the configured credentials and persists the session.",
	Run: func(cmd *cobra.Command, args []string) {
		client := createClient(cmd.Context())
		fmt.Printf("logged in as %s\n", client.EffectiveUsername())
	},
}
