package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login [token]",
	Short: "Store the API token",
	Long:  "Save the server token locally and verify it against the auth endpoint",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		token := args[0]
		a := loadApp()
		defer a.Close()
		deps := a.Deps()

		if err := deps.Store.SetSetting("token", token); err != nil {
			cobra.CheckErr(fmt.Errorf("could not save token: %w", err))
		}

		res := deps.Service.Me(context.Background())
		if err := res.Err(); err != nil {
			fmt.Printf("⚠️  Token saved, but verification failed: %s\n", err)
			return
		}

		fmt.Printf("✅ Logged in as %s\n", res.Data.Username)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
}
