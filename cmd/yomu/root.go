package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/kerbaras/yomu/pkg/app"
	"github.com/kerbaras/yomu/pkg/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "yomu",
	Short: "A manga reader for your terminal",
	Long:  "Browse, read, and track your manga with a TUI, backed by a yomu server",
	Run: func(cmd *cobra.Command, args []string) {
		a := loadApp()
		if err := a.Run(); err != nil {
			cobra.CheckErr(err)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadApp() *app.App {
	cfg, err := config.Load(configPath)
	cobra.CheckErr(err)

	a, err := app.NewApp(cfg)
	cobra.CheckErr(err)
	return a
}

func truncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	if max <= 3 {
		return s[:max]
	}
	return s[:max-3] + "..."
}
