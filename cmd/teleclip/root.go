package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/teleclip/teleclip/internal/version"
)

func newRootCmd() *cobra.Command {
	configPath := os.Getenv("CONFIG_PATH")

	cmd := &cobra.Command{
		Use:   "teleclip",
		Short: "Teleclip indexes videos posted to a Telegram channel and serves them over HTTP",
	}
	cmd.Version = version.GetInfo()
	cmd.PersistentFlags().StringVar(&configPath, "config", configPath, "path to config.toml")

	cmd.AddCommand(
		newServeCmd(&configPath),
		newMigrateCmd(&configPath),
	)
	return cmd
}
