package main

import (
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"telegram-upi-lookup/internal/config"
	"telegram-upi-lookup/internal/infra/logging"
)

type rootOptions struct {
	configPath string
	dev        bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:   "upibot",
		Short: "Telegram bot answering UPI handle and IFSC branch lookups",
		Long: `upibot runs a Telegram bot that resolves UPI addresses to their bank and
looks up IFSC branch details. The same binary manages the allow-list offline.`,
		SilenceUsage: true,
		Version:      version + " (" + commit + ")",
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "config.yaml", "path to YAML config file")
	cmd.PersistentFlags().BoolVar(&opts.dev, "dev", false, "developer mode (console logs, no redaction)")

	cmd.AddCommand(newServeCmd(opts), newUsersCmd(opts), newLookupCmd(opts))
	return cmd
}

// loadOffline reads the config without requiring a bot token and logs to stderr,
// keeping stdout for command output.
func loadOffline(cmd *cobra.Command, opts *rootOptions) (*config.Config, *zerolog.Logger, error) {
	cfg, err := config.Load(opts.configPath, opts.dev)
	if err != nil {
		return nil, nil, err
	}
	return cfg, logging.NewWithWriter(cmd.ErrOrStderr(), cfg.Log, cfg.Runtime.Dev), nil
}
