package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"telegram-upi-lookup/internal/application"
	"telegram-upi-lookup/internal/infra/i18n"
)

func newLookupCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Run a lookup from the command line, formatted like the bot reply",
	}

	run := func(handle func(ctx context.Context, f *application.BotFacade, arg string) (string, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadOffline(cmd, opts)
			if err != nil {
				return err
			}
			ctx := cmd.Context()

			rc, err := openRedis(ctx, cfg)
			if err != nil {
				logger.Warn().Err(err).Msg("continuing without cache")
			}
			if rc != nil {
				defer rc.Close()
			}
			lookupUC, err := buildLookup(cfg, rc, logger)
			if err != nil {
				return err
			}
			// no access checks or history for local runs
			facade := application.NewBotFacade(lookupUC, nil, nil, i18n.MustDefault(), logger)

			reply, err := handle(ctx, facade, strings.Join(args, " "))
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return err
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ifsc <code>",
			Short: "Look up IFSC branch details",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, f *application.BotFacade, arg string) (string, error) {
				return f.HandleIFSC(ctx, 0, 0, arg)
			}),
		},
		&cobra.Command{
			Use:   "upi <name@handle>",
			Short: "Resolve a UPI address to its bank",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(ctx context.Context, f *application.BotFacade, arg string) (string, error) {
				return f.HandleUPI(ctx, 0, 0, arg)
			}),
		},
	)
	return cmd
}
