package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"telegram-upi-lookup/internal/domain"
	pg "telegram-upi-lookup/internal/infra/db/postgres"
	"telegram-upi-lookup/internal/infra/store/filestore"
	"telegram-upi-lookup/internal/usecase"
)

func newUsersCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage the allow-list against the configured store",
		Long: `Manage the allow-list against the configured store.

With the file store a running serve re-reads the file, so changes made here
take effect without a restart.`,
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "Print allowed user IDs",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withAccess(cmd, opts, func(ctx context.Context, access usecase.AccessUseCase, _ int64) error {
					users, err := access.List(ctx)
					if err != nil {
						return err
					}
					out := cmd.OutOrStdout()
					for _, u := range users {
						fmt.Fprintln(out, u.UserID)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "%d user(s)\n", len(users))
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "add <user-id>",
			Short: "Allow a Telegram user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return withAccess(cmd, opts, func(ctx context.Context, access usecase.AccessUseCase, owner int64) error {
					err := access.Grant(ctx, owner, id)
					switch {
					case errors.Is(err, domain.ErrAlreadyExists):
						fmt.Fprintf(cmd.OutOrStdout(), "%d is already allowed\n", id)
						return nil
					case errors.Is(err, domain.ErrInvalidArgument):
						return fmt.Errorf("%d cannot be added (owner or invalid id)", id)
					case err != nil:
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "added %d\n", id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "remove <user-id>",
			Short: "Revoke a Telegram user",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				id, err := parseID(args[0])
				if err != nil {
					return err
				}
				return withAccess(cmd, opts, func(ctx context.Context, access usecase.AccessUseCase, _ int64) error {
					err := access.Revoke(ctx, id)
					switch {
					case errors.Is(err, domain.ErrNotFound):
						return fmt.Errorf("%d is not on the allow-list", id)
					case errors.Is(err, domain.ErrInvalidArgument):
						return fmt.Errorf("%d cannot be removed", id)
					case err != nil:
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "removed %d\n", id)
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   "import <users.json>",
			Short: "Copy a JSON allow-list file into Postgres",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return importUsers(cmd, opts, args[0])
			},
		},
	)
	return cmd
}

func importUsers(cmd *cobra.Command, opts *rootOptions, path string) error {
	cfg, logger, err := loadOffline(cmd, opts)
	if err != nil {
		return err
	}
	if cfg.Database.URL == "" {
		return errors.New("import needs database.url (or DATABASE_URL)")
	}
	ctx := cmd.Context()

	src, err := filestore.Open(path)
	if err != nil {
		return err
	}
	users, err := src.List(ctx, nil)
	if err != nil {
		return err
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		return fmt.Errorf("postgres schema: %w", err)
	}

	added, err := pg.ImportAllowList(ctx, pg.NewTxManager(pool), pg.NewAllowListRepo(pool), users)
	if err != nil {
		return err
	}
	logger.Info().Str("file", path).Int("read", len(users)).Int("added", added).Msg("allow-list imported")
	fmt.Fprintf(cmd.OutOrStdout(), "imported %d of %d user(s)\n", added, len(users))
	return nil
}

func withAccess(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, access usecase.AccessUseCase, owner int64) error) error {
	cfg, logger, err := loadOffline(cmd, opts)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	access := usecase.NewAccessUseCase(cfg.Bot.OwnerID, cfg.Bot.AllowedChats, st.allowList, logger)
	return fn(ctx, access, cfg.Bot.OwnerID)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid user id %q", s)
	}
	return id, nil
}
