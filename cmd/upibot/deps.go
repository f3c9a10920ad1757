package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/config"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/domain/ports/repository"
	"telegram-upi-lookup/internal/infra/adapters/lookup"
	pg "telegram-upi-lookup/internal/infra/db/postgres"
	red "telegram-upi-lookup/internal/infra/redis"
	"telegram-upi-lookup/internal/infra/store/filestore"
	"telegram-upi-lookup/internal/usecase"
)

// stores holds the persistence backends. lookupLog is nil unless Postgres is configured.
type stores struct {
	allowList repository.AllowListRepository
	lookupLog repository.LookupLogRepository
	close     func()
}

func openStores(ctx context.Context, cfg *config.Config, logger *zerolog.Logger) (*stores, error) {
	if cfg.Database.URL == "" {
		fs, err := filestore.Open(cfg.Storage.UsersFile)
		if err != nil {
			return nil, fmt.Errorf("allow-list file: %w", err)
		}
		logger.Info().Str("path", fs.Path()).Msg("using file allow-list, lookup history disabled")
		return &stores{allowList: fs, close: func() {}}, nil
	}

	pool, err := pg.NewPgxPool(ctx, cfg.Database.URL, cfg.Database.MaxConns)
	if err != nil {
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if err := pg.EnsureSchema(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	logger.Info().Msg("using postgres allow-list and lookup history")
	return &stores{
		allowList: pg.NewAllowListRepo(pool),
		lookupLog: pg.NewLookupLogRepo(pool),
		close:     pool.Close,
	}, nil
}

// openRedis returns nil when no Redis URL is configured.
func openRedis(ctx context.Context, cfg *config.Config) (*red.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	c, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	return c, nil
}

// buildLookup wires the handle resolvers and the IFSC client. rc may be nil.
func buildLookup(cfg *config.Config, rc *red.Client, logger *zerolog.Logger) (usecase.LookupUseCase, error) {
	handles := model.DefaultHandles()
	if cfg.Lookup.HandlesFile != "" {
		extra, err := lookup.LoadHandlesFile(cfg.Lookup.HandlesFile)
		if err != nil {
			return nil, fmt.Errorf("handles file: %w", err)
		}
		handles = append(handles, extra...)
	}
	static := lookup.NewStaticResolver(handles)
	logger.Debug().Int("handles", static.Len()).Msg("static handle table loaded")

	resolver := lookup.ChainResolver{static}
	if cfg.Lookup.UPIBaseURL != "" {
		resolver = append(resolver, lookup.NewRemoteResolver(cfg.Lookup.UPIBaseURL, cfg.Lookup.Timeout, logger))
	}

	var ifsc adapter.IFSCClient = lookup.NewRazorpayIFSCClient(cfg.Lookup.IFSCBaseURL, cfg.Lookup.Timeout, logger)
	if rc != nil {
		ifsc = red.NewIFSCCache(ifsc, rc, cfg.Redis.TTL, logger)
	}
	return usecase.NewLookupUseCase(resolver, ifsc, logger), nil
}
