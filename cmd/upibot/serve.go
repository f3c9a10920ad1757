package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"telegram-upi-lookup/internal/application"
	"telegram-upi-lookup/internal/config"
	tele "telegram-upi-lookup/internal/infra/adapters/telegram"
	"telegram-upi-lookup/internal/infra/api"
	"telegram-upi-lookup/internal/infra/api/apiv1"
	"telegram-upi-lookup/internal/infra/i18n"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/metrics"
	red "telegram-upi-lookup/internal/infra/redis"
	"telegram-upi-lookup/internal/infra/sched"
	"telegram-upi-lookup/internal/infra/worker"
	"telegram-upi-lookup/internal/usecase"
)

const (
	historyWorkers  = 2
	shutdownTimeout = 10 * time.Second
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the Telegram bot and the HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, opts)
		},
	}
}

func serve(ctx context.Context, opts *rootOptions) error {
	cfg, err := config.LoadConfig(opts.configPath, opts.dev)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	metrics.MustRegister()
	metrics.SetBuildInfo(version, commit)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// ---- Storage ----
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer st.close()

	// ---- Redis (optional) ----
	rc, err := openRedis(ctx, cfg)
	if err != nil {
		return err
	}
	var limiter tele.RateLimiter
	if rc != nil {
		defer rc.Close()
		limiter = red.NewRateLimiter(rc)
		logger.Info().Int("per_minute", cfg.RateLimit.PerMinute).Msg("redis cache and rate limit enabled")
	}

	// ---- Use cases ----
	lookupUC, err := buildLookup(cfg, rc, logger)
	if err != nil {
		return err
	}
	pool := worker.NewPool(historyWorkers, logger)
	pool.Start(ctx)
	defer pool.Stop()

	accessUC := usecase.NewAccessUseCase(cfg.Bot.OwnerID, cfg.Bot.AllowedChats, st.allowList, logger)
	if err := accessUC.Sync(ctx); err != nil {
		logger.Warn().Err(err).Msg("could not read allow-list at startup")
	}
	historyUC := usecase.NewHistoryUseCase(st.lookupLog, pool, logger)

	tr := i18n.MustDefault()
	facade := application.NewBotFacade(lookupUC, accessUC, historyUC, tr, logger)

	// ---- Telegram ----
	bot, err := tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, limiter, cfg.RateLimit.PerMinute, logger)
	if err != nil {
		return fmt.Errorf("telegram: %w", err)
	}

	// ---- HTTP ----
	var webhook http.Handler
	if cfg.Bot.Mode == "webhook" {
		webhook = bot.WebhookHandler()
	}
	var admin api.Mounter
	if cfg.Admin.APIKey != "" {
		auth := apiv1.NewAuthManager(cfg.Admin.JWTSecret, cfg.Admin.TokenTTL)
		admin = apiv1.NewServer(accessUC, historyUC, auth, cfg.Admin.APIKey, bot, tr, logger)
	}
	srv := api.NewServer(cfg, webhook, admin, logger)

	errc := make(chan error, 2)
	go func() {
		if err := srv.Start(); err != nil {
			errc <- fmt.Errorf("http: %w", err)
		}
	}()
	go func() {
		if err := bot.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			errc <- fmt.Errorf("telegram: %w", err)
		}
	}()

	// ---- Keep-alive ----
	if cfg.KeepAlive.URL != "" {
		ka := sched.NewKeepAliveWorker(cfg.KeepAlive.URL, cfg.KeepAlive.Interval, logger)
		go func() { _ = ka.Run(ctx) }()
	}

	logger.Info().Str("mode", cfg.Bot.Mode).Str("version", version).Msg("bot started")

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info().Msg("shutdown requested")
	case runErr = <-errc:
		logger.Error().Err(runErr).Msg("component failed, shutting down")
	}
	cancel()

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("http shutdown")
	}
	return runErr
}
