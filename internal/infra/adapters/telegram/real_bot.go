package telegram

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"telegram-upi-lookup/internal/application"
	"telegram-upi-lookup/internal/config"
	"telegram-upi-lookup/internal/domain/ports/adapter"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/metrics"
)

var _ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)

// BotAPI is the subset of *tgbotapi.BotAPI the adapter uses.
type BotAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	HandleUpdate(r *http.Request) (*tgbotapi.Update, error)
}

// RateLimiter is satisfied by *redis.RateLimiter.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RealTelegramBotAdapter receives updates (long polling or webhook) and delegates to BotFacade.
type RealTelegramBotAdapter struct {
	bot         BotAPI
	cfg         *config.BotConfig
	facade      *application.BotFacade
	rateLimiter RateLimiter
	perMinute   int
	log         *zerolog.Logger

	updateWorkers int
	updates       chan tgbotapi.Update
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, facade *application.BotFacade, rateLimiter RateLimiter, perMinute int, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, err
	}
	logger.Info().Str("username", bot.Self.UserName).Str("token", logging.Redact(cfg.Token, false)).Msg("authorized on telegram")
	return newAdapter(bot, cfg, facade, rateLimiter, perMinute, logger)
}

func newAdapter(bot BotAPI, cfg *config.BotConfig, facade *application.BotFacade, rateLimiter RateLimiter, perMinute int, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = 5
	}
	l := logger.With().Str("component", "TelegramBot").Logger()
	return &RealTelegramBotAdapter{
		bot:           bot,
		cfg:           cfg,
		facade:        facade,
		rateLimiter:   rateLimiter,
		perMinute:     perMinute,
		log:           &l,
		updateWorkers: workers,
		updates:       make(chan tgbotapi.Update, 100),
	}, nil
}

// Run receives updates in the configured mode until ctx is cancelled.
// In webhook mode the updates arrive through WebhookHandler.
func (r *RealTelegramBotAdapter) Run(ctx context.Context) error {
	if err := r.RegisterCommands(ctx); err != nil {
		r.log.Warn().Err(err).Msg("failed to register bot commands")
	}
	if r.cfg.Mode == "webhook" {
		return r.StartWebhook(ctx)
	}
	return r.StartPolling(ctx)
}

// startWorkers fans updates from r.updates out to the worker goroutines.
func (r *RealTelegramBotAdapter) startWorkers(ctx context.Context, mode string) *sync.WaitGroup {
	var wg sync.WaitGroup
	for i := 0; i < r.updateWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case up := <-r.updates:
					metrics.IncTelegramUpdate(mode)
					if err := r.handleUpdate(ctx, up); err != nil {
						r.log.Error().Err(err).Int("worker", id).Int("update_id", up.UpdateID).Msg("update handling failed")
					}
				}
			}
		}(i)
	}
	return &wg
}

func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	// getUpdates is rejected while a webhook is registered
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		r.log.Warn().Err(err).Msg("could not clear webhook before polling")
	}

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	wg := r.startWorkers(ctx, "polling")
	r.log.Info().Int("workers", r.updateWorkers).Msg("polling for updates")

	for {
		select {
		case <-ctx.Done():
			r.bot.StopReceivingUpdates()
			wg.Wait()
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				cancel()
				continue
			}
			select {
			case r.updates <- up:
			case <-ctx.Done():
			}
		}
	}
}

// StartWebhook drops any previous webhook together with its pending updates,
// registers the configured endpoint and then processes updates handed over by WebhookHandler.
func (r *RealTelegramBotAdapter) StartWebhook(ctx context.Context) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true}); err != nil {
		return err
	}
	endpoint := r.cfg.WebhookEndpoint()
	wh, err := tgbotapi.NewWebhook(endpoint)
	if err != nil {
		return err
	}
	if _, err := r.bot.Request(wh); err != nil {
		return err
	}
	r.log.Info().Str("endpoint", endpoint).Msg("webhook registered")

	wg := r.startWorkers(ctx, "webhook")
	<-ctx.Done()
	wg.Wait()
	return ctx.Err()
}

// WebhookHandler decodes a Telegram update and queues it for the workers.
func (r *RealTelegramBotAdapter) WebhookHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		up, err := r.bot.HandleUpdate(req)
		if err != nil {
			r.log.Warn().Err(err).Msg("bad webhook payload")
			http.Error(w, "bad update", http.StatusBadRequest)
			return
		}
		select {
		case r.updates <- *up:
			_, _ = w.Write([]byte("OK"))
		case <-req.Context().Done():
			http.Error(w, "busy", http.StatusServiceUnavailable)
		}
	})
}

// RegisterCommands publishes the public command list shown in Telegram clients.
func (r *RealTelegramBotAdapter) RegisterCommands(_ context.Context) error {
	cfg := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "upi", Description: "Bank and branch behind a UPI ID"},
		tgbotapi.BotCommand{Command: "ifsc", Description: "Branch details for an IFSC code"},
		tgbotapi.BotCommand{Command: "help", Description: "List commands"},
	)
	_, err := r.bot.Request(cfg)
	return err
}

// SendMessage sends plain text to a chat.
func (r *RealTelegramBotAdapter) SendMessage(ctx context.Context, chatID int64, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(chatID, text)
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, m *tgbotapi.Message, text string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	msg := tgbotapi.NewMessage(m.Chat.ID, text)
	msg.ReplyToMessageID = m.MessageID
	_, err := r.bot.Send(msg)
	return err
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	m := update.Message
	if m == nil || m.From == nil || m.Chat == nil || !m.IsCommand() {
		return nil
	}

	command := m.Command()
	handler, ok := r.commandRoutes()[command]
	if !ok {
		return nil
	}

	ctx = logging.WithTraceID(ctx, uuid.NewString())
	ctx = logging.WithTgID(ctx, m.From.ID)
	ctx = logging.WithChatID(ctx, m.Chat.ID)
	ctx = logging.WithCommand(ctx, "/"+command)
	metrics.IncTelegramCommand("/" + command)

	return handler(ctx, m)
}
