package telegram

import (
	"context"
	"strconv"
	"strings"
	"time"

	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/metrics"
	red "telegram-upi-lookup/internal/infra/redis"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.rateLimited(r.handleStartCommand),
		"help":  r.authorized(r.rateLimited(r.handleHelpCommand)),
		"upi":   r.authorized(r.rateLimited(r.handleUPICommand)),
		"ifsc":  r.authorized(r.rateLimited(r.handleIFSCCommand)),

		"adduser":    r.ownerOnly(r.handleAddUserCommand),
		"removeuser": r.ownerOnly(r.handleRemoveUserCommand),
		"listusers":  r.ownerOnly(r.handleListUsersCommand),
		"history":    r.ownerOnly(r.handleHistoryCommand),
	}
}

// authorized drops commands from callers who are neither allow-listed nor in an
// allowed chat. They get no reply at all.
func (r *RealTelegramBotAdapter) authorized(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		cmd := "/" + message.Command()
		if !r.facade.AccessUC.IsAuthorized(ctx, message.From.ID, message.Chat.ID) {
			metrics.IncAccessDecision(cmd, "unauthorized")
			logging.With(ctx, r.log).Debug().Msg("ignoring unauthorized caller")
			return nil
		}
		metrics.IncAccessDecision(cmd, "authorized")
		return next(ctx, message)
	}
}

// ownerOnly lets the owner through, tells other authorized callers no, and
// ignores everyone else.
func (r *RealTelegramBotAdapter) ownerOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		cmd := "/" + message.Command()
		if !r.facade.AccessUC.IsOwner(message.From.ID) {
			metrics.IncAccessDecision(cmd, "unauthorized")
			if r.facade.AccessUC.IsAuthorized(ctx, message.From.ID, message.Chat.ID) {
				return r.reply(ctx, message, r.facade.T.T("error_unauthorized"))
			}
			return nil
		}
		metrics.IncAccessDecision(cmd, "authorized")
		return next(ctx, message)
	}
}

// rateLimited applies the per-user, per-command window. Limiter errors fail open.
func (r *RealTelegramBotAdapter) rateLimited(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		if r.rateLimiter == nil || r.perMinute <= 0 {
			return next(ctx, message)
		}
		key := red.UserCommandKey(message.From.ID, "/"+message.Command())
		allowed, err := r.rateLimiter.Allow(ctx, key, r.perMinute, time.Minute)
		if err != nil {
			logging.With(ctx, r.log).Warn().Err(err).Msg("rate limit check failed")
			return next(ctx, message)
		}
		if !allowed {
			metrics.IncRateLimitTriggered()
			return r.reply(ctx, message, r.facade.T.T("error_rate_limited"))
		}
		return next(ctx, message)
	}
}

func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message, r.facade.HandleStart(ctx, message.From.ID, message.Chat.ID))
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message, r.facade.HandleHelp(ctx, message.From.ID))
}

func (r *RealTelegramBotAdapter) handleUPICommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleUPI(ctx, message.From.ID, message.Chat.ID, message.CommandArguments())
	return r.replyLogged(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleIFSCCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleIFSC(ctx, message.From.ID, message.Chat.ID, message.CommandArguments())
	return r.replyLogged(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleAddUserCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleAddUser(ctx, message.From.ID, message.CommandArguments())
	return r.replyLogged(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleRemoveUserCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleRemoveUser(ctx, message.CommandArguments())
	return r.replyLogged(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleListUsersCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, err := r.facade.HandleListUsers(ctx)
	return r.replyLogged(ctx, message, text, err)
}

func (r *RealTelegramBotAdapter) handleHistoryCommand(ctx context.Context, message *tgbotapi.Message) error {
	limit := 0
	if arg := strings.TrimSpace(message.CommandArguments()); arg != "" {
		if n, err := strconv.Atoi(arg); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}
	text, err := r.facade.HandleHistory(ctx, limit)
	return r.replyLogged(ctx, message, text, err)
}

// replyLogged logs a facade error and still sends the reply text it came with.
func (r *RealTelegramBotAdapter) replyLogged(ctx context.Context, message *tgbotapi.Message, text string, err error) error {
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("command failed")
	}
	return r.reply(ctx, message, text)
}
