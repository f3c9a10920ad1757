package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/usecase"

	"github.com/rs/zerolog"
)

// DefaultHistoryLimit is how many rows /history shows.
const DefaultHistoryLimit = 10

// BotFacade composes usecases into high-level bot commands.
// Facade methods return the reply text so the Telegram adapter just forwards it to the chat.
// A non-nil error is returned only for unexpected failures; the reply is still
// safe to send in that case.
type BotFacade struct {
	LookupUC  usecase.LookupUseCase
	AccessUC  usecase.AccessUseCase
	HistoryUC usecase.HistoryUseCase
	T         Translator
	log       *zerolog.Logger
}

func NewBotFacade(
	lookupUC usecase.LookupUseCase,
	accessUC usecase.AccessUseCase,
	historyUC usecase.HistoryUseCase,
	t Translator,
	logger *zerolog.Logger,
) *BotFacade {
	return &BotFacade{
		LookupUC:  lookupUC,
		AccessUC:  accessUC,
		HistoryUC: historyUC,
		T:         t,
		log:       logger,
	}
}

// HandleStart greets authorized callers; everyone else is told their user ID so
// they can ask the owner for access.
func (b *BotFacade) HandleStart(ctx context.Context, userID, chatID int64) string {
	if !b.AccessUC.IsAuthorized(ctx, userID, chatID) {
		return b.T.T("welcome_unauthorized", userID, userID)
	}
	return b.T.T("welcome_message")
}

func (b *BotFacade) HandleHelp(_ context.Context, userID int64) string {
	msg := b.T.T("help_message")
	if b.AccessUC.IsOwner(userID) {
		msg += b.T.T("help_owner")
	}
	return msg
}

func (b *BotFacade) HandleUPI(ctx context.Context, userID, chatID int64, args string) (string, error) {
	raw := firstArg(args)
	if raw == "" {
		return b.T.T("usage_upi"), nil
	}

	res, err := b.LookupUC.LookupUPI(ctx, raw)
	if err != nil {
		b.record(ctx, userID, chatID, model.LookupUPI, raw, usecase.Outcome(err))
		switch {
		case errors.Is(err, domain.ErrInvalidUPI):
			return b.T.T("error_invalid_upi"), nil
		case errors.Is(err, domain.ErrUnknownHandle):
			return b.T.T("error_unknown_handle"), nil
		default:
			return b.T.T("error_generic"), fmt.Errorf("lookup upi: %w", err)
		}
	}
	b.record(ctx, userID, chatID, model.LookupUPI, res.Address.String(), usecase.UPIOutcome(res))

	lines := []string{
		b.T.T("upi_header", res.Address.String()),
		b.T.T("upi_bank", res.Handle.Bank),
		b.T.T("upi_ifsc", res.Handle.IFSC),
	}
	if d := res.Details; d != nil {
		lines = appendIf(lines, b.T.T("ifsc_branch", d.Branch), d.Branch)
		lines = appendIf(lines, b.T.T("ifsc_city", d.City), d.City)
		lines = appendIf(lines, b.T.T("ifsc_state", d.State), d.State)
	}
	return strings.Join(lines, "\n"), nil
}

func (b *BotFacade) HandleIFSC(ctx context.Context, userID, chatID int64, args string) (string, error) {
	raw := firstArg(args)
	if raw == "" {
		return b.T.T("usage_ifsc"), nil
	}

	d, err := b.LookupUC.LookupIFSC(ctx, raw)
	b.record(ctx, userID, chatID, model.LookupIFSC, strings.ToUpper(raw), usecase.Outcome(err))
	if err != nil {
		code := strings.ToUpper(raw)
		switch {
		case errors.Is(err, domain.ErrInvalidIFSC):
			return b.T.T("error_invalid_ifsc"), nil
		case errors.Is(err, domain.ErrNotFound):
			return b.T.T("error_ifsc_not_found", code), nil
		case errors.Is(err, domain.ErrUpstream):
			return b.T.T("error_lookup_failed", code), nil
		default:
			return b.T.T("error_generic"), fmt.Errorf("lookup ifsc: %w", err)
		}
	}
	return b.formatIFSC(d), nil
}

func (b *BotFacade) formatIFSC(d *model.IFSCDetails) string {
	lines := []string{b.T.T("ifsc_header", d.IFSC)}
	lines = appendIf(lines, b.T.T("ifsc_bank", d.Bank), d.Bank)
	lines = appendIf(lines, b.T.T("ifsc_branch", d.Branch), d.Branch)
	lines = appendIf(lines, b.T.T("ifsc_address", d.Address), d.Address)
	lines = appendIf(lines, b.T.T("ifsc_city", d.City), d.City)
	lines = appendIf(lines, b.T.T("ifsc_district", d.District), d.District)
	lines = appendIf(lines, b.T.T("ifsc_state", d.State), d.State)
	lines = appendIf(lines, b.T.T("ifsc_micr", d.MICR), d.MICR)
	lines = appendIf(lines, b.T.T("ifsc_contact", d.Contact), d.Contact)
	services := strings.Join(d.Services(), ", ")
	lines = appendIf(lines, b.T.T("ifsc_services", services), services)
	lines = appendIf(lines, b.T.T("ifsc_swift", d.SWIFT), d.SWIFT)
	return strings.Join(lines, "\n")
}

func (b *BotFacade) HandleAddUser(ctx context.Context, ownerID int64, args string) (string, error) {
	id, ok := parseUserID(args)
	if !ok {
		if firstArg(args) == "" {
			return b.T.T("usage_adduser"), nil
		}
		return b.T.T("error_invalid_user_id"), nil
	}
	err := b.AccessUC.Grant(ctx, ownerID, id)
	switch {
	case err == nil:
		return b.T.T("user_added", id), nil
	case errors.Is(err, domain.ErrAlreadyExists):
		return b.T.T("user_already_added", id), nil
	case errors.Is(err, domain.ErrInvalidArgument):
		if b.AccessUC.IsOwner(id) {
			return b.T.T("user_is_owner"), nil
		}
		return b.T.T("error_invalid_user_id"), nil
	default:
		return b.T.T("error_generic"), fmt.Errorf("grant %d: %w", id, err)
	}
}

func (b *BotFacade) HandleRemoveUser(ctx context.Context, args string) (string, error) {
	id, ok := parseUserID(args)
	if !ok {
		if firstArg(args) == "" {
			return b.T.T("usage_removeuser"), nil
		}
		return b.T.T("error_invalid_user_id"), nil
	}
	err := b.AccessUC.Revoke(ctx, id)
	switch {
	case err == nil:
		return b.T.T("user_removed", id), nil
	case errors.Is(err, domain.ErrNotFound):
		return b.T.T("user_not_listed", id), nil
	case errors.Is(err, domain.ErrInvalidArgument):
		if b.AccessUC.IsOwner(id) {
			return b.T.T("user_is_owner"), nil
		}
		return b.T.T("error_invalid_user_id"), nil
	default:
		return b.T.T("error_generic"), fmt.Errorf("revoke %d: %w", id, err)
	}
}

func (b *BotFacade) HandleListUsers(ctx context.Context) (string, error) {
	users, err := b.AccessUC.List(ctx)
	if err != nil {
		return b.T.T("error_generic"), fmt.Errorf("list users: %w", err)
	}
	if len(users) == 0 {
		return b.T.T("users_empty"), nil
	}
	sb := strings.Builder{}
	sb.WriteString(b.T.T("users_header", len(users)))
	for _, u := range users {
		sb.WriteString("\n• ")
		sb.WriteString(strconv.FormatInt(u.UserID, 10))
	}
	return sb.String(), nil
}

func (b *BotFacade) HandleHistory(ctx context.Context, limit int) (string, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	recs, err := b.HistoryUC.Recent(ctx, limit)
	switch {
	case errors.Is(err, domain.ErrFeatureDisabled):
		return b.T.T("history_disabled"), nil
	case err != nil:
		return b.T.T("error_generic"), fmt.Errorf("recent lookups: %w", err)
	case len(recs) == 0:
		return b.T.T("history_empty"), nil
	}
	sb := strings.Builder{}
	sb.WriteString(b.T.T("history_header"))
	for _, r := range recs {
		sb.WriteString(fmt.Sprintf("\n• %s %s %s -> %s (user %d)",
			r.CreatedAt.UTC().Format(time.DateTime), r.Kind, r.Query, r.Outcome, r.UserID))
	}
	return sb.String(), nil
}

func (b *BotFacade) record(ctx context.Context, userID, chatID int64, kind model.LookupKind, query, outcome string) {
	if b.HistoryUC == nil || !b.HistoryUC.Enabled() {
		return
	}
	logging.With(ctx, b.log).Debug().Str("kind", string(kind)).Str("outcome", outcome).Msg("recording lookup")
	b.HistoryUC.Record(ctx, model.NewLookupRecord(userID, chatID, kind, query, outcome))
}

func firstArg(args string) string {
	f := strings.Fields(args)
	if len(f) == 0 {
		return ""
	}
	return f[0]
}

func parseUserID(args string) (int64, bool) {
	raw := firstArg(args)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func appendIf(lines []string, line, value string) []string {
	if strings.TrimSpace(value) == "" {
		return lines
	}
	return append(lines, line)
}
