package usecase

import (
	"context"
	"errors"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
	"telegram-upi-lookup/internal/infra/logging"
	"telegram-upi-lookup/internal/infra/metrics"

	"github.com/rs/zerolog"
)

var _ AccessUseCase = (*accessUC)(nil)

// AccessUseCase decides who may talk to the bot and manages the allow-list.
type AccessUseCase interface {
	IsAuthorized(ctx context.Context, userID, chatID int64) bool
	IsOwner(userID int64) bool
	Grant(ctx context.Context, by, userID int64) error
	Revoke(ctx context.Context, userID int64) error
	List(ctx context.Context) ([]*model.AuthorizedUser, error)
}

type accessUC struct {
	ownerID int64
	chats   map[int64]struct{}
	users   repository.AllowListRepository
	log     *zerolog.Logger
}

func NewAccessUseCase(ownerID int64, allowedChats []int64, users repository.AllowListRepository, logger *zerolog.Logger) *accessUC {
	chats := make(map[int64]struct{}, len(allowedChats))
	for _, id := range allowedChats {
		chats[id] = struct{}{}
	}
	return &accessUC{
		ownerID: ownerID,
		chats:   chats,
		users:   users,
		log:     logger,
	}
}

func (u *accessUC) IsOwner(userID int64) bool { return userID != 0 && userID == u.ownerID }

// IsAuthorized is true for the owner, for anyone in an allowed chat and for
// allow-listed users. A store failure denies.
func (u *accessUC) IsAuthorized(ctx context.Context, userID, chatID int64) bool {
	if u.IsOwner(userID) {
		return true
	}
	if _, ok := u.chats[chatID]; ok {
		return true
	}
	ok, err := u.users.Contains(ctx, repository.NoTX, userID)
	if err != nil {
		logging.With(ctx, u.log).Error().Err(err).Int64("user_id", userID).Msg("allow-list lookup failed")
		return false
	}
	return ok
}

func (u *accessUC) Grant(ctx context.Context, by, userID int64) error {
	defer logging.TraceDuration(u.log, "AccessUC.Grant")()
	if u.IsOwner(userID) {
		return domain.ErrInvalidArgument
	}
	au, err := model.NewAuthorizedUser(userID, by)
	if err != nil {
		return err
	}
	if err := u.users.Add(ctx, repository.NoTX, au); err != nil {
		return err
	}
	logging.With(ctx, u.log).Info().Int64("user_id", userID).Int64("by", by).Msg("user granted")
	u.refreshGauge(ctx)
	return nil
}

func (u *accessUC) Revoke(ctx context.Context, userID int64) error {
	defer logging.TraceDuration(u.log, "AccessUC.Revoke")()
	if userID == 0 || u.IsOwner(userID) {
		return domain.ErrInvalidArgument
	}
	if err := u.users.Remove(ctx, repository.NoTX, userID); err != nil {
		return err
	}
	logging.With(ctx, u.log).Info().Int64("user_id", userID).Msg("user revoked")
	u.refreshGauge(ctx)
	return nil
}

func (u *accessUC) List(ctx context.Context) ([]*model.AuthorizedUser, error) {
	defer logging.TraceDuration(u.log, "AccessUC.List")()
	list, err := u.users.List(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	metrics.SetAllowListSize(len(list))
	return list, nil
}

// Sync publishes the current allow-list size; called once at startup.
func (u *accessUC) Sync(ctx context.Context) error {
	_, err := u.List(ctx)
	return err
}

func (u *accessUC) refreshGauge(ctx context.Context) {
	if _, err := u.List(ctx); err != nil && !errors.Is(err, context.Canceled) {
		u.log.Warn().Err(err).Msg("could not refresh allow-list gauge")
	}
}
