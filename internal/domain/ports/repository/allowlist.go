package repository

import (
	"context"

	"telegram-upi-lookup/internal/domain/model"
)

// -----------------------------
// Allow-list
// -----------------------------

// AllowListRepository persists the set of Telegram user IDs allowed to use the bot.
// Add returns domain.ErrAlreadyExists for a duplicate; Remove returns
// domain.ErrNotFound when the ID is absent.
type AllowListRepository interface {
	Add(ctx context.Context, tx Tx, u *model.AuthorizedUser) error
	Remove(ctx context.Context, tx Tx, userID int64) error
	Contains(ctx context.Context, tx Tx, userID int64) (bool, error)
	List(ctx context.Context, tx Tx) ([]*model.AuthorizedUser, error)
}
