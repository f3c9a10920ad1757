package model

import (
	"time"

	"telegram-upi-lookup/internal/domain"
)

// AuthorizedUser is an allow-list entry.
type AuthorizedUser struct {
	UserID  int64     `json:"user_id"`
	AddedBy int64     `json:"added_by,omitempty"`
	AddedAt time.Time `json:"added_at"`
}

func NewAuthorizedUser(userID, addedBy int64) (*AuthorizedUser, error) {
	if userID == 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &AuthorizedUser{UserID: userID, AddedBy: addedBy, AddedAt: time.Now().UTC()}, nil
}
