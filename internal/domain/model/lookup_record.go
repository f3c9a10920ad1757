package model

import (
	"time"

	"github.com/oklog/ulid/v2"
)

type LookupKind string

const (
	LookupUPI  LookupKind = "upi"
	LookupIFSC LookupKind = "ifsc"
)

// Lookup outcomes, also used as metric label values.
const (
	OutcomeFound    = "found"
	OutcomePartial  = "partial"
	OutcomeNotFound = "not_found"
	OutcomeInvalid  = "invalid"
	OutcomeUnknown  = "unknown_handle"
	OutcomeError    = "error"
)

// LookupRecord is one row of lookup history.
type LookupRecord struct {
	ID        string     `json:"id"`
	UserID    int64      `json:"user_id"`
	ChatID    int64      `json:"chat_id"`
	Kind      LookupKind `json:"kind"`
	Query     string     `json:"query"`
	Outcome   string     `json:"outcome"`
	CreatedAt time.Time  `json:"created_at"`
}

func NewLookupRecord(userID, chatID int64, kind LookupKind, query, outcome string) *LookupRecord {
	now := time.Now().UTC()
	return &LookupRecord{
		ID:        ulid.Make().String(),
		UserID:    userID,
		ChatID:    chatID,
		Kind:      kind,
		Query:     query,
		Outcome:   outcome,
		CreatedAt: now,
	}
}
