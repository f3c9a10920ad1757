package repository

import (
	"context"

	"telegram-upi-lookup/internal/domain/model"
)

// LookupLogRepository stores lookup history, newest first on read.
type LookupLogRepository interface {
	Save(ctx context.Context, tx Tx, rec *model.LookupRecord) error
	ListRecent(ctx context.Context, tx Tx, limit int) ([]*model.LookupRecord, error)
}
