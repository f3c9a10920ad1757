package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
)

var _ repository.LookupLogRepository = (*LookupLogRepo)(nil)

type LookupLogRepo struct {
	pool *pgxpool.Pool
}

func NewLookupLogRepo(pool *pgxpool.Pool) *LookupLogRepo {
	return &LookupLogRepo{pool: pool}
}

func (r *LookupLogRepo) Save(ctx context.Context, tx repository.Tx, rec *model.LookupRecord) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO lookup_log (id, user_id, chat_id, kind, query, outcome, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7);`
	if _, err := ex.Exec(ctx, q, rec.ID, rec.UserID, rec.ChatID, string(rec.Kind), rec.Query, rec.Outcome, rec.CreatedAt); err != nil {
		return fmt.Errorf("insert lookup record: %w", err)
	}
	return nil
}

func (r *LookupLogRepo) ListRecent(ctx context.Context, tx repository.Tx, limit int) ([]*model.LookupRecord, error) {
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT id, user_id, chat_id, kind, query, outcome, created_at
  FROM lookup_log
 ORDER BY created_at DESC, id DESC
 LIMIT $1;`
	rows, err := ex.Query(ctx, q, limit)
	if err != nil {
		return nil, fmt.Errorf("list lookup records: %w", err)
	}
	defer rows.Close()

	var out []*model.LookupRecord
	for rows.Next() {
		var (
			rec  model.LookupRecord
			kind string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.ChatID, &kind, &rec.Query, &rec.Outcome, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Kind = model.LookupKind(kind)
		out = append(out, &rec)
	}
	return out, rows.Err()
}
