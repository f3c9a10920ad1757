package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
)

var _ repository.AllowListRepository = (*AllowListRepo)(nil)

type AllowListRepo struct {
	pool *pgxpool.Pool
}

func NewAllowListRepo(pool *pgxpool.Pool) *AllowListRepo {
	return &AllowListRepo{pool: pool}
}

func (r *AllowListRepo) Add(ctx context.Context, tx repository.Tx, u *model.AuthorizedUser) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO authorized_users (user_id, added_by, added_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO NOTHING;`
	tag, err := ex.Exec(ctx, q, u.UserID, u.AddedBy, u.AddedAt)
	if err != nil {
		return fmt.Errorf("insert authorized user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrAlreadyExists
	}
	return nil
}

func (r *AllowListRepo) Remove(ctx context.Context, tx repository.Tx, userID int64) error {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := ex.Exec(ctx, `DELETE FROM authorized_users WHERE user_id=$1;`, userID)
	if err != nil {
		return fmt.Errorf("delete authorized user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *AllowListRepo) Contains(ctx context.Context, tx repository.Tx, userID int64) (bool, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return false, err
	}
	var ok bool
	if err := ex.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM authorized_users WHERE user_id=$1);`, userID).Scan(&ok); err != nil {
		return false, fmt.Errorf("check authorized user: %w", err)
	}
	return ok, nil
}

func (r *AllowListRepo) List(ctx context.Context, tx repository.Tx) ([]*model.AuthorizedUser, error) {
	ex, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := ex.Query(ctx, `SELECT user_id, added_by, added_at FROM authorized_users ORDER BY user_id;`)
	if err != nil {
		return nil, fmt.Errorf("list authorized users: %w", err)
	}
	defer rows.Close()

	var out []*model.AuthorizedUser
	for rows.Next() {
		var u model.AuthorizedUser
		if err := rows.Scan(&u.UserID, &u.AddedBy, &u.AddedAt); err != nil {
			return nil, err
		}
		out = append(out, &u)
	}
	return out, rows.Err()
}

// ImportAllowList copies users into authorized_users in a single transaction.
// Users already present are skipped and do not count towards the returned total.
func ImportAllowList(ctx context.Context, tm repository.TransactionManager, repo *AllowListRepo, users []*model.AuthorizedUser) (int, error) {
	added := 0
	err := tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		added = 0
		for _, u := range users {
			err := repo.Add(ctx, tx, u)
			switch {
			case errors.Is(err, domain.ErrAlreadyExists):
				continue
			case err != nil:
				return fmt.Errorf("import user %d: %w", u.UserID, err)
			}
			added++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return added, nil
}
