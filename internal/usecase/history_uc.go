package usecase

import (
	"context"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
	"telegram-upi-lookup/internal/infra/worker"

	"github.com/rs/zerolog"
)

var _ HistoryUseCase = (*historyUC)(nil)

// HistoryUseCase keeps a log of lookups. Without a backing repository it is a no-op
// and Recent reports domain.ErrFeatureDisabled.
type HistoryUseCase interface {
	Enabled() bool
	Record(ctx context.Context, rec *model.LookupRecord)
	Recent(ctx context.Context, limit int) ([]*model.LookupRecord, error)
}

// TaskSubmitter is satisfied by *worker.Pool.
type TaskSubmitter interface {
	Submit(task worker.Task) error
}

type historyUC struct {
	repo repository.LookupLogRepository
	pool TaskSubmitter
	log  *zerolog.Logger
}

// NewHistoryUseCase accepts a nil repo, which disables history.
func NewHistoryUseCase(repo repository.LookupLogRepository, pool TaskSubmitter, logger *zerolog.Logger) *historyUC {
	return &historyUC{repo: repo, pool: pool, log: logger}
}

func (u *historyUC) Enabled() bool { return u.repo != nil }

// Record queues rec for a background write. The write uses the pool's context,
// so it outlives the update that triggered it.
func (u *historyUC) Record(_ context.Context, rec *model.LookupRecord) {
	if u.repo == nil || rec == nil {
		return
	}
	err := u.pool.Submit(func(ctx context.Context) error {
		return u.repo.Save(ctx, repository.NoTX, rec)
	})
	if err != nil {
		u.log.Warn().Err(err).Str("kind", string(rec.Kind)).Msg("lookup record dropped")
	}
}

func (u *historyUC) Recent(ctx context.Context, limit int) ([]*model.LookupRecord, error) {
	if u.repo == nil {
		return nil, domain.ErrFeatureDisabled
	}
	if limit <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return u.repo.ListRecent(ctx, repository.NoTX, limit)
}
