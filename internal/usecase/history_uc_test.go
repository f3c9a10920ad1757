//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/domain/ports/repository"
	"telegram-upi-lookup/internal/infra/worker"
	"telegram-upi-lookup/internal/usecase"
)

func TestHistoryUseCase(t *testing.T) {
	ctx := context.Background()

	t.Run("disabled without repository", func(t *testing.T) {
		uc := usecase.NewHistoryUseCase(nil, &inlinePool{}, newTestLogger())
		if uc.Enabled() {
			t.Fatal("expected disabled history")
		}
		uc.Record(ctx, model.NewLookupRecord(1, 1, model.LookupIFSC, "X", model.OutcomeFound))
		if _, err := uc.Recent(ctx, 5); !errors.Is(err, domain.ErrFeatureDisabled) {
			t.Errorf("expected ErrFeatureDisabled, got %v", err)
		}
	})

	t.Run("records through the pool and lists newest first", func(t *testing.T) {
		repo := &MockLookupLog{}
		uc := usecase.NewHistoryUseCase(repo, &inlinePool{}, newTestLogger())

		uc.Record(ctx, model.NewLookupRecord(1, 1, model.LookupIFSC, "SBIN0000001", model.OutcomeFound))
		uc.Record(ctx, model.NewLookupRecord(1, 1, model.LookupUPI, "a@ybl", model.OutcomePartial))

		recent, err := uc.Recent(ctx, 1)
		if err != nil {
			t.Fatalf("Recent failed: %v", err)
		}
		if len(recent) != 1 || recent[0].Query != "a@ybl" {
			t.Errorf("unexpected history %+v", recent)
		}
		if _, err := uc.Recent(ctx, 0); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Errorf("expected ErrInvalidArgument, got %v", err)
		}
	})

	t.Run("full pool drops the record", func(t *testing.T) {
		repo := &MockLookupLog{}
		uc := usecase.NewHistoryUseCase(repo, &inlinePool{full: true}, newTestLogger())
		uc.Record(ctx, model.NewLookupRecord(1, 1, model.LookupIFSC, "X", model.OutcomeFound))
		if len(repo.records) != 0 {
			t.Error("record should have been dropped")
		}
	})
}

// ctxCheckingLog rejects writes whose context is already done, like a real database.
type ctxCheckingLog struct{ MockLookupLog }

func (m *ctxCheckingLog) Save(ctx context.Context, tx repository.Tx, rec *model.LookupRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.MockLookupLog.Save(ctx, tx, rec)
}

func TestHistoryUseCase_RecordsSurviveShutdown(t *testing.T) {
	repo := &ctxCheckingLog{}
	pool := worker.NewPool(1, newTestLogger())
	uc := usecase.NewHistoryUseCase(repo, pool, newTestLogger())

	// queue before the workers exist, then shut down in the same order serve does
	ctx, cancel := context.WithCancel(context.Background())
	for _, q := range []string{"SBIN0000001", "HDFC0000001", "a@ybl"} {
		uc.Record(ctx, model.NewLookupRecord(1, 1, model.LookupIFSC, q, model.OutcomeFound))
	}
	pool.Start(ctx)
	cancel()
	pool.Stop()

	recent, err := uc.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent failed: %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("expected 3 records saved across shutdown, got %d", len(recent))
	}
}
