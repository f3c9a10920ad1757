//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/domain/model"
	"telegram-upi-lookup/internal/usecase"
)

func newLookupFixtures() (*MockResolver, *MockIFSC) {
	res := &MockResolver{Handles: map[string]model.BankHandle{
		"oksbi": {Handle: "oksbi", Bank: "State Bank of India", IFSC: "SBIN0000001"},
	}}
	ifsc := &MockIFSC{Details: map[string]*model.IFSCDetails{
		"SBIN0000001": {IFSC: "SBIN0000001", Bank: "State Bank of India", Branch: "Mumbai Main"},
	}}
	return res, ifsc
}

func TestLookupUseCase_LookupUPI(t *testing.T) {
	ctx := context.Background()

	t.Run("should resolve handle and attach branch details", func(t *testing.T) {
		res, ifsc := newLookupFixtures()
		uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

		got, err := uc.LookupUPI(ctx, "  Alice.K@OKSBI ")
		if err != nil {
			t.Fatalf("LookupUPI failed: %v", err)
		}
		if got.Address.String() != "alice.k@oksbi" {
			t.Errorf("address not normalized: %s", got.Address)
		}
		if got.Handle.Bank != "State Bank of India" || got.Details == nil || got.Details.Branch != "Mumbai Main" {
			t.Errorf("unexpected result %+v", got)
		}
		if usecase.UPIOutcome(got) != model.OutcomeFound {
			t.Errorf("expected found outcome")
		}
	})

	t.Run("should degrade when branch lookup fails", func(t *testing.T) {
		res, ifsc := newLookupFixtures()
		ifsc.Err = fmt.Errorf("timeout: %w", domain.ErrUpstream)
		uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

		got, err := uc.LookupUPI(ctx, "bob@oksbi")
		if err != nil {
			t.Fatalf("expected degraded success, got %v", err)
		}
		if got.Details != nil || got.Handle.IFSC != "SBIN0000001" {
			t.Errorf("unexpected degraded result %+v", got)
		}
		if usecase.UPIOutcome(got) != model.OutcomePartial {
			t.Errorf("expected partial outcome")
		}
	})

	t.Run("should reject malformed address without calling upstreams", func(t *testing.T) {
		res, ifsc := newLookupFixtures()
		uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

		for _, raw := range []string{"", "no-at-sign", "a@oksbi", "bob@ok5bi", "bob@"} {
			if _, err := uc.LookupUPI(ctx, raw); !errors.Is(err, domain.ErrInvalidUPI) {
				t.Errorf("%q: expected ErrInvalidUPI, got %v", raw, err)
			}
		}
		if len(ifsc.Calls) != 0 {
			t.Errorf("ifsc client should not be called, got %v", ifsc.Calls)
		}
	})

	t.Run("should report unknown handle", func(t *testing.T) {
		res, ifsc := newLookupFixtures()
		uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

		_, err := uc.LookupUPI(ctx, "carol@nowhere")
		if !errors.Is(err, domain.ErrUnknownHandle) {
			t.Fatalf("expected ErrUnknownHandle, got %v", err)
		}
		if usecase.Outcome(err) != model.OutcomeUnknown {
			t.Errorf("unexpected outcome %s", usecase.Outcome(err))
		}
	})

	t.Run("should treat resolver outage as unknown handle", func(t *testing.T) {
		res, ifsc := newLookupFixtures()
		res.Err = fmt.Errorf("dial: %w", domain.ErrUpstream)
		uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

		if _, err := uc.LookupUPI(ctx, "carol@oksbi"); !errors.Is(err, domain.ErrUnknownHandle) {
			t.Fatalf("expected ErrUnknownHandle, got %v", err)
		}
	})
}

func TestLookupUseCase_LookupIFSC(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		raw     string
		fetch   error
		wantErr error
		outcome string
	}{
		{name: "found, lower-case input", raw: "sbin0000001", outcome: model.OutcomeFound},
		{name: "invalid format", raw: "SBIN1000001", wantErr: domain.ErrInvalidIFSC, outcome: model.OutcomeInvalid},
		{name: "too short", raw: "SBIN000001", wantErr: domain.ErrInvalidIFSC, outcome: model.OutcomeInvalid},
		{name: "not found", raw: "HDFC0000999", wantErr: domain.ErrNotFound, outcome: model.OutcomeNotFound},
		{name: "upstream failure", raw: "SBIN0000001", fetch: domain.ErrUpstream, wantErr: domain.ErrUpstream, outcome: model.OutcomeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, ifsc := newLookupFixtures()
			ifsc.Err = tt.fetch
			uc := usecase.NewLookupUseCase(res, ifsc, newTestLogger())

			got, err := uc.LookupIFSC(ctx, tt.raw)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				if got.IFSC != "SBIN0000001" {
					t.Errorf("unexpected details %+v", got)
				}
			}
			if o := usecase.Outcome(err); o != tt.outcome {
				t.Errorf("expected outcome %s, got %s", tt.outcome, o)
			}
		})
	}
}
