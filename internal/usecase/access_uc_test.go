//go:build !integration

package usecase_test

import (
	"context"
	"errors"
	"testing"

	"telegram-upi-lookup/internal/domain"
	"telegram-upi-lookup/internal/usecase"
)

const (
	ownerID     int64 = 1000
	allowedChat int64 = -500
)

func TestAccessUseCase_IsAuthorized(t *testing.T) {
	ctx := context.Background()
	store := NewMockAllowList(42)
	uc := usecase.NewAccessUseCase(ownerID, []int64{allowedChat}, store, newTestLogger())

	tests := []struct {
		name   string
		user   int64
		chat   int64
		expect bool
	}{
		{"owner in private chat", ownerID, ownerID, true},
		{"stranger in allowed group", 7, allowedChat, true},
		{"allow-listed user anywhere", 42, 42, true},
		{"stranger in private chat", 7, 7, false},
		{"stranger in other group", 7, -9, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := uc.IsAuthorized(ctx, tt.user, tt.chat); got != tt.expect {
				t.Errorf("IsAuthorized(%d, %d) = %v, want %v", tt.user, tt.chat, got, tt.expect)
			}
		})
	}

	t.Run("store failure denies", func(t *testing.T) {
		store := NewMockAllowList(42)
		store.ContainsErr = errBoom
		uc := usecase.NewAccessUseCase(ownerID, nil, store, newTestLogger())
		if uc.IsAuthorized(ctx, 42, 42) {
			t.Error("expected deny on store error")
		}
	})
}

func TestAccessUseCase_GrantRevokeList(t *testing.T) {
	ctx := context.Background()
	store := NewMockAllowList()
	uc := usecase.NewAccessUseCase(ownerID, nil, store, newTestLogger())

	if err := uc.Grant(ctx, ownerID, 77); err != nil {
		t.Fatalf("Grant failed: %v", err)
	}
	if err := uc.Grant(ctx, ownerID, 77); !errors.Is(err, domain.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
	if err := uc.Grant(ctx, ownerID, ownerID); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("granting the owner should be rejected, got %v", err)
	}
	if err := uc.Grant(ctx, ownerID, 0); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("granting id 0 should be rejected, got %v", err)
	}

	list, err := uc.List(ctx)
	if err != nil || len(list) != 1 || list[0].UserID != 77 || list[0].AddedBy != ownerID {
		t.Fatalf("unexpected list %+v, %v", list, err)
	}

	if err := uc.Revoke(ctx, 77); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	if err := uc.Revoke(ctx, 77); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if err := uc.Revoke(ctx, ownerID); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Errorf("revoking the owner should be rejected, got %v", err)
	}
	if !uc.IsOwner(ownerID) || uc.IsOwner(77) {
		t.Error("IsOwner mismatch")
	}
}
