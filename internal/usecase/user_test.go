package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/repository/memory"
)

func TestUserUsecaseDisplayName(t *testing.T) {
	ctx := context.Background()
	fallbackCalls := 0
	fallback := domain.NameResolverFunc(func(_ context.Context, id string) (string, error) {
		fallbackCalls++
		return "remote-" + id, nil
	})
	uc := NewUserUsecase(memory.NewUserRepository(), fallback)

	if err := uc.Remember(ctx, &domain.User{TelegramID: 10, Username: "ann_k"}); err != nil {
		t.Fatal(err)
	}
	if name, err := uc.DisplayName(ctx, "10"); err != nil || name != "ann_k" {
		t.Errorf("known user = %q, %v", name, err)
	}
	if fallbackCalls != 0 {
		t.Error("fallback used for a known user")
	}
	if name, _ := uc.DisplayName(ctx, "11"); name != "remote-11" {
		t.Errorf("unknown user = %q", name)
	}
	if name, _ := uc.DisplayName(ctx, "web-client"); name != "remote-web-client" {
		t.Errorf("non-telegram requester = %q", name)
	}
}

func TestUserUsecaseWithoutFallback(t *testing.T) {
	uc := NewUserUsecase(memory.NewUserRepository(), nil)
	if _, err := uc.DisplayName(context.Background(), "5"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Errorf("got %v, want ErrUserNotFound", err)
	}
	if err := uc.Remember(context.Background(), &domain.User{}); !errors.Is(err, ErrTelegramIDEmpty) {
		t.Errorf("remember without id: %v", err)
	}
}
