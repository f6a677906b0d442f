package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

var (
	ErrTelegramIDEmpty = errors.New("telegram id must not be empty")
)

type UserUsecase struct {
	userRepo domain.UserRepository
	fallback domain.NameResolver
}

// NewUserUsecase resolves names from known users first and asks fallback
// (may be nil) for requesters that never wrote to the bot.
func NewUserUsecase(userRepo domain.UserRepository, fallback domain.NameResolver) *UserUsecase {
	return &UserUsecase{
		userRepo: userRepo,
		fallback: fallback,
	}
}

func (u *UserUsecase) Remember(ctx context.Context, user *domain.User) error {
	if user.TelegramID == 0 {
		return ErrTelegramIDEmpty
	}
	return u.userRepo.Upsert(ctx, user)
}

func (u *UserUsecase) GetUserByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	return u.userRepo.GetByTelegramID(ctx, telegramID)
}

func (u *UserUsecase) DisplayName(ctx context.Context, requesterID string) (string, error) {
	id, err := strconv.ParseInt(requesterID, 10, 64)
	if err == nil {
		user, err := u.userRepo.GetByTelegramID(ctx, id)
		if err == nil {
			return user.DisplayName(), nil
		}
		if !errors.Is(err, domain.ErrUserNotFound) {
			return "", err
		}
	}
	if u.fallback == nil {
		return "", fmt.Errorf("%w: %s", domain.ErrUserNotFound, requesterID)
	}
	return u.fallback.DisplayName(ctx, requesterID)
}
