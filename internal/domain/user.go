package domain

import (
	"context"
	"errors"
)

var (
	ErrUniqueViolation = "23505"
	ErrUserNotFound    = errors.New("user not found")
)

type User struct {
	ID         int64  `db:"id"`
	TelegramID int64  `db:"telegram_id"`
	Name       string `db:"name"`
	Username   string `db:"username"`
}

// DisplayName prefers the first name, then the username.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	if u.Username != "" {
		return u.Username
	}
	return "User"
}

type UserRepository interface {
	Upsert(ctx context.Context, user *User) error
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
}

// NameResolver maps a requester id to a display name. Failures are per
// lookup and never fatal for a digest.
type NameResolver interface {
	DisplayName(ctx context.Context, requesterID string) (string, error)
}

type NameResolverFunc func(ctx context.Context, requesterID string) (string, error)

func (f NameResolverFunc) DisplayName(ctx context.Context, requesterID string) (string, error) {
	return f(ctx, requesterID)
}
