package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{
		db: db,
	}
}

// Upsert refreshes the name and username of a Telegram user on every command.
func (u *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	query := `INSERT INTO users (telegram_id, name, username)
						VALUES ($1, $2, $3)
						ON CONFLICT (telegram_id) DO UPDATE SET name = EXCLUDED.name, username = EXCLUDED.username
						RETURNING id`
	err := u.db.QueryRow(ctx, query, user.TelegramID, user.Name, user.Username).Scan(&user.ID)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

func (u *UserRepository) GetByTelegramID(ctx context.Context, telegramID int64) (*domain.User, error) {
	query := `SELECT id, telegram_id, name, username FROM users WHERE telegram_id = $1`
	user := &domain.User{}
	err := u.db.QueryRow(ctx, query, telegramID).Scan(&user.ID, &user.TelegramID, &user.Name, &user.Username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", telegramID, err)
	}
	return user, nil
}
