package memory

import (
	"context"
	"sync"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]*domain.User
}

func NewUserRepository() *UserRepository {
	return &UserRepository{nextID: 1, users: make(map[int64]*domain.User)}
}

func (m *UserRepository) Upsert(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.users[user.TelegramID]; ok {
		user.ID = existing.ID
	} else {
		user.ID = m.nextID
		m.nextID++
	}
	cp := *user
	m.users[user.TelegramID] = &cp
	return nil
}

func (m *UserRepository) GetByTelegramID(_ context.Context, telegramID int64) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[telegramID]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}
