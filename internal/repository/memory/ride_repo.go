// Package memory keeps rides in process memory. It is used when no Postgres
// DSN is configured and in tests.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

type RideRepository struct {
	mu     sync.RWMutex
	nextID int64
	rides  map[int64]*domain.RideRequest
	now    func() time.Time
}

func NewRideRepository() *RideRepository {
	return &RideRepository{
		nextID: 1,
		rides:  make(map[int64]*domain.RideRequest),
		now:    time.Now,
	}
}

func (m *RideRepository) Create(_ context.Context, ride *domain.RideRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.hasPendingLocked(ride.RequesterID, ride.SlotTime) {
		return domain.ErrDuplicateBooking
	}
	ride.ID = m.nextID
	m.nextID++
	ride.Status = domain.StatusPending
	if ride.CreatedAt.IsZero() {
		ride.CreatedAt = m.now()
	}
	cp := *ride
	m.rides[ride.ID] = &cp
	return nil
}

func (m *RideRepository) GetByID(_ context.Context, id int64) (*domain.RideRequest, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rides[id]
	if !ok {
		return nil, domain.ErrRideNotFound
	}
	cp := *r
	return &cp, nil
}

func (m *RideRepository) HasPending(_ context.Context, requesterID string, slot domain.TimeOfDay) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hasPendingLocked(requesterID, slot), nil
}

func (m *RideRepository) hasPendingLocked(requesterID string, slot domain.TimeOfDay) bool {
	for _, r := range m.rides {
		if r.Status == domain.StatusPending && r.RequesterID == requesterID && r.SlotTime == slot {
			return true
		}
	}
	return false
}

func (m *RideRepository) ListPendingByRequester(_ context.Context, requesterID string) ([]*domain.RideRequest, error) {
	out := m.filter(func(r *domain.RideRequest) bool {
		return r.Status == domain.StatusPending && r.RequesterID == requesterID
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotTime != out[j].SlotTime {
			return out[i].SlotTime > out[j].SlotTime
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (m *RideRepository) ListCompletedByRequester(_ context.Context, requesterID string) ([]*domain.RideRequest, error) {
	out := m.filter(func(r *domain.RideRequest) bool {
		return r.Status == domain.StatusCompleted && r.RequesterID == requesterID
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *RideRepository) ListPendingUpTo(_ context.Context, slot domain.TimeOfDay) ([]*domain.RideRequest, error) {
	out := m.filter(func(r *domain.RideRequest) bool {
		return r.Status == domain.StatusPending && r.SlotTime <= slot
	})
	sort.Slice(out, func(i, j int) bool {
		if out[i].SlotTime != out[j].SlotTime {
			return out[i].SlotTime < out[j].SlotTime
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (m *RideRepository) filter(keep func(*domain.RideRequest) bool) []*domain.RideRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*domain.RideRequest, 0)
	for _, r := range m.rides {
		if keep(r) {
			cp := *r
			out = append(out, &cp)
		}
	}
	return out
}

func (m *RideRepository) Cancel(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return domain.ErrRideNotFound
	}
	if r.Status == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	delete(m.rides, id)
	return nil
}

func (m *RideRepository) Complete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rides[id]
	if !ok {
		return domain.ErrRideNotFound
	}
	if r.Status == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	r.Status = domain.StatusCompleted
	return nil
}

func (m *RideRepository) CompleteWindow(_ context.Context, from, to domain.TimeOfDay) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, r := range m.rides {
		if r.Status == domain.StatusPending && r.SlotTime >= from && r.SlotTime <= to {
			r.Status = domain.StatusCompleted
			n++
		}
	}
	return n, nil
}

func (m *RideRepository) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rides = make(map[int64]*domain.RideRequest)
	m.nextID = 1
	return nil
}
