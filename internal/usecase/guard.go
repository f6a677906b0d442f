package usecase

import (
	"context"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
)

// BookingGuard enforces at most one pending ride per (requester, slot).
// The authoritative check happens inside the repository insert, so two
// concurrent bookings cannot both pass.
type BookingGuard struct {
	rides domain.RideRepository
}

func NewBookingGuard(rides domain.RideRepository) *BookingGuard {
	return &BookingGuard{rides: rides}
}

// MayBook is advisory: the answer can be stale by the time Book runs.
func (g *BookingGuard) MayBook(ctx context.Context, requesterID string, slot domain.TimeOfDay) (bool, error) {
	has, err := g.rides.HasPending(ctx, requesterID, slot)
	if err != nil {
		return false, err
	}
	return !has, nil
}

func (g *BookingGuard) Book(ctx context.Context, ride *domain.RideRequest) error {
	return g.rides.Create(ctx, ride)
}
