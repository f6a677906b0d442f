package domain

import (
	"context"
	"errors"
	"strings"
	"time"
)

type RideStatus string

const (
	StatusPending   RideStatus = "pending"
	StatusCompleted RideStatus = "completed"
)

type Purpose string

const (
	PurposeClass  Purpose = "class"
	PurposeSwitch Purpose = "switch"
	PurposeClosed Purpose = "closed"
	PurposeOther  Purpose = "other"
)

var (
	ErrValidation       = errors.New("validation failed")
	ErrDuplicateBooking = errors.New("ride already booked for this time")
	ErrRideNotFound     = errors.New("ride not found")
	ErrAlreadyCompleted = errors.New("ride already completed")

	// Validation details, always wrapped together with ErrValidation.
	ErrInvalidPurpose = errors.New("purpose must be one of class, switch, closed, other")
	ErrSlotInPast     = errors.New("requested time is in the past")
	ErrMissingField   = errors.New("required field is empty")
)

// ParsePurpose is case-insensitive; only the four known purposes are accepted.
func ParsePurpose(s string) (Purpose, bool) {
	p := Purpose(strings.ToLower(strings.TrimSpace(s)))
	return p, p.Valid()
}

func (p Purpose) Valid() bool {
	switch p {
	case PurposeClass, PurposeSwitch, PurposeClosed, PurposeOther:
		return true
	}
	return false
}

type RideRequest struct {
	ID          int64      `db:"id" json:"id"`
	RequesterID string     `db:"requester_id" json:"requester_id"` // может отличаться от того, кто бронирует
	Origin      string     `db:"origin" json:"origin"`
	Destination string     `db:"destination" json:"destination"`
	SlotTime    TimeOfDay  `db:"slot_time" json:"slot_time"`
	Purpose     Purpose    `db:"purpose" json:"purpose"`
	Status      RideStatus `db:"status" json:"status"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
}

// RideRepository is the only path to ride rows. Create must check the
// one-pending-per-(requester, slot) rule and insert atomically.
type RideRepository interface {
	Create(ctx context.Context, ride *RideRequest) error
	GetByID(ctx context.Context, id int64) (*RideRequest, error)
	HasPending(ctx context.Context, requesterID string, slot TimeOfDay) (bool, error)
	// ListPendingByRequester is ordered by slot time descending.
	ListPendingByRequester(ctx context.Context, requesterID string) ([]*RideRequest, error)
	ListCompletedByRequester(ctx context.Context, requesterID string) ([]*RideRequest, error)
	// ListPendingUpTo is ordered by slot time ascending.
	ListPendingUpTo(ctx context.Context, slot TimeOfDay) ([]*RideRequest, error)
	Cancel(ctx context.Context, id int64) error
	Complete(ctx context.Context, id int64) error
	// CompleteWindow completes pending rides with from <= slot <= to.
	CompleteWindow(ctx context.Context, from, to TimeOfDay) (int64, error)
	Reset(ctx context.Context) error
}
