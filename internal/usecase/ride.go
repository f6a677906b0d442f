package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/X1ag/ShuttleScheduler/internal/observability"
)

const DefaultGracePeriod = 40 * time.Minute

type RideConfig struct {
	Timetable   domain.Timetable
	GracePeriod time.Duration
	SweepPolicy domain.SweepPolicy
	Location    *time.Location   // UTC when nil
	Clock       func() time.Time // time.Now when nil
}

type CreateRide struct {
	RequesterID string
	Origin      string
	Destination string
	SlotTime    domain.TimeOfDay
	Purpose     domain.Purpose
}

// RideUsecase is the engine facade: chat commands, the HTTP API and the
// worker all go through it. Each instance owns its digest state.
type RideUsecase struct {
	rides     domain.RideRepository
	guard     *BookingGuard
	names     domain.NameResolver
	events    domain.EventPublisher
	digest    *DigestTracker
	timetable domain.Timetable
	grace     time.Duration
	policy    domain.SweepPolicy
	loc       *time.Location
	clock     func() time.Time
	logger    *slog.Logger
}

func NewRideUsecase(rides domain.RideRepository, names domain.NameResolver, events domain.EventPublisher, cfg RideConfig, logger *slog.Logger) *RideUsecase {
	if cfg.GracePeriod <= 0 {
		cfg.GracePeriod = DefaultGracePeriod
	}
	if cfg.SweepPolicy == "" {
		cfg.SweepPolicy = domain.SweepDeparted
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if events == nil {
		events = domain.NopPublisher{}
	}
	return &RideUsecase{
		rides:     rides,
		guard:     NewBookingGuard(rides),
		names:     names,
		events:    events,
		digest:    NewDigestTracker(),
		timetable: cfg.Timetable,
		grace:     cfg.GracePeriod,
		policy:    cfg.SweepPolicy,
		loc:       cfg.Location,
		clock:     cfg.Clock,
		logger:    logger,
	}
}

func (u *RideUsecase) Now() time.Time { return u.clock() }

func (u *RideUsecase) Timetable() domain.Timetable { return u.timetable }

func (u *RideUsecase) Guard() *BookingGuard { return u.guard }

func (u *RideUsecase) timeOfDay(now time.Time) domain.TimeOfDay {
	return domain.TimeOfDayFrom(now, u.loc)
}

func validationError(kind error, format string, args ...any) error {
	return fmt.Errorf("%w: %w: %s", domain.ErrValidation, kind, fmt.Sprintf(format, args...))
}

func (u *RideUsecase) Create(ctx context.Context, in CreateRide) (*domain.RideRequest, error) {
	ride, err := u.validate(in)
	if err != nil {
		observability.BookingsTotal.WithLabelValues("invalid").Inc()
		return nil, err
	}
	if err := u.guard.Book(ctx, ride); err != nil {
		if errors.Is(err, domain.ErrDuplicateBooking) {
			observability.BookingsTotal.WithLabelValues("duplicate").Inc()
			return nil, err
		}
		observability.BookingsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	observability.BookingsTotal.WithLabelValues("created").Inc()
	u.logger.Info("ride requested",
		"ride_id", ride.ID, "requester_id", ride.RequesterID, "origin", ride.Origin,
		"destination", ride.Destination, "slot", ride.SlotTime.String(), "purpose", ride.Purpose)
	u.publish(ctx, domain.RideEvent{
		Type: domain.EventRideCreated, RideID: ride.ID, RequesterID: ride.RequesterID,
		SlotTime: ride.SlotTime.String(), Purpose: ride.Purpose,
	})
	return ride, nil
}

func (u *RideUsecase) validate(in CreateRide) (*domain.RideRequest, error) {
	ride := &domain.RideRequest{
		RequesterID: strings.TrimSpace(in.RequesterID),
		Origin:      strings.TrimSpace(in.Origin),
		Destination: strings.TrimSpace(in.Destination),
		SlotTime:    in.SlotTime,
		Purpose:     in.Purpose,
	}
	switch {
	case ride.RequesterID == "":
		return nil, validationError(domain.ErrMissingField, "requester")
	case ride.Origin == "" || ride.Destination == "":
		return nil, validationError(domain.ErrMissingField, "origin and destination")
	case !ride.Purpose.Valid():
		return nil, validationError(domain.ErrInvalidPurpose, "got %q", in.Purpose)
	case ride.SlotTime < domain.StartOfDay || ride.SlotTime >= domain.EndOfDay:
		return nil, validationError(domain.ErrInvalidTimeOfDay, "%d seconds", int(in.SlotTime))
	}
	if now := u.timeOfDay(u.clock()); ride.SlotTime < now {
		return nil, validationError(domain.ErrSlotInPast, "%s before %s", ride.SlotTime, now)
	}
	return ride, nil
}

func (u *RideUsecase) Get(ctx context.Context, id int64) (*domain.RideRequest, error) {
	return u.rides.GetByID(ctx, id)
}

// ListPendingForRequester returns the most recent slot first.
func (u *RideUsecase) ListPendingForRequester(ctx context.Context, requesterID string) ([]*domain.RideRequest, error) {
	return u.rides.ListPendingByRequester(ctx, requesterID)
}

func (u *RideUsecase) ListCompletedForRequester(ctx context.Context, requesterID string) ([]*domain.RideRequest, error) {
	return u.rides.ListCompletedByRequester(ctx, requesterID)
}

// Cancel deletes a pending ride. Completed rides are never deleted.
func (u *RideUsecase) Cancel(ctx context.Context, id int64) error {
	ride, err := u.rides.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := u.rides.Cancel(ctx, id); err != nil {
		return err
	}
	u.afterCancel(ctx, ride)
	return nil
}

// CancelLatest cancels the requester's pending ride with the latest slot.
func (u *RideUsecase) CancelLatest(ctx context.Context, requesterID string) (*domain.RideRequest, error) {
	pending, err := u.rides.ListPendingByRequester(ctx, requesterID)
	if err != nil {
		return nil, err
	}
	if len(pending) == 0 {
		return nil, domain.ErrRideNotFound
	}
	ride := pending[0]
	if err := u.rides.Cancel(ctx, ride.ID); err != nil {
		return nil, err
	}
	u.afterCancel(ctx, ride)
	return ride, nil
}

func (u *RideUsecase) afterCancel(ctx context.Context, ride *domain.RideRequest) {
	observability.RideTransitionsTotal.WithLabelValues("canceled").Inc()
	u.logger.Info("ride canceled", "ride_id", ride.ID, "requester_id", ride.RequesterID)
	u.publish(ctx, domain.RideEvent{
		Type: domain.EventRideCanceled, RideID: ride.ID, RequesterID: ride.RequesterID,
		SlotTime: ride.SlotTime.String(), Purpose: ride.Purpose,
	})
}

// Complete returns domain.ErrAlreadyCompleted when the ride was completed
// before, so the caller can tell the two cases apart.
func (u *RideUsecase) Complete(ctx context.Context, id int64) error {
	if err := u.rides.Complete(ctx, id); err != nil {
		return err
	}
	observability.RideTransitionsTotal.WithLabelValues("completed").Inc()
	u.logger.Info("ride completed", "ride_id", id)
	u.publish(ctx, domain.RideEvent{Type: domain.EventRideCompleted, RideID: id})
	return nil
}

// PendingDueBy lists pending rides due by the next departure after now,
// ascending by slot. It is empty once the last departure has left.
func (u *RideUsecase) PendingDueBy(ctx context.Context, now time.Time) ([]*domain.RideRequest, error) {
	next, ok := u.timetable.NextSlotAfter(u.timeOfDay(now))
	if !ok {
		observability.PendingDue.Set(0)
		return []*domain.RideRequest{}, nil
	}
	pending, err := u.rides.ListPendingUpTo(ctx, next)
	if err != nil {
		return nil, err
	}
	observability.PendingDue.Set(float64(len(pending)))
	return pending, nil
}

// SweepAutoComplete completes pending rides whose departure has passed.
// Running it twice with the same now changes nothing the second time.
func (u *RideUsecase) SweepAutoComplete(ctx context.Context, now time.Time) (int64, error) {
	start := time.Now()
	defer func() { observability.SweepDuration.Observe(time.Since(start).Seconds()) }()

	tod := u.timeOfDay(now)
	from, to, ok := domain.SweepRange(u.timetable, tod, u.grace, u.policy)
	if !ok {
		u.logger.Debug("sweep: nothing eligible", "now", tod.String())
		return 0, nil
	}
	n, err := u.rides.CompleteWindow(ctx, from, to)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		observability.RidesSweptTotal.Add(float64(n))
		u.logger.Info("rides auto-completed", "count", n, "from", from.String(), "to", to.String())
		u.publish(ctx, domain.RideEvent{Type: domain.EventRidesSwept, Count: n})
	}
	return n, nil
}

// BuildDigest computes the priority digest of rides due by the next
// departure and compares it with the previous one of this engine.
func (u *RideUsecase) BuildDigest(ctx context.Context, now time.Time) (DigestNotice, error) {
	pending, err := u.PendingDueBy(ctx, now)
	if err != nil {
		return DigestNotice{}, err
	}
	notice := u.digest.Observe(pending, func() domain.PriorityDigest {
		return domain.BuildDigest(ctx, pending, u.countingResolver(), u.logger)
	})
	observability.DigestNoticesTotal.WithLabelValues(string(notice.Kind)).Inc()
	return notice, nil
}

func (u *RideUsecase) countingResolver() domain.NameResolver {
	return domain.NameResolverFunc(func(ctx context.Context, requesterID string) (string, error) {
		name, err := u.names.DisplayName(ctx, requesterID)
		if err != nil {
			observability.NameLookupFailures.Inc()
		}
		return name, err
	})
}

// Reset wipes all rides for a new service day.
func (u *RideUsecase) Reset(ctx context.Context) error {
	if err := u.rides.Reset(ctx); err != nil {
		return err
	}
	u.digest.Reset()
	u.logger.Info("ride store reset")
	u.publish(ctx, domain.RideEvent{Type: domain.EventStoreReset})
	return nil
}

func (u *RideUsecase) publish(ctx context.Context, ev domain.RideEvent) {
	ev.At = u.clock().UTC()
	if err := u.events.Publish(ctx, ev); err != nil {
		observability.EventPublishErrors.Inc()
		u.logger.Warn("publish ride event", "type", ev.Type, "ride_id", ev.RideID, "error", err)
	}
}
