package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/X1ag/ShuttleScheduler/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const rideColumns = `id, requester_id, origin, destination, slot_time, purpose, status, created_at`

type RideRepository struct {
	db *pgxpool.Pool
}

func NewRideRepository(db *pgxpool.Pool) *RideRepository {
	return &RideRepository{
		db: db,
	}
}

// Create relies on the partial unique index ride_requests_pending_slot_uq,
// so the duplicate check and the insert are one statement.
func (r *RideRepository) Create(ctx context.Context, ride *domain.RideRequest) error {
	query := `INSERT INTO ride_requests (requester_id, origin, destination, slot_time, purpose, status)
						VALUES ($1, $2, $3, $4, $5, $6)
						RETURNING id, created_at`
	err := r.db.QueryRow(ctx, query,
		ride.RequesterID, ride.Origin, ride.Destination, int32(ride.SlotTime), string(ride.Purpose), string(domain.StatusPending),
	).Scan(&ride.ID, &ride.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			if pgErr.Code == domain.ErrUniqueViolation {
				return domain.ErrDuplicateBooking
			}
		}
		return fmt.Errorf("insert ride: %w", err)
	}
	ride.Status = domain.StatusPending
	return nil
}

func (r *RideRepository) GetByID(ctx context.Context, id int64) (*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM ride_requests WHERE id = $1`
	ride, err := scanRide(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRideNotFound
		}
		return nil, fmt.Errorf("get ride %d: %w", id, err)
	}
	return ride, nil
}

func (r *RideRepository) HasPending(ctx context.Context, requesterID string, slot domain.TimeOfDay) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM ride_requests WHERE requester_id = $1 AND slot_time = $2 AND status = $3)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, requesterID, int32(slot), string(domain.StatusPending)).Scan(&exists); err != nil {
		return false, fmt.Errorf("check pending ride: %w", err)
	}
	return exists, nil
}

func (r *RideRepository) ListPendingByRequester(ctx context.Context, requesterID string) ([]*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM ride_requests
						WHERE requester_id = $1 AND status = $2
						ORDER BY slot_time DESC, id DESC`
	return r.list(ctx, query, requesterID, string(domain.StatusPending))
}

func (r *RideRepository) ListCompletedByRequester(ctx context.Context, requesterID string) ([]*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM ride_requests
						WHERE requester_id = $1 AND status = $2
						ORDER BY id`
	return r.list(ctx, query, requesterID, string(domain.StatusCompleted))
}

func (r *RideRepository) ListPendingUpTo(ctx context.Context, slot domain.TimeOfDay) ([]*domain.RideRequest, error) {
	query := `SELECT ` + rideColumns + ` FROM ride_requests
						WHERE status = $1 AND slot_time <= $2
						ORDER BY slot_time, id`
	return r.list(ctx, query, string(domain.StatusPending), int32(slot))
}

func (r *RideRepository) list(ctx context.Context, query string, args ...any) ([]*domain.RideRequest, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rides: %w", err)
	}
	defer rows.Close()

	rides := make([]*domain.RideRequest, 0, 10)
	for rows.Next() {
		ride, err := scanRide(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ride: %w", err)
		}
		rides = append(rides, ride)
	}
	if rows.Err() != nil {
		return nil, fmt.Errorf("list rides: %w", rows.Err())
	}
	return rides, nil
}

func (r *RideRepository) Cancel(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM ride_requests WHERE id = $1 AND status = $2`, id, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("cancel ride %d: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.explainMiss(ctx, id)
}

func (r *RideRepository) Complete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `UPDATE ride_requests SET status = $1 WHERE id = $2 AND status = $3`,
		string(domain.StatusCompleted), id, string(domain.StatusPending))
	if err != nil {
		return fmt.Errorf("complete ride %d: %w", id, err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	return r.explainMiss(ctx, id)
}

// explainMiss classifies a conditional write that touched no rows. The row
// was either never there, deleted by a concurrent cancel, or completed.
func (r *RideRepository) explainMiss(ctx context.Context, id int64) error {
	var status string
	err := r.db.QueryRow(ctx, `SELECT status FROM ride_requests WHERE id = $1`, id).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrRideNotFound
		}
		return fmt.Errorf("get ride status %d: %w", id, err)
	}
	if domain.RideStatus(status) == domain.StatusCompleted {
		return domain.ErrAlreadyCompleted
	}
	return fmt.Errorf("ride %d has unexpected status %q", id, status)
}

func (r *RideRepository) CompleteWindow(ctx context.Context, from, to domain.TimeOfDay) (int64, error) {
	query := `UPDATE ride_requests SET status = $1
						WHERE status = $2 AND slot_time >= $3 AND slot_time <= $4`
	tag, err := r.db.Exec(ctx, query, string(domain.StatusCompleted), string(domain.StatusPending), int32(from), int32(to))
	if err != nil {
		return 0, fmt.Errorf("auto-complete rides: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Reset empties the table and restarts ids; it runs once a day.
func (r *RideRepository) Reset(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `TRUNCATE TABLE ride_requests RESTART IDENTITY`); err != nil {
		return fmt.Errorf("reset ride requests: %w", err)
	}
	return nil
}

func scanRide(row pgx.Row) (*domain.RideRequest, error) {
	ride := &domain.RideRequest{}
	var slot int32
	var purpose, status string
	err := row.Scan(&ride.ID, &ride.RequesterID, &ride.Origin, &ride.Destination, &slot, &purpose, &status, &ride.CreatedAt)
	if err != nil {
		return nil, err
	}
	ride.SlotTime = domain.TimeOfDay(slot)
	ride.Purpose = domain.Purpose(purpose)
	ride.Status = domain.RideStatus(status)
	return ride, nil
}
