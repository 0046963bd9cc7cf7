package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"studio-booking-service/internal/apperr"
	"studio-booking-service/internal/schedule"
)

const uniqueViolation = "23505"

const apptColumns = `id, appointment_type_id, staff_id, user_id, start_at, end_at, status, created_at, updated_at`

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Store is the system of record for appointments. It enforces ownership
// and status-transition rules; the database's partial unique index on
// (staff_id, start_at) for non-cancelled rows decides slot races.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

// Create inserts one appointment with status booked.
func (s *Store) Create(ctx context.Context, ownerID string, p CreateParams) (*Appointment, error) {
	appts, err := s.CreateMany(ctx, ownerID, []CreateParams{p})
	if err != nil {
		return nil, err
	}
	return &appts[0], nil
}

// CreateMany inserts all rows within a single transaction: a reservation of
// N sessions is all-or-nothing. A slot conflict on any row aborts the whole
// batch and surfaces as ErrSlotTaken.
func (s *Store) CreateMany(ctx context.Context, ownerID string, params []CreateParams) ([]Appointment, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: owner required", apperr.ErrInvalidInput)
	}
	if len(params) == 0 {
		return nil, fmt.Errorf("%w: no slots selected", apperr.ErrInvalidInput)
	}
	for _, p := range params {
		if p.StaffID == "" {
			return nil, fmt.Errorf("%w: staff required", apperr.ErrInvalidInput)
		}
		if !p.EndAt.After(p.StartAt) {
			return nil, fmt.Errorf("%w: end_at must be after start_at", apperr.ErrInvalidInput)
		}
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	now := time.Now().UTC()
	q := `INSERT INTO appointments
	      (id, appointment_type_id, staff_id, user_id, start_at, end_at, status, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8)`

	out := make([]Appointment, 0, len(params))
	for _, p := range params {
		a := Appointment{
			ID:                uuid.NewString(),
			AppointmentTypeID: p.TypeID,
			StaffID:           p.StaffID,
			UserID:            ownerID,
			StartAt:           p.StartAt.UTC(),
			EndAt:             p.EndAt.UTC(),
			Status:            StatusBooked,
			CreatedAt:         now,
			UpdatedAt:         now,
		}
		if _, err := tx.Exec(ctx, q, a.ID, a.AppointmentTypeID, a.StaffID, a.UserID, a.StartAt, a.EndAt, a.Status, now); err != nil {
			return nil, mapInsertErr(err)
		}
		out = append(out, a)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapInsertErr(err)
	}
	return out, nil
}

func (s *Store) GetByID(ctx context.Context, id string) (*Appointment, error) {
	q := `SELECT ` + apptColumns + ` FROM appointments WHERE id=$1`
	var a Appointment
	err := s.db.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.AppointmentTypeID, &a.StaffID, &a.UserID,
		&a.StartAt, &a.EndAt, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load: %w", err)
	}
	return &a, nil
}

// ListByUser returns the user's appointments ordered by start_at descending.
func (s *Store) ListByUser(ctx context.Context, userID string) ([]Appointment, error) {
	q := `SELECT ` + apptColumns + ` FROM appointments
	      WHERE user_id=$1 ORDER BY start_at DESC`
	rows, err := s.db.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list by user: %w", err)
	}
	defer rows.Close()

	var out []Appointment
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(&a.ID, &a.AppointmentTypeID, &a.StaffID, &a.UserID,
			&a.StartAt, &a.EndAt, &a.Status, &a.CreatedAt, &a.UpdatedAt); err != nil {
			return nil, fmt.Errorf("appointments: scan: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ListBusy returns the occupied intervals for a staff member within
// [from, to), skipping cancelled rows. excludeApptID omits one appointment
// so an edit does not collide with itself.
func (s *Store) ListBusy(ctx context.Context, staffID string, from, to time.Time, excludeApptID string) ([]schedule.Interval, error) {
	// The exclusion is passed as a nullable uuid: an untyped parameter
	// compared to '' first would be resolved as text and fail to compare
	// against the uuid id column.
	var exclude *string
	if excludeApptID != "" {
		exclude = &excludeApptID
	}
	q := `SELECT start_at, end_at FROM appointments
	      WHERE staff_id=$1 AND status <> 'cancelled'
	      AND start_at >= $2 AND start_at < $3
	      AND ($4::uuid IS NULL OR id <> $4::uuid)`
	rows, err := s.db.Query(ctx, q, staffID, from, to, exclude)
	if err != nil {
		return nil, fmt.Errorf("appointments: list busy: %w", err)
	}
	defer rows.Close()

	var out []schedule.Interval
	for rows.Next() {
		var iv schedule.Interval
		if err := rows.Scan(&iv.Start, &iv.End); err != nil {
			return nil, fmt.Errorf("appointments: scan busy: %w", err)
		}
		out = append(out, iv)
	}
	return out, rows.Err()
}

// Update applies a patch on behalf of requesterID. It fails with
// ErrPermissionDenied for non-owners, ErrInvalidState for terminal rows or
// illegal transitions, and stamps updated_at.
func (s *Store) Update(ctx context.Context, id, requesterID string, patch Patch) (*Appointment, error) {
	return s.mutate(ctx, id, func(a *Appointment) error {
		if a.UserID != requesterID {
			return fmt.Errorf("appointment %s: %w", id, apperr.ErrPermissionDenied)
		}
		if a.Status.Terminal() {
			return fmt.Errorf("appointment %s is %s: %w", id, a.Status, apperr.ErrInvalidState)
		}
		if patch.Status != nil && *patch.Status != a.Status {
			if !a.Status.CanTransitionTo(*patch.Status) {
				return fmt.Errorf("transition %s -> %s: %w", a.Status, *patch.Status, apperr.ErrInvalidState)
			}
			a.Status = *patch.Status
		}
		if patch.StaffID != nil {
			a.StaffID = *patch.StaffID
		}
		if patch.StartAt != nil {
			a.StartAt = patch.StartAt.UTC()
		}
		if patch.EndAt != nil {
			a.EndAt = patch.EndAt.UTC()
		}
		if !a.EndAt.After(a.StartAt) {
			return fmt.Errorf("%w: end_at must be after start_at", apperr.ErrInvalidInput)
		}
		return nil
	})
}

// Cancel forces status to cancelled with the same ownership and state
// guards as Update.
func (s *Store) Cancel(ctx context.Context, id, requesterID string) (*Appointment, error) {
	return s.mutate(ctx, id, func(a *Appointment) error {
		if a.UserID != requesterID {
			return fmt.Errorf("appointment %s: %w", id, apperr.ErrPermissionDenied)
		}
		if a.Status.Terminal() {
			return fmt.Errorf("appointment %s is %s: %w", id, a.Status, apperr.ErrInvalidState)
		}
		a.Status = StatusCancelled
		return nil
	})
}

// Complete moves a confirmed appointment to completed. Staff workflow; the
// route guard enforces the role, not the store.
func (s *Store) Complete(ctx context.Context, id string) (*Appointment, error) {
	return s.mutate(ctx, id, func(a *Appointment) error {
		if !a.Status.CanTransitionTo(StatusCompleted) {
			return fmt.Errorf("transition %s -> %s: %w", a.Status, StatusCompleted, apperr.ErrInvalidState)
		}
		a.Status = StatusCompleted
		return nil
	})
}

// mutate loads the row under FOR UPDATE, applies fn to the in-memory copy
// and writes the result back in the same transaction.
func (s *Store) mutate(ctx context.Context, id string, fn func(*Appointment) error) (*Appointment, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("appointments: begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	q := `SELECT ` + apptColumns + ` FROM appointments WHERE id=$1 FOR UPDATE`
	var a Appointment
	err = tx.QueryRow(ctx, q, id).Scan(
		&a.ID, &a.AppointmentTypeID, &a.StaffID, &a.UserID,
		&a.StartAt, &a.EndAt, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointment %s: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("appointments: load for update: %w", err)
	}

	if err := fn(&a); err != nil {
		return nil, err
	}
	a.UpdatedAt = time.Now().UTC()

	upd := `UPDATE appointments
	        SET staff_id=$1, start_at=$2, end_at=$3, status=$4, updated_at=$5
	        WHERE id=$6`
	if _, err := tx.Exec(ctx, upd, a.StaffID, a.StartAt, a.EndAt, a.Status, a.UpdatedAt, a.ID); err != nil {
		return nil, mapInsertErr(err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, mapInsertErr(err)
	}
	return &a, nil
}

func mapInsertErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return fmt.Errorf("%w", apperr.ErrSlotTaken)
	}
	return fmt.Errorf("appointments: write: %w", err)
}
