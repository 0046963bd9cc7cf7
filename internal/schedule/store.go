package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"studio-booking-service/internal/apperr"
)

// DB is the subset of pgxpool.Pool the template store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// TemplateStore persists the weekly offer windows. Mutation is staff
// tooling; the availability engine only reads.
type TemplateStore struct {
	db DB
}

func NewTemplateStore(db DB) *TemplateStore {
	return &TemplateStore{db: db}
}

func (s *TemplateStore) ListForDay(ctx context.Context, typeID int64, weekday int) ([]TemplateSlot, error) {
	q := `SELECT id, appointment_type_id, day_of_week, start_time, end_time, created_at, updated_at
	      FROM weekly_slots WHERE appointment_type_id=$1 AND day_of_week=$2 ORDER BY id`
	return s.list(ctx, q, typeID, weekday)
}

func (s *TemplateStore) ListForType(ctx context.Context, typeID int64) ([]TemplateSlot, error) {
	q := `SELECT id, appointment_type_id, day_of_week, start_time, end_time, created_at, updated_at
	      FROM weekly_slots WHERE appointment_type_id=$1 ORDER BY day_of_week, id`
	return s.list(ctx, q, typeID)
}

func (s *TemplateStore) list(ctx context.Context, q string, args ...any) ([]TemplateSlot, error) {
	rows, err := s.db.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("schedule: list templates: %w", err)
	}
	defer rows.Close()

	var out []TemplateSlot
	for rows.Next() {
		var t TemplateSlot
		if err := rows.Scan(&t.ID, &t.AppointmentTypeID, &t.DayOfWeek, &t.StartTime, &t.EndTime, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, fmt.Errorf("schedule: scan template: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TemplateStore) Create(ctx context.Context, t *TemplateSlot) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	now := time.Now().UTC()
	q := `INSERT INTO weekly_slots (appointment_type_id, day_of_week, start_time, end_time, created_at, updated_at)
	      VALUES ($1,$2,$3,$4,$5,$6) RETURNING id`
	if err := s.db.QueryRow(ctx, q, t.AppointmentTypeID, t.DayOfWeek, t.StartTime, t.EndTime, now, now).Scan(&t.ID); err != nil {
		return fmt.Errorf("schedule: insert template: %w", err)
	}
	t.CreatedAt = now
	t.UpdatedAt = now
	return nil
}

func (s *TemplateStore) Update(ctx context.Context, id int64, t *TemplateSlot) error {
	if err := validateTemplate(t); err != nil {
		return err
	}
	now := time.Now().UTC()
	q := `UPDATE weekly_slots
	      SET day_of_week=$1, start_time=$2, end_time=$3, updated_at=$4
	      WHERE id=$5
	      RETURNING appointment_type_id, created_at`
	err := s.db.QueryRow(ctx, q, t.DayOfWeek, t.StartTime, t.EndTime, now, id).Scan(&t.AppointmentTypeID, &t.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("template %d: %w", id, apperr.ErrNotFound)
	}
	if err != nil {
		return fmt.Errorf("schedule: update template: %w", err)
	}
	t.ID = id
	t.UpdatedAt = now
	return nil
}

func validateTemplate(t *TemplateSlot) error {
	if t.DayOfWeek < 0 || t.DayOfWeek > 6 {
		return fmt.Errorf("%w: day_of_week must be 0-6", apperr.ErrInvalidInput)
	}
	start, err := parseHHMM(t.StartTime)
	if err != nil {
		return fmt.Errorf("%w: start_time must be HH:MM", apperr.ErrInvalidInput)
	}
	end, err := parseHHMM(t.EndTime)
	if err != nil {
		return fmt.Errorf("%w: end_time must be HH:MM", apperr.ErrInvalidInput)
	}
	if !end.After(start) {
		return fmt.Errorf("%w: end_time must be after start_time", apperr.ErrInvalidInput)
	}
	return nil
}
