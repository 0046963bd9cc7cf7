package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"studio-booking-service/internal/apperr"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store resolves appointment types, their tariffs and the staff qualified
// to perform them. Read-only.
type Store struct {
	db DB
}

func NewStore(db DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetType(ctx context.Context, typeID int64) (*AppointmentType, error) {
	q := `SELECT id, name, description, default_duration_minutes
	      FROM appointment_types WHERE id=$1`
	var t AppointmentType
	err := s.db.QueryRow(ctx, q, typeID).Scan(&t.ID, &t.Name, &t.Description, &t.DefaultDuration)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("appointment type %d: %w", typeID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load type: %w", err)
	}
	return &t, nil
}

func (s *Store) ListTypes(ctx context.Context) ([]AppointmentType, error) {
	q := `SELECT id, name, description, default_duration_minutes
	      FROM appointment_types ORDER BY id`
	rows, err := s.db.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("catalog: list types: %w", err)
	}
	defer rows.Close()

	var out []AppointmentType
	for rows.Next() {
		var t AppointmentType
		if err := rows.Scan(&t.ID, &t.Name, &t.Description, &t.DefaultDuration); err != nil {
			return nil, fmt.Errorf("catalog: scan type: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// ListTariffs returns the tariffs configured for a type. An empty result is
// valid and means the type is not bookable yet.
func (s *Store) ListTariffs(ctx context.Context, typeID int64) ([]Tariff, error) {
	q := `SELECT id, appointment_type_id, name, sessions, duration_minutes, price_cents
	      FROM appointment_tariffs WHERE appointment_type_id=$1 ORDER BY id`
	rows, err := s.db.Query(ctx, q, typeID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list tariffs: %w", err)
	}
	defer rows.Close()

	var out []Tariff
	for rows.Next() {
		var t Tariff
		if err := rows.Scan(&t.ID, &t.AppointmentTypeID, &t.Name, &t.Sessions, &t.DurationMins, &t.PriceCents); err != nil {
			return nil, fmt.Errorf("catalog: scan tariff: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) GetTariff(ctx context.Context, tariffID int64) (*Tariff, error) {
	q := `SELECT id, appointment_type_id, name, sessions, duration_minutes, price_cents
	      FROM appointment_tariffs WHERE id=$1`
	var t Tariff
	err := s.db.QueryRow(ctx, q, tariffID).Scan(&t.ID, &t.AppointmentTypeID, &t.Name, &t.Sessions, &t.DurationMins, &t.PriceCents)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("tariff %d: %w", tariffID, apperr.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("catalog: load tariff: %w", err)
	}
	return &t, nil
}

// ListQualifiedStaff returns staff whose qualification references the type.
// An empty result is valid (no staff assigned yet).
func (s *Store) ListQualifiedStaff(ctx context.Context, typeID int64) ([]StaffMember, error) {
	q := `SELECT u.id, u.full_name, u.role
	      FROM staff_appointment_type sat
	      JOIN users u ON u.id = sat.staff_id
	      WHERE sat.type_id=$1
	      ORDER BY u.full_name`
	rows, err := s.db.Query(ctx, q, typeID)
	if err != nil {
		return nil, fmt.Errorf("catalog: list staff: %w", err)
	}
	defer rows.Close()

	var out []StaffMember
	for rows.Next() {
		var m StaffMember
		if err := rows.Scan(&m.ID, &m.FullName, &m.Role); err != nil {
			return nil, fmt.Errorf("catalog: scan staff: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
