// Package booking orchestrates the user-facing reservation workflow: it
// ties catalog lookups, slot availability and the appointment store
// together, and fires the calendar sync side channel after durable writes.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"studio-booking-service/internal/apperr"
	"studio-booking-service/internal/appointment"
	"studio-booking-service/internal/auth"
	"studio-booking-service/internal/catalog"
	"studio-booking-service/internal/observability/metrics"
	"studio-booking-service/internal/schedule"
)

var tracer = otel.Tracer("studio.internal.booking")

// Catalog resolves types and tariffs.
type Catalog interface {
	GetType(ctx context.Context, typeID int64) (*catalog.AppointmentType, error)
	GetTariff(ctx context.Context, tariffID int64) (*catalog.Tariff, error)
}

// Slots recomputes availability for a concrete date.
type Slots interface {
	ComputeSlots(ctx context.Context, typeID int64, date string, staffID string, durationMins int, excludeApptID string) ([]schedule.SlotCandidate, error)
}

// Appointments is the persistence surface the orchestrator needs.
type Appointments interface {
	CreateMany(ctx context.Context, ownerID string, params []appointment.CreateParams) ([]appointment.Appointment, error)
	GetByID(ctx context.Context, id string) (*appointment.Appointment, error)
	ListByUser(ctx context.Context, userID string) ([]appointment.Appointment, error)
	Update(ctx context.Context, id, requesterID string, patch appointment.Patch) (*appointment.Appointment, error)
	Cancel(ctx context.Context, id, requesterID string) (*appointment.Appointment, error)
}

// Notifier is told about durably created appointments. Implementations must
// not block and must swallow their own failures.
type Notifier interface {
	BookingCreated(appt appointment.Appointment, typeName string)
}

// Holder takes short-lived reservation tokens on chosen slots.
type Holder interface {
	Acquire(ctx context.Context, staffID string, startAt time.Time) (func(), error)
}

// Service is the booking orchestrator.
type Service struct {
	catalog  Catalog
	slots    Slots
	appts    Appointments
	notifier Notifier
	holds    Holder
	metrics  *metrics.BookingMetrics
	logger   zerolog.Logger
}

func NewService(cat Catalog, slots Slots, appts Appointments, notifier Notifier, holds Holder, m *metrics.BookingMetrics, logger zerolog.Logger) *Service {
	return &Service{
		catalog:  cat,
		slots:    slots,
		appts:    appts,
		notifier: notifier,
		holds:    holds,
		metrics:  m,
		logger:   logger,
	}
}

// SlotSelection is one chosen window.
type SlotSelection struct {
	StartAt time.Time `json:"start_at"`
	EndAt   time.Time `json:"end_at"`
}

// ReserveRequest books up to tariff.Sessions slots in one go.
type ReserveRequest struct {
	TypeID   int64
	StaffID  string
	TariffID int64
	Slots    []SlotSelection
}

// EditRequest moves an appointment to a new staff member and/or window.
type EditRequest struct {
	StaffID string
	Slot    SlotSelection
}

// ReserveSessions validates the selection against the tariff, re-checks
// that every chosen slot is still free, and inserts all sessions in one
// batch. Calendar sync is enqueued per created appointment and never
// affects the result.
func (s *Service) ReserveSessions(ctx context.Context, ident auth.Identity, req ReserveRequest) ([]appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.reserve")
	defer span.End()
	span.SetAttributes(
		attribute.String("studio.user_id", ident.UserID),
		attribute.Int64("studio.type_id", req.TypeID),
		attribute.Int("studio.slots", len(req.Slots)),
	)
	started := time.Now()

	if req.StaffID == "" {
		return nil, fmt.Errorf("%w: staff selection required", apperr.ErrInvalidInput)
	}
	if req.TariffID == 0 {
		return nil, fmt.Errorf("%w: tariff selection required", apperr.ErrInvalidInput)
	}
	if len(req.Slots) == 0 {
		return nil, fmt.Errorf("%w: at least one slot required", apperr.ErrInvalidInput)
	}

	typ, err := s.catalog.GetType(ctx, req.TypeID)
	if err != nil {
		return nil, err
	}
	tariff, err := s.catalog.GetTariff(ctx, req.TariffID)
	if err != nil {
		return nil, err
	}
	if tariff.AppointmentTypeID != req.TypeID {
		return nil, fmt.Errorf("tariff %d does not belong to type %d: %w", req.TariffID, req.TypeID, apperr.ErrNotFound)
	}
	if len(req.Slots) > tariff.Sessions {
		return nil, fmt.Errorf("tariff allows %d session(s): %w", tariff.Sessions, apperr.ErrLimitExceeded)
	}

	// Re-derive availability per distinct date immediately before insert.
	// Best effort: the unique index decides genuine races.
	if err := s.revalidate(ctx, req, tariff.DurationMins); err != nil {
		if errors.Is(err, apperr.ErrSlotTaken) {
			s.metrics.ObserveConflict()
		}
		return nil, err
	}

	releases, err := s.acquireHolds(ctx, req)
	if err != nil {
		s.metrics.ObserveConflict()
		return nil, err
	}

	params := make([]appointment.CreateParams, 0, len(req.Slots))
	for _, sel := range req.Slots {
		params = append(params, appointment.CreateParams{
			TypeID:  req.TypeID,
			StaffID: req.StaffID,
			StartAt: sel.StartAt,
			EndAt:   sel.EndAt,
		})
	}
	appts, err := s.appts.CreateMany(ctx, ident.UserID, params)
	if err != nil {
		releaseAll(releases)
		if errors.Is(err, apperr.ErrSlotTaken) {
			s.metrics.ObserveConflict()
		}
		span.RecordError(err)
		return nil, err
	}

	for _, appt := range appts {
		if s.notifier != nil {
			s.notifier.BookingCreated(appt, typ.Name)
		}
	}

	s.metrics.ObserveReserved(len(appts))
	s.metrics.ObserveReserveLatency(time.Since(started).Seconds())
	s.logger.Info().
		Str("user_id", ident.UserID).
		Int64("type_id", req.TypeID).
		Int("sessions", len(appts)).
		Msg("sessions reserved")
	return appts, nil
}

// EditAppointment moves the appointment to a new slot (and optionally a new
// staff member), confirming it. Ownership and state guards are enforced by
// the store; the early checks here keep slot recomputation from leaking
// availability to non-owners.
func (s *Service) EditAppointment(ctx context.Context, ident auth.Identity, apptID string, req EditRequest) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.edit")
	defer span.End()

	appt, err := s.appts.GetByID(ctx, apptID)
	if err != nil {
		return nil, err
	}
	if appt.UserID != ident.UserID {
		return nil, fmt.Errorf("appointment %s: %w", apptID, apperr.ErrPermissionDenied)
	}
	if appt.Status.Terminal() {
		return nil, fmt.Errorf("appointment %s is %s: %w", apptID, appt.Status, apperr.ErrInvalidState)
	}

	staffID := req.StaffID
	if staffID == "" {
		staffID = appt.StaffID
	}
	if req.Slot.StartAt.IsZero() || req.Slot.EndAt.IsZero() {
		return nil, fmt.Errorf("%w: slot required", apperr.ErrInvalidInput)
	}

	date := req.Slot.StartAt.UTC().Format("2006-01-02")
	cands, err := s.slots.ComputeSlots(ctx, appt.AppointmentTypeID, date, staffID, 0, appt.ID)
	if err != nil {
		return nil, err
	}
	cand, ok := findCandidate(cands, req.Slot)
	if !ok {
		return nil, fmt.Errorf("%w: slot is not an offered window", apperr.ErrInvalidInput)
	}
	if cand.IsBooked {
		return nil, fmt.Errorf("%w", apperr.ErrSlotTaken)
	}

	confirmed := appointment.StatusConfirmed
	updated, err := s.appts.Update(ctx, apptID, ident.UserID, appointment.Patch{
		StaffID: &staffID,
		StartAt: &req.Slot.StartAt,
		EndAt:   &req.Slot.EndAt,
		Status:  &confirmed,
	})
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	s.logger.Info().Str("appointment_id", apptID).Str("user_id", ident.UserID).Msg("appointment rescheduled")
	return updated, nil
}

// CancelAppointment cancels on behalf of the owner.
func (s *Service) CancelAppointment(ctx context.Context, ident auth.Identity, apptID string) (*appointment.Appointment, error) {
	ctx, span := tracer.Start(ctx, "booking.cancel")
	defer span.End()
	return s.appts.Cancel(ctx, apptID, ident.UserID)
}

// ListAppointments returns the caller's own appointments, newest first.
func (s *Service) ListAppointments(ctx context.Context, ident auth.Identity) ([]appointment.Appointment, error) {
	return s.appts.ListByUser(ctx, ident.UserID)
}

func (s *Service) revalidate(ctx context.Context, req ReserveRequest, durationMins int) error {
	byDate := make(map[string][]SlotSelection)
	var dates []string
	for _, sel := range req.Slots {
		if !sel.EndAt.After(sel.StartAt) {
			return fmt.Errorf("%w: end_at must be after start_at", apperr.ErrInvalidInput)
		}
		d := sel.StartAt.UTC().Format("2006-01-02")
		if _, seen := byDate[d]; !seen {
			dates = append(dates, d)
		}
		byDate[d] = append(byDate[d], sel)
	}

	// The database only sees the selections one row at a time and its
	// unique index keys on start_at alone, so overlapping windows chosen
	// within the same request must be rejected here.
	for i := 0; i < len(req.Slots); i++ {
		a := schedule.Interval{Start: req.Slots[i].StartAt, End: req.Slots[i].EndAt}
		for j := i + 1; j < len(req.Slots); j++ {
			b := schedule.Interval{Start: req.Slots[j].StartAt, End: req.Slots[j].EndAt}
			if a.Overlaps(b) {
				return fmt.Errorf("%w: selected slots %s and %s overlap", apperr.ErrInvalidInput,
					req.Slots[i].StartAt.Format(time.RFC3339), req.Slots[j].StartAt.Format(time.RFC3339))
			}
		}
	}

	for _, d := range dates {
		cands, err := s.slots.ComputeSlots(ctx, req.TypeID, d, req.StaffID, durationMins, "")
		if err != nil {
			return err
		}
		for _, sel := range byDate[d] {
			cand, ok := findCandidate(cands, sel)
			if !ok {
				return fmt.Errorf("%w: %s is not an offered window", apperr.ErrInvalidInput, sel.StartAt.Format(time.RFC3339))
			}
			if cand.IsBooked {
				return fmt.Errorf("%s: %w", sel.StartAt.Format(time.RFC3339), apperr.ErrSlotTaken)
			}
		}
	}
	return nil
}

func (s *Service) acquireHolds(ctx context.Context, req ReserveRequest) ([]func(), error) {
	if s.holds == nil {
		return nil, nil
	}
	var releases []func()
	for _, sel := range req.Slots {
		release, err := s.holds.Acquire(ctx, req.StaffID, sel.StartAt)
		if err != nil {
			releaseAll(releases)
			return nil, err
		}
		releases = append(releases, release)
	}
	return releases, nil
}

func releaseAll(releases []func()) {
	for _, release := range releases {
		release()
	}
}

func findCandidate(cands []schedule.SlotCandidate, sel SlotSelection) (schedule.SlotCandidate, bool) {
	for _, c := range cands {
		if c.StartAt.Equal(sel.StartAt) && c.EndAt.Equal(sel.EndAt) {
			return c, true
		}
	}
	return schedule.SlotCandidate{}, false
}
