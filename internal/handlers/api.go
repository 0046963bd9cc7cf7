// Package handlers exposes the booking core over HTTP.
package handlers

import (
	"context"

	"github.com/rs/zerolog"

	"studio-booking-service/internal/appointment"
	"studio-booking-service/internal/auth"
	"studio-booking-service/internal/booking"
	"studio-booking-service/internal/catalog"
	"studio-booking-service/internal/calendarsync"
	"studio-booking-service/internal/schedule"
)

// CatalogReader is the catalog surface the handlers need.
type CatalogReader interface {
	ListTypes(ctx context.Context) ([]catalog.AppointmentType, error)
	GetType(ctx context.Context, typeID int64) (*catalog.AppointmentType, error)
	ListTariffs(ctx context.Context, typeID int64) ([]catalog.Tariff, error)
	ListQualifiedStaff(ctx context.Context, typeID int64) ([]catalog.StaffMember, error)
}

// SlotComputer derives bookable candidates for a date.
type SlotComputer interface {
	ComputeSlots(ctx context.Context, typeID int64, date string, staffID string, durationMins int, excludeApptID string) ([]schedule.SlotCandidate, error)
}

// Booker is the orchestrator surface.
type Booker interface {
	ReserveSessions(ctx context.Context, ident auth.Identity, req booking.ReserveRequest) ([]appointment.Appointment, error)
	EditAppointment(ctx context.Context, ident auth.Identity, apptID string, req booking.EditRequest) (*appointment.Appointment, error)
	CancelAppointment(ctx context.Context, ident auth.Identity, apptID string) (*appointment.Appointment, error)
	ListAppointments(ctx context.Context, ident auth.Identity) ([]appointment.Appointment, error)
}

// TemplateAdmin is the staff-side template surface.
type TemplateAdmin interface {
	ListForType(ctx context.Context, typeID int64) ([]schedule.TemplateSlot, error)
	Create(ctx context.Context, t *schedule.TemplateSlot) error
	Update(ctx context.Context, id int64, t *schedule.TemplateSlot) error
}

// Completer finishes confirmed appointments (staff workflow).
type Completer interface {
	Complete(ctx context.Context, id string) (*appointment.Appointment, error)
}

// API bundles the handler dependencies.
type API struct {
	Catalog   CatalogReader
	Slots     SlotComputer
	Booking   Booker
	Templates TemplateAdmin
	Completer Completer
	OAuth     *calendarsync.OAuthConfig
	Logger    zerolog.Logger
}
