// Package apperr defines the failure taxonomy surfaced by the booking
// workflows. Handlers map these to HTTP statuses in one place.
package apperr

import "errors"

var (
	// ErrNotFound is returned for unknown types, tariffs and appointments.
	ErrNotFound = errors.New("not found")

	// ErrPermissionDenied is returned when acting on another user's appointment.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrInvalidState is returned when mutating a cancelled or completed
	// appointment, or on an illegal status transition.
	ErrInvalidState = errors.New("invalid appointment state")

	// ErrLimitExceeded is returned when more slots are selected than the
	// tariff's session count allows.
	ErrLimitExceeded = errors.New("session limit exceeded")

	// ErrInvalidInput is returned when a required selection (staff, tariff,
	// date, slot) is missing or malformed.
	ErrInvalidInput = errors.New("invalid input")

	// ErrSlotTaken is returned when a chosen slot is no longer free. Callers
	// should treat this as retryable: re-derive availability and pick again.
	ErrSlotTaken = errors.New("slot already booked")
)
