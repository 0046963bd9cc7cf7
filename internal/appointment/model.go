package appointment

import "time"

// Status is the lifecycle state of an appointment.
type Status string

const (
	StatusBooked    Status = "booked"
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// Terminal reports whether the status is append-only history.
func (s Status) Terminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// CanTransitionTo reports whether the state machine permits moving to next:
// booked -> {confirmed, cancelled}, confirmed -> {cancelled, completed}.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusBooked:
		return next == StatusConfirmed || next == StatusCancelled
	case StatusConfirmed:
		return next == StatusCancelled || next == StatusCompleted
	default:
		return false
	}
}

// Appointment is a booked session. It is owned by the user who created it
// and mutable only by that owner while the status is not terminal.
type Appointment struct {
	ID                string    `json:"id"`
	AppointmentTypeID int64     `json:"appointment_type_id"`
	StaffID           string    `json:"staff_id"`
	UserID            string    `json:"user_id"`
	StartAt           time.Time `json:"start_at"`
	EndAt             time.Time `json:"end_at"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// CreateParams describes one appointment row to insert.
type CreateParams struct {
	TypeID  int64
	StaffID string
	StartAt time.Time
	EndAt   time.Time
}

// Patch is a partial update applied by the owner. Nil fields are left
// unchanged.
type Patch struct {
	StaffID *string
	StartAt *time.Time
	EndAt   *time.Time
	Status  *Status
}
