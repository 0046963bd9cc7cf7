package schedule

import "time"

// TemplateSlot is a recurring per-weekday offer window for an appointment
// type. StartTime and EndTime are wall-clock "HH:MM" strings with no date.
type TemplateSlot struct {
	ID                int64     `json:"id"`
	AppointmentTypeID int64     `json:"appointment_type_id"`
	DayOfWeek         int       `json:"day_of_week"`
	StartTime         string    `json:"start_time"`
	EndTime           string    `json:"end_time"`
	CreatedAt         time.Time `json:"created_at,omitempty"`
	UpdatedAt         time.Time `json:"updated_at,omitempty"`
}

// SlotCandidate is a derived, non-persisted bookable window for a concrete
// date, annotated with whether an existing appointment occupies it.
type SlotCandidate struct {
	StartAt  time.Time `json:"start_at"`
	EndAt    time.Time `json:"end_at"`
	IsBooked bool      `json:"is_booked"`
}

// Interval is a half-open [Start, End) time range.
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}
