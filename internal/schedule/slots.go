package schedule

import (
	"context"
	"fmt"
	"time"

	"studio-booking-service/internal/apperr"
)

// TemplateSource lists the recurring offer windows for a type and weekday.
type TemplateSource interface {
	ListForDay(ctx context.Context, typeID int64, weekday int) ([]TemplateSlot, error)
}

// BusySource lists the occupied intervals for a staff member within a time
// range, skipping cancelled appointments. excludeApptID omits a single
// appointment from the result; pass "" to include everything.
type BusySource interface {
	ListBusy(ctx context.Context, staffID string, from, to time.Time, excludeApptID string) ([]Interval, error)
}

// Engine derives bookable slot candidates for a concrete date by
// materializing the weekly template and annotating each window with the
// staff member's existing appointments.
type Engine struct {
	templates TemplateSource
	busy      BusySource
}

func NewEngine(templates TemplateSource, busy BusySource) *Engine {
	return &Engine{templates: templates, busy: busy}
}

// ComputeSlots returns the day's candidates in template order. A candidate
// is booked when its window overlaps any non-cancelled appointment of the
// staff member (half-open interval test). Overlapping template windows are
// returned as separate candidates; no merging happens. durationMins is
// informational: templates are offered as configured, the engine never
// subdivides a window to fit a different tariff duration.
//
// date is a plain YYYY-MM-DD string; the weekday is derived from it
// directly, no timezone conversion is applied.
func (e *Engine) ComputeSlots(ctx context.Context, typeID int64, date string, staffID string, durationMins int, excludeApptID string) ([]SlotCandidate, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("%w: date must be YYYY-MM-DD", apperr.ErrInvalidInput)
	}

	rules, err := e.templates.ListForDay(ctx, typeID, int(day.Weekday()))
	if err != nil {
		return nil, err
	}
	if len(rules) == 0 {
		return nil, nil
	}

	year, month, dayNum := day.Date()
	candidates := make([]SlotCandidate, 0, len(rules))
	for _, r := range rules {
		startTOD, err := parseHHMM(r.StartTime)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", r.ID, err)
		}
		endTOD, err := parseHHMM(r.EndTime)
		if err != nil {
			return nil, fmt.Errorf("template %d: %w", r.ID, err)
		}
		if !endTOD.After(startTOD) {
			return nil, fmt.Errorf("template %d: end_time must be after start_time", r.ID)
		}
		candidates = append(candidates, SlotCandidate{
			StartAt: time.Date(year, month, dayNum, startTOD.Hour(), startTOD.Minute(), 0, 0, time.UTC),
			EndAt:   time.Date(year, month, dayNum, endTOD.Hour(), endTOD.Minute(), 0, 0, time.UTC),
		})
	}

	dayStart := time.Date(year, month, dayNum, 0, 0, 0, 0, time.UTC)
	busy, err := e.busy.ListBusy(ctx, staffID, dayStart, dayStart.Add(24*time.Hour), excludeApptID)
	if err != nil {
		return nil, err
	}

	for i := range candidates {
		window := Interval{Start: candidates[i].StartAt, End: candidates[i].EndAt}
		for _, b := range busy {
			if window.Overlaps(b) {
				candidates[i].IsBooked = true
				break
			}
		}
	}
	return candidates, nil
}

func parseHHMM(s string) (time.Time, error) {
	// Accept "09:00:00.000000" by keeping the first 5 chars.
	if len(s) < 5 {
		return time.Time{}, fmt.Errorf("invalid time string: %s", s)
	}
	tt, err := time.Parse("15:04", s[:5])
	if err != nil {
		return time.Time{}, err
	}
	return tt, nil
}
