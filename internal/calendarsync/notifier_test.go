package calendarsync

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"studio-booking-service/internal/appointment"
)

type recordingInserter struct {
	mu     sync.Mutex
	events []Event
	fail   int
}

func (r *recordingInserter) Insert(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail > 0 {
		r.fail--
		return errors.New("calendar unavailable")
	}
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingInserter) recorded() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

func testAppointment() appointment.Appointment {
	start := time.Date(2026, 1, 5, 10, 0, 0, 0, time.UTC)
	return appointment.Appointment{
		ID:      "appt-1",
		StaffID: "staff-1",
		UserID:  "user-1",
		StartAt: start,
		EndAt:   start.Add(time.Hour),
		Status:  appointment.StatusBooked,
	}
}

func TestQueueDeliversEventFields(t *testing.T) {
	ins := &recordingInserter{}
	q := NewQueue(ins, zerolog.Nop(), nil, Options{})

	appt := testAppointment()
	q.BookingCreated(appt, "Deep Tissue Massage")
	q.Close()

	events := ins.recorded()
	require.Len(t, events, 1)
	require.Equal(t, "appt-1", events[0].AppointmentID)
	require.Equal(t, "Deep Tissue Massage", events[0].Summary)
	require.True(t, events[0].StartAt.Equal(appt.StartAt))
	require.True(t, events[0].EndAt.Equal(appt.EndAt))
}

func TestQueueRetriesUntilSuccess(t *testing.T) {
	ins := &recordingInserter{fail: 2}
	q := NewQueue(ins, zerolog.Nop(), nil, Options{Retries: 3, Backoff: time.Millisecond})

	q.BookingCreated(testAppointment(), "Yoga")
	q.Close()

	require.Len(t, ins.recorded(), 1)
}

func TestQueueGivesUpAfterRetriesExhausted(t *testing.T) {
	ins := &recordingInserter{fail: 10}
	q := NewQueue(ins, zerolog.Nop(), nil, Options{Retries: 1, Backoff: time.Millisecond})

	q.BookingCreated(testAppointment(), "Yoga")
	q.Close()

	require.Empty(t, ins.recorded())
}

func TestCloseDrainsPendingEvents(t *testing.T) {
	ins := &recordingInserter{}
	q := NewQueue(ins, zerolog.Nop(), nil, Options{QueueSize: 16})

	for i := 0; i < 5; i++ {
		q.BookingCreated(testAppointment(), "Yoga")
	}
	q.Close()

	require.Len(t, ins.recorded(), 5)
}

func TestCloseIsIdempotent(t *testing.T) {
	q := NewQueue(&recordingInserter{}, zerolog.Nop(), nil, Options{})
	q.Close()
	q.Close()
}

func TestNilInserterConsumesWithoutPanic(t *testing.T) {
	q := NewQueue(nil, zerolog.Nop(), nil, Options{})
	q.BookingCreated(testAppointment(), "Yoga")
	q.Close()
}
