// Package calendarsync pushes booked appointments to an external calendar.
// Delivery is best-effort: enqueueing never blocks a booking, failures are
// logged and counted, and nothing here can roll a booking back.
package calendarsync

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"studio-booking-service/internal/appointment"
	"studio-booking-service/internal/observability/metrics"
)

// Event is one calendar entry to create.
type Event struct {
	AppointmentID string
	Summary       string
	Description   string
	StartAt       time.Time
	EndAt         time.Time
}

// Inserter creates the event in the external calendar.
type Inserter interface {
	Insert(ctx context.Context, ev Event) error
}

// Queue delivers events from a buffered channel on a single worker
// goroutine, retrying each a bounded number of times.
type Queue struct {
	inserter Inserter
	logger   zerolog.Logger
	metrics  *metrics.BookingMetrics

	jobs    chan Event
	wg      sync.WaitGroup
	once    sync.Once
	retries int
	backoff time.Duration
	timeout time.Duration
}

// Options tune queue behavior; zero values get defaults.
type Options struct {
	QueueSize int
	Retries   int
	Backoff   time.Duration
	Timeout   time.Duration
}

func NewQueue(inserter Inserter, logger zerolog.Logger, m *metrics.BookingMetrics, opts Options) *Queue {
	if opts.QueueSize <= 0 {
		opts.QueueSize = 64
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.Backoff <= 0 {
		opts.Backoff = 2 * time.Second
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	q := &Queue{
		inserter: inserter,
		logger:   logger,
		metrics:  m,
		jobs:     make(chan Event, opts.QueueSize),
		retries:  opts.Retries,
		backoff:  opts.Backoff,
		timeout:  opts.Timeout,
	}
	q.wg.Add(1)
	go q.run()
	return q
}

// BookingCreated enqueues a sync for a freshly created appointment. It
// never blocks: when the queue is full the event is dropped with a warning.
func (q *Queue) BookingCreated(appt appointment.Appointment, typeName string) {
	ev := Event{
		AppointmentID: appt.ID,
		Summary:       typeName,
		Description:   "Booked via studio-booking-service",
		StartAt:       appt.StartAt,
		EndAt:         appt.EndAt,
	}
	select {
	case q.jobs <- ev:
	default:
		q.logger.Warn().Str("appointment_id", ev.AppointmentID).Msg("calendar sync queue full, dropping event")
		q.metrics.ObserveCalendarSync("dropped")
	}
}

// Close stops accepting events and waits for in-flight deliveries.
func (q *Queue) Close() {
	q.once.Do(func() { close(q.jobs) })
	q.wg.Wait()
}

func (q *Queue) run() {
	defer q.wg.Done()
	for ev := range q.jobs {
		q.deliver(ev)
	}
}

func (q *Queue) deliver(ev Event) {
	if q.inserter == nil {
		return
	}
	var err error
	for attempt := 0; attempt <= q.retries; attempt++ {
		if attempt > 0 {
			time.Sleep(q.backoff)
		}
		ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
		err = q.inserter.Insert(ctx, ev)
		cancel()
		if err == nil {
			q.logger.Info().Str("appointment_id", ev.AppointmentID).Msg("calendar event created")
			q.metrics.ObserveCalendarSync("ok")
			return
		}
		q.logger.Warn().Err(err).Str("appointment_id", ev.AppointmentID).Int("attempt", attempt+1).Msg("calendar sync attempt failed")
	}
	q.logger.Error().Err(err).Str("appointment_id", ev.AppointmentID).Msg("calendar sync failed, giving up")
	q.metrics.ObserveCalendarSync("failed")
}
