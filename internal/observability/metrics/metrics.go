package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking workflow.
type BookingMetrics struct {
	sessionsReserved *prometheus.CounterVec
	slotConflicts    prometheus.Counter
	calendarSync     *prometheus.CounterVec
	reserveLatency   prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		sessionsReserved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "booking",
			Name:      "sessions_reserved_total",
			Help:      "Appointments created through the booking workflow",
		}, []string{"outcome"}),
		slotConflicts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "booking",
			Name:      "slot_conflicts_total",
			Help:      "Reservations rejected because a chosen slot was taken",
		}),
		calendarSync: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "studio",
			Subsystem: "calendar",
			Name:      "sync_total",
			Help:      "Calendar sync deliveries by status",
		}, []string{"status"}),
		reserveLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "studio",
			Subsystem: "booking",
			Name:      "reserve_latency_seconds",
			Help:      "Latency of reserve operations",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.sessionsReserved, m.slotConflicts, m.calendarSync, m.reserveLatency)
	return m
}

func (m *BookingMetrics) ObserveReserved(count int) {
	if m == nil {
		return
	}
	m.sessionsReserved.WithLabelValues("created").Add(float64(count))
}

func (m *BookingMetrics) ObserveConflict() {
	if m == nil {
		return
	}
	m.slotConflicts.Inc()
}

func (m *BookingMetrics) ObserveCalendarSync(status string) {
	if m == nil {
		return
	}
	m.calendarSync.WithLabelValues(status).Inc()
}

func (m *BookingMetrics) ObserveReserveLatency(seconds float64) {
	if m == nil {
		return
	}
	m.reserveLatency.Observe(seconds)
}
