package service

import "github.com/prometheus/client_golang/prometheus"

const (
	outcomeBooked     = "booked"
	outcomeSlotFull   = "slot_full"
	outcomeSlotLocked = "slot_locked"
	outcomeInvalid    = "invalid"
	outcomeError      = "error"
)

// Metrics is safe to use as a nil pointer; every method is then a no-op.
type Metrics struct {
	bookings       *prometheus.CounterVec
	lockReclaims   prometheus.Counter
	locksSwept     prometheus.Counter
	bookingLatency prometheus.Histogram
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "session_booking_attempts_total",
				Help: "Booking attempts by outcome",
			},
			[]string{"outcome"},
		),
		lockReclaims: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_lock_reclaims_total",
			Help: "Expired booking locks reclaimed during acquisition",
		}),
		locksSwept: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "booking_locks_swept_total",
			Help: "Expired booking locks deleted by the sweeper",
		}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "session_booking_duration_seconds",
			Help:    "Time spent in the booking coordinator",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.bookings, m.lockReclaims, m.locksSwept, m.bookingLatency)
	return m
}

func (m *Metrics) bookingOutcome(outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.bookings.WithLabelValues(outcome).Inc()
	m.bookingLatency.Observe(seconds)
}

func (m *Metrics) lockReclaimed() {
	if m == nil {
		return
	}
	m.lockReclaims.Inc()
}

func (m *Metrics) swept(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.locksSwept.Add(float64(n))
}
