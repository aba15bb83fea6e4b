package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the scheduling and booking
// flows. A nil receiver is a no-op so call sites never need nil checks.
type BookingMetrics struct {
	bookingsCreated     prometheus.Counter
	bookingsConfirmed   *prometheus.CounterVec
	bookingsCancelled   prometheus.Counter
	availabilityLatency prometheus.Histogram
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		bookingsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "created_total",
			Help:      "Total booking reservations initiated",
		}),
		bookingsConfirmed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "confirmed_total",
			Help:      "Total confirmation attempts by outcome",
		}, []string{"outcome"}),
		bookingsCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "salon",
			Subsystem: "booking",
			Name:      "cancelled_total",
			Help:      "Total customer-initiated cancellations",
		}),
		availabilityLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "salon",
			Subsystem: "scheduling",
			Name:      "availability_latency_seconds",
			Help:      "Latency of availability computation",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.bookingsCreated, m.bookingsConfirmed, m.bookingsCancelled, m.availabilityLatency)
	return m
}

func (m *BookingMetrics) ObserveCreated() {
	if m == nil {
		return
	}
	m.bookingsCreated.Inc()
}

func (m *BookingMetrics) ObserveConfirmed(outcome string) {
	if m == nil {
		return
	}
	m.bookingsConfirmed.WithLabelValues(outcome).Inc()
}

func (m *BookingMetrics) ObserveCancelled() {
	if m == nil {
		return
	}
	m.bookingsCancelled.Inc()
}

func (m *BookingMetrics) ObserveAvailabilityLatency(seconds float64) {
	if m == nil {
		return
	}
	m.availabilityLatency.Observe(seconds)
}
