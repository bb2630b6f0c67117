package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the pipeline's prometheus collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	BookingsStored       *prometheus.CounterVec
	BookingStorageFailed prometheus.Counter
	StorageAttempts      *prometheus.CounterVec
	PassengersSaved      prometheus.Counter
	TicketsIssued        prometheus.Counter
	DocumentsRendered    *prometheus.CounterVec
	EmailsSent           *prometheus.CounterVec
	PipelineDuration     prometheus.Histogram
}

// New registers the collectors on reg. Pass prometheus.NewRegistry() in tests.
func New(namespace string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		BookingsStored: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_stored_total",
			Help:      "Bookings durably stored, by storage target and insertion method",
		}, []string{"target", "method"}),
		BookingStorageFailed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "bookings_storage_failed_total",
			Help:      "Submissions for which every storage target failed",
		}),
		StorageAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "storage_attempts_total",
			Help:      "Storage attempts per target and outcome",
		}, []string{"target", "outcome"}),
		PassengersSaved: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passengers_saved_total",
			Help:      "Passenger rows persisted",
		}),
		TicketsIssued: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tickets_issued_total",
			Help:      "Tickets written or re-issued",
		}),
		DocumentsRendered: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_rendered_total",
			Help:      "Travel documents rendered, by layout",
		}, []string{"layout"}),
		EmailsSent: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "emails_sent_total",
			Help:      "Ticket email delivery attempts, by status",
		}, []string{"status"}),
		PipelineDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "booking_pipeline_duration_seconds",
			Help:      "Time spent in the booking creation pipeline",
			Buckets:   prometheus.DefBuckets,
		}),
	}
}

func (m *Metrics) ObserveStored(target, method string) {
	if m == nil {
		return
	}
	m.BookingsStored.WithLabelValues(target, method).Inc()
}

func (m *Metrics) ObserveStorageFailed() {
	if m == nil {
		return
	}
	m.BookingStorageFailed.Inc()
}

func (m *Metrics) ObserveAttempt(target, outcome string) {
	if m == nil {
		return
	}
	m.StorageAttempts.WithLabelValues(target, outcome).Inc()
}

func (m *Metrics) AddPassengers(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.PassengersSaved.Add(float64(n))
}

func (m *Metrics) ObserveTicket() {
	if m == nil {
		return
	}
	m.TicketsIssued.Inc()
}

func (m *Metrics) ObserveDocument(layout string) {
	if m == nil {
		return
	}
	m.DocumentsRendered.WithLabelValues(layout).Inc()
}

func (m *Metrics) ObserveEmail(status string) {
	if m == nil {
		return
	}
	m.EmailsSent.WithLabelValues(status).Inc()
}

func (m *Metrics) ObservePipeline(seconds float64) {
	if m == nil {
		return
	}
	m.PipelineDuration.Observe(seconds)
}
