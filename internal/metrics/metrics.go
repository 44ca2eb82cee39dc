package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotbook_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "slotbook_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotbook_bookings_total",
			Help: "Total number of bookings created",
		},
		[]string{"status"},
	)

	BookingCancellationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotbook_booking_cancellations_total",
			Help: "Total number of booking cancellations",
		},
	)

	SessionsCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotbook_sessions_created_total",
			Help: "Total number of sessions created",
		},
	)

	SessionConflictsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotbook_session_conflicts_total",
			Help: "Total number of session create/update attempts rejected for overlap",
		},
	)

	CapacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "slotbook_capacity_rejections_total",
			Help: "Total number of bookings rejected because the session was full",
		},
	)

	CacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slotbook_availability_cache_lookups_total",
			Help: "Availability cache lookups by result",
		},
		[]string{"result"},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordBooking(status string) {
	BookingsTotal.WithLabelValues(status).Inc()
}

func RecordBookingCancellation() {
	BookingCancellationsTotal.Inc()
}

func RecordSessionCreated() {
	SessionsCreatedTotal.Inc()
}

func RecordSessionConflict() {
	SessionConflictsTotal.Inc()
}

// RecordCacheLookups counts availability cache outcomes for one batched read.
func RecordCacheLookups(hits, misses int) {
	if hits > 0 {
		CacheLookupsTotal.WithLabelValues("hit").Add(float64(hits))
	}
	if misses > 0 {
		CacheLookupsTotal.WithLabelValues("miss").Add(float64(misses))
	}
}

func RecordCapacityRejection() {
	CapacityRejectionsTotal.Inc()
}
