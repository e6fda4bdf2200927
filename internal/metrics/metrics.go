package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabanas",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookingWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "cabanas",
			Name:      "booking_writes_total",
			Help:      "Booking mutations by operation.",
		},
		[]string{"operation"},
	)

	overlapRejections = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "cabanas",
			Name:      "overlap_rejections_total",
			Help:      "Writes rejected because the cabin was already booked.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookingWrites, overlapRejections)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncWrite counts a completed booking mutation.
func IncWrite(operation string) {
	bookingWrites.WithLabelValues(operation).Inc()
}

// IncOverlapRejection counts a write refused by the overlap check.
func IncOverlapRejection() {
	overlapRejections.Inc()
}
