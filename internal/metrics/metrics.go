package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingsCommitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "bookings_committed_total",
			Help:      "Bookings committed to the store, by turf size.",
		},
		[]string{"turf"},
	)

	bookingsCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "bookings_cancelled_total",
			Help:      "Bookings removed from the store.",
		},
	)

	commitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "commit_rejections_total",
			Help:      "Commit attempts that did not produce a record, by reason.",
		},
		[]string{"reason"},
	)

	snapshotWriteFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "snapshot_write_failures_total",
			Help:      "Persisted snapshot writes that failed after retries.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "turfbook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			bookingsCommitted,
			bookingsCancelled,
			commitRejections,
			snapshotWriteFailures,
			httpRequests,
		)
	})
}

// IncCommitted increments the committed-bookings counter for a turf size.
func IncCommitted(turf string) {
	bookingsCommitted.WithLabelValues(turf).Inc()
}

// IncCancelled increments the cancelled-bookings counter.
func IncCancelled() {
	bookingsCancelled.Inc()
}

// IncRejected counts a failed commit attempt; reason is "validation" or "conflict".
func IncRejected(reason string) {
	commitRejections.WithLabelValues(reason).Inc()
}

// IncSnapshotWriteFailure counts an exhausted snapshot write.
func IncSnapshotWriteFailure() {
	snapshotWriteFailures.Inc()
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}
