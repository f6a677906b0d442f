package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shuttle"

var (
	BookingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "bookings_total", Help: "Ride booking attempts by outcome"},
		[]string{"outcome"},
	)
	RideTransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "ride_transitions_total", Help: "Ride state changes by kind"},
		[]string{"kind"},
	)
	RidesSweptTotal = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "rides_swept_total", Help: "Rides auto-completed by the sweeper"})
	SweepDuration   = promauto.NewHistogram(prometheus.HistogramOpts{Namespace: namespace, Name: "sweep_duration_seconds", Help: "Sweep latency seconds"})
	PendingDue      = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "pending_due", Help: "Pending rides due by the next departure"})

	DigestNoticesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "digest_notices_total", Help: "Digest notices emitted by kind"},
		[]string{"kind"},
	)
	NameLookupFailures = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "name_lookup_failures_total", Help: "Failed requester name lookups"})
	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{Namespace: namespace, Name: "event_publish_errors_total", Help: "Ride events that could not be published"})

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: namespace, Name: "http_requests_total", Help: "Total HTTP requests handled"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	DigestSubscribers = promauto.NewGauge(prometheus.GaugeOpts{Namespace: namespace, Name: "digest_subscribers", Help: "Connected websocket digest subscribers"})
)
