package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Oracle call metrics
	OracleRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_oracle_requests_total",
			Help: "Total number of oracle verification requests",
		},
		[]string{"purpose", "status"},
	)

	OracleRequestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronicle_oracle_request_duration_seconds",
			Help:    "Duration of oracle requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	OracleResponseBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronicle_oracle_response_bytes_total",
			Help: "Total bytes of oracle response payloads",
		},
	)

	// Resolution metrics
	ResolutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chronicle_resolutions_total",
			Help: "Total number of resolution attempts by terminal state",
		},
		[]string{"state"},
	)

	ResolutionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chronicle_resolution_duration_seconds",
			Help:    "Duration of single-event resolutions in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Bulk run metrics
	BulkEventsProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chronicle_bulk_events_processed_total",
			Help: "Total events processed by bulk resolution runs",
		},
	)
)
