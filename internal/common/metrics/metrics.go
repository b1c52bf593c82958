package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for IntentResolutions.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

var (
	IntentResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "intent_resolutions_total",
			Help: "Total number of resolved queries by intent and outcome",
		},
		[]string{"intent", "outcome", "error_code"},
	)

	IntentResolutionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "intent_resolution_duration_seconds",
			Help:    "Duration of query resolution including the data provider call",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"intent"},
	)

	EWebRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eweb_requests_total",
			Help: "Total number of eWeb API requests by endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	EWebRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eweb_request_duration_seconds",
			Help:    "Duration of eWeb API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	EWebCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eweb_cache_lookups_total",
			Help: "Response cache lookups by result (hit, miss, error)",
		},
		[]string{"result"},
	)

	WorkerJobsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "worker_jobs_active",
			Help: "Number of active jobs per worker",
		},
		[]string{"task_type"},
	)
)
