package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	outcomeOK          = "ok"
	outcomeError       = "error"
	outcomeUnreachable = "unreachable"
)

var (
	requestsTotal = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "backend_requests_total",
			Help: "Number of calls to the remote admin backend by resource, method and outcome.",
		},
		[]string{"resource", "method", "outcome"},
	)

	requestDuration = promauto.NewHistogramVec( //nolint:gochecknoglobals
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Duration of calls to the remote admin backend.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"resource", "method"},
	)

	up = promauto.NewGauge( //nolint:gochecknoglobals
		prometheus.GaugeOpts{
			Name: "backend_up",
			Help: "1 if the last health probe of the remote admin backend succeeded.",
		},
	)

	fallbackOperations = promauto.NewCounterVec( //nolint:gochecknoglobals
		prometheus.CounterOpts{
			Name: "fallback_operations_total",
			Help: "Number of requests served from the in-memory fallback store.",
		},
		[]string{"resource", "operation"},
	)
)

// CountFallback records a request answered from the fallback store.
func CountFallback(resource, operation string) {
	fallbackOperations.WithLabelValues(resource, operation).Inc()
}
