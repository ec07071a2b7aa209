package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	storeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vartex",
		Subsystem: "store",
		Name:      "operations_total",
		Help:      "Count of ClickHouse store operations.",
	}, []string{"operation", "status"})
	storeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vartex",
		Subsystem: "store",
		Name:      "operation_duration_seconds",
		Help:      "Duration of ClickHouse store operations.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15, 20, 30},
	}, []string{"operation", "status"})
)

// Store tracks metrics for internal/store operations.
type Store struct{}

// NewStore constructs a Store metrics collector.
func NewStore() *Store {
	return &Store{}
}

// Observe records duration and status of a store operation.
func (m Store) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	storeRequestsTotal.WithLabelValues(operation, status).Inc()
	storeRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
