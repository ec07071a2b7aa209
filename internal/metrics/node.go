package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	nodeRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vartex",
		Subsystem: "node_client",
		Name:      "requests_total",
		Help:      "Count of requests made to the remote chain node.",
	}, []string{"operation", "status"})
	nodeRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vartex",
		Subsystem: "node_client",
		Name:      "request_duration_seconds",
		Help:      "Duration of requests made to the remote chain node.",
		Buckets:   []float64{.01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 15},
	}, []string{"operation", "status"})
)

// Node tracks metrics for internal/node client calls.
type Node struct{}

// NewNode constructs a Node metrics collector.
func NewNode() *Node {
	return &Node{}
}

// Observe records duration and status of one node client call.
func (m Node) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	nodeRequestsTotal.WithLabelValues(operation, status).Inc()
	nodeRequestDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
