package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	syncEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vartex",
		Subsystem: "sync",
		Name:      "events_total",
		Help:      "Count of sync orchestrator events: imports, polls, fork resolutions.",
	}, []string{"operation", "status"})
	syncEventDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vartex",
		Subsystem: "sync",
		Name:      "event_duration_seconds",
		Help:      "Duration of sync orchestrator events.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation", "status"})
)

// Sync tracks metrics for internal/sync orchestrator events.
type Sync struct{}

// NewSync constructs a Sync metrics collector.
func NewSync() *Sync {
	return &Sync{}
}

// Observe records duration and status of one orchestrator event.
func (m Sync) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	syncEventsTotal.WithLabelValues(operation, status).Inc()
	syncEventDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
