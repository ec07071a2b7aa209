package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	doctorChecksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vartex",
		Subsystem: "doctor",
		Name:      "checks_total",
		Help:      "Count of gap-detection and hash-verification checks run by the doctor.",
	}, []string{"operation", "status"})
	doctorCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vartex",
		Subsystem: "doctor",
		Name:      "check_duration_seconds",
		Help:      "Duration of doctor checks.",
		Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
	}, []string{"operation", "status"})
)

// Doctor tracks metrics for internal/doctor checks.
type Doctor struct{}

// NewDoctor constructs a Doctor metrics collector.
func NewDoctor() *Doctor {
	return &Doctor{}
}

// Observe records duration and status of one doctor check.
func (m Doctor) Observe(operation string, err error, started time.Time) {
	status := "success"
	if err != nil {
		status = "error"
	}

	doctorChecksTotal.WithLabelValues(operation, status).Inc()
	doctorCheckDuration.WithLabelValues(operation, status).Observe(time.Since(started).Seconds())
}
