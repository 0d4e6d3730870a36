package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	ActionLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "astropull",
			Subsystem: "dashboard",
			Name:      "action_latency_seconds",
			Help:      "Latency of dashboard actions",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15},
		},
		[]string{"action"},
	)

	ActionErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "astropull",
			Subsystem: "dashboard",
			Name:      "action_errors_total",
			Help:      "Failed dashboard actions by error code",
		},
		[]string{"action", "code"},
	)
)

func Register() {
	once.Do(func() {
		prometheus.MustRegister(ActionLatency, ActionErrors)
	})
}

// Observe records how long action took since start and, when code is set, a failure.
func Observe(action string, start time.Time, code string) {
	ActionLatency.WithLabelValues(action).Observe(time.Since(start).Seconds())
	if code != "" {
		ActionErrors.WithLabelValues(action, code).Inc()
	}
}
