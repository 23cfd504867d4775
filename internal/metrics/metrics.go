package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	availabilityDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prenota",
			Name:      "availability_decisions_total",
			Help:      "Count of availability decisions by mode and outcome.",
		},
		[]string{"mode", "outcome"},
	)

	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prenota",
			Name:      "booking_transitions_total",
			Help:      "Count of bookings entering each status.",
		},
		[]string{"status"},
	)

	bookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "prenota",
			Name:      "booking_confirm_conflicts_total",
			Help:      "Count of confirmations refused because the tables were taken meanwhile.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "prenota",
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler and status code class.",
		},
		[]string{"handler", "code"},
	)

	lockWait = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "prenota",
			Name:      "date_lock_wait_seconds",
			Help:      "Time spent waiting for the per-date booking lock.",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(availabilityDecisions, bookingTransitions, bookingConflicts, httpRequests, lockWait)
	})
}

func IncDecision(mode string, available bool) {
	outcome := "rejected"
	if available {
		outcome = "available"
	}
	availabilityDecisions.WithLabelValues(mode, outcome).Inc()
}

func IncTransition(status string) {
	bookingTransitions.WithLabelValues(status).Inc()
}

func IncConflict() {
	bookingConflicts.Inc()
}

func IncHTTP(handler string, code int) {
	httpRequests.WithLabelValues(handler, codeClass(code)).Inc()
}

func ObserveLockWait(d time.Duration) {
	lockWait.Observe(d.Seconds())
}

func codeClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}
