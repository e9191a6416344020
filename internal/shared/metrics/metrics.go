package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry = prometheus.NewRegistry()

	gradingStartedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eduqa",
		Subsystem: "grading",
		Name:      "started_total",
		Help:      "Total grading runs started",
	})
	gradingCompletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eduqa",
		Subsystem: "grading",
		Name:      "completed_total",
		Help:      "Total grading runs that exited with status 0",
	})
	gradingFailedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eduqa",
		Subsystem: "grading",
		Name:      "failed_total",
		Help:      "Total grading runs that failed, by reason",
	}, []string{"reason"})
	gradingDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "eduqa",
		Subsystem: "grading",
		Name:      "duration_seconds",
		Help:      "Wall time of the grading process",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})
	panicsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "eduqa",
		Subsystem: "http",
		Name:      "panics_total",
		Help:      "Handler panics recovered, by route",
	}, []string{"route"})
	cleanupFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "eduqa",
		Subsystem: "storage",
		Name:      "cleanup_failures_total",
		Help:      "Transient files that could not be deleted",
	})
)

func init() {
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		gradingStartedTotal,
		gradingCompletedTotal,
		gradingFailedTotal,
		gradingDuration,
		cleanupFailuresTotal,
		panicsTotal,
	)
}

// Failure reasons for IncGradingFailed.
const (
	ReasonExit  = "exit"
	ReasonStart = "start"
	ReasonStore = "store"
)

// IncGradingStarted increments the started counter.
func IncGradingStarted() {
	gradingStartedTotal.Inc()
}

// IncGradingCompleted increments the completed counter.
func IncGradingCompleted() {
	gradingCompletedTotal.Inc()
}

// IncGradingFailed increments the failed counter for reason.
func IncGradingFailed(reason string) {
	gradingFailedTotal.WithLabelValues(reason).Inc()
}

// ObserveGradingDurationSeconds records a grading run duration.
func ObserveGradingDurationSeconds(value float64) {
	if value < 0 {
		value = 0
	}
	gradingDuration.Observe(value)
}

// IncCleanupFailures counts a transient file that survived cleanup.
func IncCleanupFailures() {
	cleanupFailuresTotal.Inc()
}

// IncPanics counts a recovered panic. Unmatched routes are reported as "unmatched".
func IncPanics(route string) {
	if route == "" {
		route = "unmatched"
	}
	panicsTotal.WithLabelValues(route).Inc()
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
}
