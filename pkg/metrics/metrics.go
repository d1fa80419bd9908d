package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all engine metrics
type Metrics struct {
	// Dispatch metrics
	ProtocolsEvaluated *prometheus.CounterVec
	ProtocolFailures   *prometheus.CounterVec
	DispatchLatency    prometheus.Histogram

	// Update emission metrics
	UpdatesEmitted *prometheus.CounterVec
	UpdatesFailed  *prometheus.CounterVec

	// Adapter metrics
	AdapterCalls   *prometheus.CounterVec
	AdapterLatency *prometheus.HistogramVec
}

// NewMetrics creates and registers all engine metrics
func NewMetrics(namespace, subsystem string) *Metrics {
	return &Metrics{
		ProtocolsEvaluated: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "protocols_evaluated_total",
			Help:      "Total protocol evaluations by resulting status",
		}, []string{"status"}),
		ProtocolFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "protocol_failures_total",
			Help:      "Total protocol evaluations that raised",
		}, []string{"protocol"}),
		DispatchLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "dispatch_duration_seconds",
			Help:      "Time spent running one dispatch pass",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}),
		UpdatesEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "updates_emitted_total",
			Help:      "Total updates committed, by update kind",
		}, []string{"kind"}),
		UpdatesFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "updates_failed_total",
			Help:      "Total update commits that failed, by update kind",
		}, []string{"kind"}),
		AdapterCalls: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "adapter_calls_total",
			Help:      "Adapter calls by adapter and outcome",
		}, []string{"adapter", "outcome"}),
		AdapterLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "adapter_call_duration_seconds",
			Help:      "Adapter call latency",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"adapter"}),
	}
}
