package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// toolCallsTotal counts scanned tool calls.
	// Labels: kind (web, code, azure), validity (valid, invalid)
	toolCallsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aule",
		Subsystem: "serve",
		Name:      "tool_calls_total",
		Help:      "Tool calls scanned from model output by kind and validity",
	}, []string{"kind", "validity"})

	// coercionFallbacks counts tool bodies that were not valid JSON.
	coercionFallbacks = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aule",
		Subsystem: "serve",
		Name:      "coercion_fallbacks_total",
		Help:      "Tool bodies wrapped as raw content after a JSON parse failure",
	}, []string{"kind"})

	// dispatchTotal counts router outcomes.
	// Labels: channel (web, azure, or empty when not routed), status
	dispatchTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "aule",
		Subsystem: "serve",
		Name:      "dispatch_total",
		Help:      "Tool call dispatch outcomes by channel and status",
	}, []string{"channel", "status"})

	// publishLatencySeconds measures acquire+publish+release per call.
	publishLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "aule",
		Subsystem: "serve",
		Name:      "publish_latency_seconds",
		Help:      "Channel publish latency including handle acquire and release",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
	}, []string{"channel"})

	// completionLatencySeconds measures chat completion calls.
	completionLatencySeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "aule",
		Subsystem: "serve",
		Name:      "completion_latency_seconds",
		Help:      "Chat completion latency",
		Buckets:   []float64{0.5, 1, 2, 5, 10, 30, 60, 120},
	})
)

func validityLabel(valid bool) string {
	if valid {
		return "valid"
	}
	return "invalid"
}
