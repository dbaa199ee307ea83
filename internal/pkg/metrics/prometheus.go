package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Request outcomes
const (
	OutcomeSuccess   = "success"
	OutcomeRejected  = "server_rejected"
	OutcomeTransport = "transport"
)

var (
	// Backend client metrics
	clientRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wardroberec",
			Subsystem: "client",
			Name:      "requests_total",
			Help:      "Total number of backend calls by operation and outcome",
		},
		[]string{"operation", "outcome"},
	)

	clientRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wardroberec",
			Subsystem: "client",
			Name:      "request_duration_seconds",
			Help:      "Backend call duration in seconds",
			Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		},
		[]string{"operation"},
	)

	clientDecodeFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wardroberec",
			Subsystem: "client",
			Name:      "decode_failures_total",
			Help:      "Responses whose body did not match the expected shape",
		},
		[]string{"operation"},
	)

	// Workflow metrics
	workflowEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wardroberec",
			Subsystem: "workflow",
			Name:      "events_total",
			Help:      "Workflow transitions by flow and event",
		},
		[]string{"flow", "event"},
	)
)

// RecordClientRequest records one backend call
func RecordClientRequest(operation, outcome string, duration time.Duration) {
	clientRequestsTotal.WithLabelValues(operation, outcome).Inc()
	if duration > 0 {
		clientRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	}
}

// RecordDecodeFailure records a malformed response
func RecordDecodeFailure(operation string) {
	clientDecodeFailures.WithLabelValues(operation).Inc()
}

// RecordWorkflowEvent records a workflow transition such as an upload failure
func RecordWorkflowEvent(flow, event string) {
	workflowEventsTotal.WithLabelValues(flow, event).Inc()
}

// ClientRequests exposes the request counter for assertions
func ClientRequests() *prometheus.CounterVec {
	return clientRequestsTotal
}

// DecodeFailures exposes the decode failure counter for assertions
func DecodeFailures() *prometheus.CounterVec {
	return clientDecodeFailures
}

// WorkflowEvents exposes the workflow counter for assertions
func WorkflowEvents() *prometheus.CounterVec {
	return workflowEventsTotal
}
