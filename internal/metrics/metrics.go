// Package metrics declares the Prometheus collectors exported by the API
// server and the worker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for TasksSubmittedTotal.
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
)

var (
	// HTTPRequestsTotal counts handled HTTP requests by route pattern, method and status code.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests handled by the API server.",
		},
		[]string{"path", "method", "code"},
	)

	// TasksSubmittedTotal counts dispatch attempts.
	TasksSubmittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "tasks_submitted_total",
			Help:      "Total number of task submissions by task name, backend and outcome.",
		},
		[]string{"task", "backend", "outcome"},
	)

	// TaskExecutionsTotal counts finished executions; status is completed or failed.
	TaskExecutionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "taskapi",
			Name:      "task_executions_total",
			Help:      "Total number of task executions by task name and final status.",
		},
		[]string{"task", "status"},
	)
)

// ObserveSubmission records one dispatch attempt.
func ObserveSubmission(task, backend string, err error) {
	outcome := OutcomeAccepted
	if err != nil {
		outcome = OutcomeRejected
	}
	TasksSubmittedTotal.WithLabelValues(task, backend, outcome).Inc()
}
