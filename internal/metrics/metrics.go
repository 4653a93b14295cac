// Package metrics holds the Prometheus collectors for storykeeper operations.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/HendryAvila/storykeeper/internal/knowledge"
)

// Transports label values.
const (
	TransportMCP  = "mcp"
	TransportHTTP = "http"
	TransportCLI  = "cli"
)

// Result label values.
const (
	ResultOK             = "ok"
	ResultInvalidInput   = "invalid_input"
	ResultNotFound       = "not_found"
	ResultInfrastructure = "infrastructure_error"
)

var (
	// operationsTotal counts engine and registry operations.
	// Labels: operation, transport (mcp, http, cli), result
	operationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storykeeper",
		Name:      "operations_total",
		Help:      "Total operations by name, transport and result",
	}, []string{"operation", "transport", "result"})

	// operationDuration measures operation latency.
	// Labels: operation, transport
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "storykeeper",
		Name:      "operation_duration_seconds",
		Help:      "Operation latency in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"operation", "transport"})

	// sceneFindingsTotal counts validator findings.
	// Labels: severity (critical, high, medium)
	sceneFindingsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "storykeeper",
		Name:      "scene_findings_total",
		Help:      "Scene validation findings by severity",
	}, []string{"severity"})
)

// Result maps an operation error to its result label.
func Result(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case knowledge.IsValidationInput(err):
		return ResultInvalidInput
	case knowledge.IsNotFound(err):
		return ResultNotFound
	default:
		return ResultInfrastructure
	}
}

// ObserveOperation records one finished operation that started at start.
func ObserveOperation(operation, transport string, start time.Time, err error) {
	operationsTotal.WithLabelValues(operation, transport, Result(err)).Inc()
	operationDuration.WithLabelValues(operation, transport).Observe(time.Since(start).Seconds())
}

// RecordFindings counts the violations and warnings of a scene validation.
func RecordFindings(res *knowledge.ValidationResult) {
	if res == nil {
		return
	}
	for _, f := range res.Violations {
		sceneFindingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
	for _, f := range res.Warnings {
		sceneFindingsTotal.WithLabelValues(string(f.Severity)).Inc()
	}
}
