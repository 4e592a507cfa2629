package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Run outcomes recorded on PipelineRuns.
const (
	OutcomeSaved     = "saved"
	OutcomeFailed    = "failed"
	OutcomeDuplicate = "duplicate"
)

var (
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glam_pipeline_runs_total",
			Help: "Pipeline runs by outcome and the stage they ended in",
		},
		[]string{"outcome", "stage"},
	)

	StageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "glam_pipeline_stage_duration_seconds",
			Help: "Time spent in each pipeline stage",
			// Generation dominates; it can take tens of seconds.
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20, 40, 60},
		},
		[]string{"stage"},
	)

	UploadsIssued = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glam_uploads_issued_total",
			Help: "Upload credentials issued",
		},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "glam_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "glam_circuit_breaker_requests_total",
			Help: "Requests through a circuit breaker by result (success, failure, rejected)",
		},
		[]string{"name", "result"},
	)
)
