// Package metrics exposes Prometheus collectors for problem generation,
// validation and live sessions.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Duly330AI/Matheheftt-sub000/internal/models"
)

const namespace = "matheheft"

var (
	// generations counts Generate calls.
	// Labels: engine, status (ok, invalid_config, error)
	generations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "generations_total",
		Help:      "Problems generated by engine and outcome",
	}, []string{"engine", "status"})

	generationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "generation_duration_seconds",
		Help:      "Time to generate a worked problem",
		Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"engine"})

	generatedSteps = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "steps",
		Help:      "Steps per generated problem",
		Buckets:   []float64{1, 2, 5, 10, 20, 35, 50, 100},
	}, []string{"engine"})

	// validations counts validated inputs.
	// Labels: engine, outcome (correct, pending, error), error_type
	validations = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "engine",
		Name:      "validations_total",
		Help:      "Validated inputs by engine, outcome and error type",
	}, []string{"engine", "outcome", "error_type"})

	activeSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "active",
		Help:      "Live session controllers held in memory",
	})

	sessionsEnded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "sessions",
		Name:      "ended_total",
		Help:      "Sessions that left memory by final status",
	}, []string{"status"})
)

// RecordGeneration tracks one Generate call
func RecordGeneration(engineID, status string, d time.Duration, steps int) {
	generations.WithLabelValues(engineID, status).Inc()
	generationDuration.WithLabelValues(engineID).Observe(d.Seconds())
	if status == "ok" {
		generatedSteps.WithLabelValues(engineID).Observe(float64(steps))
	}
}

// RecordValidation tracks one validated input
func RecordValidation(engineID string, v models.ValidationResult) {
	validations.WithLabelValues(engineID, Outcome(v), string(v.ErrorType)).Inc()
}

// Outcome names the kind of a validation result
func Outcome(v models.ValidationResult) string {
	switch {
	case v.Correct:
		return "correct"
	case v.Pending:
		return "pending"
	}
	return "error"
}

// SessionOpened increments the live session gauge
func SessionOpened() {
	activeSessions.Inc()
}

// SessionClosed decrements the live session gauge
func SessionClosed(status models.SessionStatus) {
	activeSessions.Dec()
	sessionsEnded.WithLabelValues(string(status)).Inc()
}
