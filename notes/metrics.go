package notes

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	notesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcp_verify_notes_total",
			Help: "Total verification notes emitted, by code and severity.",
		},
		[]string{"code", "severity"},
	)

	runsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dcp_verify_runs_total",
			Help: "Total verification runs, by outcome.",
		},
		[]string{"outcome"},
	)

	runDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "dcp_verify_run_duration_seconds",
			Help:    "Wall-clock duration of a single directory's verification run.",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
)

// RecordMetrics publishes every note in the collector to the default
// prometheus registry and records the run's outcome. outcome is a small,
// caller-chosen label such as "pass", "bv21_error", or "error" - the
// collector itself has no notion of what counts as a gate failure.
func (c *Collector) RecordMetrics(outcome string, durationSeconds float64) {
	for _, n := range c.notes {
		notesTotal.WithLabelValues(n.Code, n.Severity.String()).Inc()
	}
	runsTotal.WithLabelValues(outcome).Inc()
	runDuration.Observe(durationSeconds)
}
