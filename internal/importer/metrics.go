package importer

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/kosarica/catalog-import/internal/types"
)

var (
	// jobsTotal counts finished import jobs by final status.
	jobsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_jobs_total",
		Help: "Total number of import jobs by final status",
	}, []string{"status"})

	// jobDuration tracks how long import jobs take.
	jobDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "catalog_import_job_duration_seconds",
		Help:    "Time taken to run an import job by final status",
		Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 120, 300},
	}, []string{"status"})

	// rowsTotal counts processed rows by row status.
	rowsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_rows_total",
		Help: "Total number of catalog rows by outcome",
	}, []string{"status"})

	// matchesTotal counts row match methods.
	matchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_import_matches_total",
		Help: "Total number of rows by match method",
	}, []string{"method"})

	// matchConfidence tracks the confidence of accepted matches.
	matchConfidence = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "catalog_import_match_confidence",
		Help:    "Confidence of accepted matches",
		Buckets: []float64{0.7, 0.75, 0.8, 0.85, 0.9, 0.95, 1.0},
	})

	// jobsInFlight tracks running import jobs.
	jobsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "catalog_import_jobs_in_flight",
		Help: "Number of import jobs currently processing",
	})
)

// MetricsRecorder provides methods to record import metrics.
type MetricsRecorder struct{}

// NewMetricsRecorder creates a new metrics recorder.
func NewMetricsRecorder() *MetricsRecorder {
	return &MetricsRecorder{}
}

// JobStarted marks a job as in flight.
func (m *MetricsRecorder) JobStarted() {
	jobsInFlight.Inc()
}

// JobFinished records a job's final status and duration.
func (m *MetricsRecorder) JobFinished(status types.ImportStatus, duration time.Duration) {
	jobsInFlight.Dec()
	jobsTotal.WithLabelValues(string(status)).Inc()
	jobDuration.WithLabelValues(string(status)).Observe(duration.Seconds())
}

// RecordRow records one row outcome.
func (m *MetricsRecorder) RecordRow(row types.RowResult) {
	rowsTotal.WithLabelValues(string(row.Status)).Inc()
	matchesTotal.WithLabelValues(string(row.MatchMethod)).Inc()
	if row.MatchMethod != types.MatchNone {
		matchConfidence.Observe(row.MatchConfidence)
	}
}
