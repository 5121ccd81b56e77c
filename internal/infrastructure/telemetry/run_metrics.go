// Package telemetry records per-run pipeline metrics in a Prometheus registry.
// Batch runs are too short to be scraped, so the registry is written out as a
// node-exporter textfile at the end of a run.
package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus metric names
const (
	MetricRowsReadTotal       = "taxpayers_rows_read_total"
	MetricRowsInsertedTotal   = "taxpayers_rows_inserted_total"
	MetricDuplicatesTotal     = "taxpayers_duplicates_skipped_total"
	MetricFilesMissingTotal   = "taxpayers_files_missing_total"
	MetricFilesWrittenTotal   = "taxpayers_files_written_total"
	MetricStepDurationSeconds = "taxpayers_step_duration_seconds"
	MetricLastRunTimestamp    = "taxpayers_last_run_timestamp_seconds"
)

// StepLoad labels rows counted while filling the relational database
const StepLoad = "load"

// RunMetrics holds the counters of one pipeline run
type RunMetrics struct {
	registry *prometheus.Registry

	rowsRead      *prometheus.CounterVec
	rowsInserted  *prometheus.CounterVec
	duplicates    *prometheus.CounterVec
	filesMissing  *prometheus.CounterVec
	filesWritten  *prometheus.CounterVec
	stepDuration  *prometheus.HistogramVec
	lastRunFinish prometheus.Gauge
}

// NewRunMetrics creates a RunMetrics backed by its own registry
func NewRunMetrics() *RunMetrics {
	m := &RunMetrics{
		registry: prometheus.NewRegistry(),
		rowsRead: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRowsReadTotal,
			Help: "Rows decoded from input files, by the step that read them.",
		}, []string{"step", "category"}),
		rowsInserted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricRowsInsertedTotal,
			Help: "Rows inserted into the relational database.",
		}, []string{"category"}),
		duplicates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricDuplicatesTotal,
			Help: "Rows skipped because their registration number was already present.",
		}, []string{"category"}),
		filesMissing: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFilesMissingTotal,
			Help: "Expected input files that did not exist, by the step that looked for them.",
		}, []string{"step", "category"}),
		filesWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: MetricFilesWrittenTotal,
			Help: "Output files written, by kind.",
		}, []string{"kind"}),
		stepDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    MetricStepDurationSeconds,
			Help:    "Duration of pipeline steps in seconds.",
			Buckets: []float64{0.1, 0.5, 1, 5, 15, 30, 60, 180, 600},
		}, []string{"step"}),
		lastRunFinish: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: MetricLastRunTimestamp,
			Help: "Unix time the last run finished.",
		}),
	}

	m.registry.MustRegister(
		m.rowsRead,
		m.rowsInserted,
		m.duplicates,
		m.filesMissing,
		m.filesWritten,
		m.stepDuration,
		m.lastRunFinish,
	)
	return m
}

// Registry returns the underlying registry
func (m *RunMetrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveLoad records the outcome of loading one category file
func (m *RunMetrics) ObserveLoad(category string, read, inserted, duplicates int, missing bool) {
	if missing {
		m.ObserveMissing(StepLoad, category)
		return
	}
	m.ObserveRead(StepLoad, category, read)
	m.rowsInserted.WithLabelValues(category).Add(float64(inserted))
	m.duplicates.WithLabelValues(category).Add(float64(duplicates))
}

// ObserveRead records rows decoded by a step. Steps that reread the same
// inputs count under their own label.
func (m *RunMetrics) ObserveRead(step, category string, read int) {
	m.rowsRead.WithLabelValues(step, category).Add(float64(read))
}

// ObserveMissing records an absent input file
func (m *RunMetrics) ObserveMissing(step, category string) {
	m.filesMissing.WithLabelValues(step, category).Inc()
}

// FileWritten counts one output file of the given kind (parquet, json, ...)
func (m *RunMetrics) FileWritten(kind string) {
	m.filesWritten.WithLabelValues(kind).Inc()
}

// ObserveStep records how long a step took
func (m *RunMetrics) ObserveStep(step string, d time.Duration) {
	m.stepDuration.WithLabelValues(step).Observe(d.Seconds())
}

// TimeStep starts timing a step; call the returned func when it finishes
func (m *RunMetrics) TimeStep(step string) func() {
	start := time.Now()
	return func() {
		m.ObserveStep(step, time.Since(start))
	}
}

// WriteTextfile stamps the finish time and writes the registry in the text
// exposition format. The write is atomic, as node-exporter requires.
func (m *RunMetrics) WriteTextfile(path string) error {
	m.lastRunFinish.SetToCurrentTime()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
