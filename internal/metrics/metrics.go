// Package metrics provides a small, backend-agnostic abstraction for recording
// operational metrics from the reporting engine.
//
// It exposes a narrow interface (Backend) for counters and timings, and a
// global pluggable backend that defaults to a no-op so instrumentation is
// always safe to call. Concrete systems live in subpackages (prompush,
// datadog) and are installed with SetBackend by the binary.
//
// Instrumented steps are the dataset load, query, stats, and export paths.
package metrics

import (
	"sync"
	"time"
)

// Labels are string key/value pairs attached to a metric.
type Labels map[string]string

// Metric names emitted by this package.
const (
	StepTotal    = "report_step_total"
	StepDuration = "report_step_duration_seconds"
	RecordsTotal = "report_records_total"
	BatchesTotal = "report_batches_total"

	// DatasetRecords is a gauge: records in the published snapshot.
	DatasetRecords = "report_dataset_records"
)

const (
	statusSuccess = "success"
	statusFailure = "failure"
)

// Backend is the minimal interface for metrics backends.
type Backend interface {
	// IncCounter increments a counter by delta.
	IncCounter(name string, delta float64, labels Labels)
	// ObserveHistogram records a value in a latency/duration style metric.
	ObserveHistogram(name string, value float64, labels Labels)
	// SetGauge sets a point-in-time value.
	SetGauge(name string, value float64, labels Labels)
	// Flush pushes or flushes metrics, if the backend needs it (e.g. Pushgateway).
	Flush() error
}

// nopBackend is used by default so metrics are optional.
type nopBackend struct{}

func (nopBackend) IncCounter(name string, delta float64, labels Labels)       {}
func (nopBackend) ObserveHistogram(name string, value float64, labels Labels) {}
func (nopBackend) SetGauge(name string, value float64, labels Labels)         {}
func (nopBackend) Flush() error                                               { return nil }

var (
	mu      sync.RWMutex
	backend Backend = nopBackend{}
)

// SetBackend installs a concrete backend. Passing nil keeps the existing backend.
func SetBackend(b Backend) {
	if b == nil {
		return
	}
	mu.Lock()
	backend = b
	mu.Unlock()
}

func current() Backend {
	mu.RLock()
	defer mu.RUnlock()
	return backend
}

// Flush delegates to the current backend.
func Flush() error {
	return current().Flush()
}

// RecordStep measures latency and success/failure of one engine step
// ("load", "query", "stats", "export") for a dataset.
func RecordStep(dataset, step string, err error, d time.Duration) {
	status := statusSuccess
	if err != nil {
		status = statusFailure
	}
	lbls := Labels{
		"dataset": dataset,
		"step":    step,
		"status":  status,
	}
	b := current()
	b.IncCounter(StepTotal, 1, lbls)
	b.ObserveHistogram(StepDuration, d.Seconds(), lbls)
}

// RecordRow increments a record-level counter for the given dataset and kind.
//
// Kinds in use:
//   - "loaded"
//   - "skipped"
//   - "unclassifiable"
//   - "exported"
func RecordRow(dataset, kind string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(RecordsTotal, float64(delta), Labels{
		"dataset": dataset,
		"kind":    kind,
	})
}

// RecordBatches increments the export batch counter for a sink.
func RecordBatches(sink string, delta int64) {
	if delta <= 0 {
		return
	}
	current().IncCounter(BatchesTotal, float64(delta), Labels{
		"sink": sink,
	})
}

// RecordSnapshot reports the size of the snapshot just published for
// dataset. A failed load reports 0.
func RecordSnapshot(dataset string, records int) {
	current().SetGauge(DatasetRecords, float64(records), Labels{"dataset": dataset})
}
