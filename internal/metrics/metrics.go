// Package metrics records per-run counters for a batch invocation and
// writes them in the Prometheus text format, for a node_exporter textfile
// collector or a pushgateway sidecar to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "anachron"

// Recorder holds the run's metrics on its own registry so tests and repeated
// runs never collide on the global one.
type Recorder struct {
	reg *prometheus.Registry

	recordsLoaded *prometheus.CounterVec
	fallbacks     prometheus.Counter
	duplicates    prometheus.Counter
	annotated     *prometheus.CounterVec
	failed        prometheus.Counter
	selected      prometheus.Counter
	phaseSeconds  *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
	workers       prometheus.Gauge
}

// New builds a Recorder. runID is attached as a constant label.
func New(runID string) *Recorder {
	constLabels := prometheus.Labels{"run_id": runID}
	r := &Recorder{reg: prometheus.NewRegistry()}

	r.recordsLoaded = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "input", Name: "records_total",
		Help: "Rows loaded per input table.", ConstLabels: constLabels,
	}, []string{"table"})
	r.fallbacks = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "lineage", Name: "fallback_dates_total",
		Help: "Lineage rows whose designation date was replaced by the fallback.", ConstLabels: constLabels,
	})
	r.duplicates = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "lineage", Name: "duplicate_rows_total",
		Help: "Lineage rows ignored because the lineage was already indexed.", ConstLabels: constLabels,
	})
	r.annotated = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "annotate", Name: "records_total",
		Help: "Annotated records by outcome.", ConstLabels: constLabels,
	}, []string{"outcome"})
	r.failed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "annotate", Name: "record_failures_total",
		Help: "Per-record failures degraded to absent values.", ConstLabels: constLabels,
	})
	r.selected = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "report", Name: "candidates_total",
		Help: "Records written to the report.", ConstLabels: constLabels,
	})
	r.phaseSeconds = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Name: "phase_duration_seconds",
		Help: "Wall time per pipeline phase.", ConstLabels: constLabels,
	}, []string{"phase"})
	r.lastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "last_success_timestamp_seconds",
		Help: "Unix time the run finished successfully.", ConstLabels: constLabels,
	})
	r.workers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Name: "workers",
		Help: "Worker pool size.", ConstLabels: constLabels,
	})

	r.reg.MustRegister(r.recordsLoaded, r.fallbacks, r.duplicates, r.annotated,
		r.failed, r.selected, r.phaseSeconds, r.lastSuccess, r.workers)
	return r
}

// Registry exposes the underlying registry (for tests and custom gatherers).
func (r *Recorder) Registry() *prometheus.Registry { return r.reg }

func (r *Recorder) Loaded(table string, n int) { r.recordsLoaded.WithLabelValues(table).Add(float64(n)) }

func (r *Recorder) Lineages(fallbacks, duplicates int) {
	r.fallbacks.Add(float64(fallbacks))
	r.duplicates.Add(float64(duplicates))
}

// Annotated records the outcome split of one Annotate call.
func (r *Recorder) Annotated(total, withDuration, unresolved, failed int) {
	r.annotated.WithLabelValues("duration").Add(float64(withDuration))
	r.annotated.WithLabelValues("no_duration").Add(float64(total - withDuration))
	r.annotated.WithLabelValues("unresolved_lineage").Add(float64(unresolved))
	r.failed.Add(float64(failed))
}

func (r *Recorder) Selected(n int) { r.selected.Add(float64(n)) }

func (r *Recorder) Workers(n int) { r.workers.Set(float64(n)) }

func (r *Recorder) Phase(name string, d time.Duration) {
	r.phaseSeconds.WithLabelValues(name).Set(d.Seconds())
}

func (r *Recorder) Succeeded(at time.Time) { r.lastSuccess.Set(float64(at.Unix())) }

// WriteFile writes every metric to path atomically in the text exposition
// format.
func (r *Recorder) WriteFile(path string) error {
	return prometheus.WriteToTextfile(path, r.reg)
}
