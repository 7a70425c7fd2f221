// Package metrics holds the Prometheus collectors the core reports through:
// documents indexed, searches executed, schema conflicts and
// schema-persistence ticks, per §1.1's ambient stack. Unlike the teacher's
// HTTP middleware collectors (registered once at package scope, since an
// HTTP server is itself a process-wide singleton), this core has no such
// singleton — a Database is a library value a caller may construct more
// than once in a test process — so collectors are built and registered
// explicitly in the constructor, against a caller-supplied Registerer,
// rather than in an init().
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the collectors for one Database instance.
type Recorder struct {
	documentsIndexed  *prometheus.CounterVec
	searchesTotal     *prometheus.CounterVec
	searchDuration    *prometheus.HistogramVec
	schemaConflicts   *prometheus.CounterVec
	schemaPersistTick *prometheus.CounterVec
}

// New builds the collector set and registers it against reg. Passing
// prometheus.NewRegistry() isolates metrics per-test; passing
// prometheus.DefaultRegisterer wires into the process-wide registry.
func New(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		documentsIndexed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docudex",
			Name:      "documents_indexed_total",
			Help:      "Documents written to the full-text index, by collection and operation.",
		}, []string{"collection", "op"}),
		searchesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docudex",
			Name:      "searches_total",
			Help:      "Searches executed, by collection.",
		}, []string{"collection"}),
		searchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "docudex",
			Name:      "search_duration_seconds",
			Help:      "Full-text index query latency, excluding pagination and KV hit resolution.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		schemaConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docudex",
			Name:      "schema_conflicts_total",
			Help:      "Projected fields skipped for disagreeing with the established schema type.",
		}, []string{"collection"}),
		schemaPersistTick: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "docudex",
			Name:      "schema_persist_ticks_total",
			Help:      "Schema-persistence ticks, by outcome (written, unchanged, skipped, error).",
		}, []string{"result"}),
	}
	reg.MustRegister(
		r.documentsIndexed,
		r.searchesTotal,
		r.searchDuration,
		r.schemaConflicts,
		r.schemaPersistTick,
	)
	return r
}

// IndexDocument records one projected-and-written document.
func (r *Recorder) IndexDocument(collection, op string) {
	if r == nil {
		return
	}
	r.documentsIndexed.WithLabelValues(collection, op).Inc()
}

// Search records one completed search and its latency.
func (r *Recorder) Search(collection string, d time.Duration) {
	if r == nil {
		return
	}
	r.searchesTotal.WithLabelValues(collection).Inc()
	r.searchDuration.WithLabelValues(collection).Observe(d.Seconds())
}

// SchemaConflict records one field skipped for a type conflict.
func (r *Recorder) SchemaConflict(collection string) {
	if r == nil {
		return
	}
	r.schemaConflicts.WithLabelValues(collection).Inc()
}

// SchemaPersistTick records one schema-persistence tick's outcome.
func (r *Recorder) SchemaPersistTick(result string) {
	if r == nil {
		return
	}
	r.schemaPersistTick.WithLabelValues(result).Inc()
}
