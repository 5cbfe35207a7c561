// Package metrics provides Prometheus metrics for the versioning engine
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Commit outcomes recorded by CommitsTotal
const (
	OutcomeCreated   = "created"
	OutcomeNoChanges = "no_changes"
	OutcomeConflict  = "conflict"
	OutcomeError     = "error"
)

// Metrics holds all Prometheus metrics of the server
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Versioning metrics
	CommitsTotal     *prometheus.CounterVec
	BlobLookupsTotal *prometheus.CounterVec
	RestoresTotal    prometheus.Counter
	DocumentsCreated prometheus.Counter
	DiffDuration     prometheus.Histogram
	DiffLeaves       prometheus.Histogram
}

// NewMetrics creates all metrics and registers them with reg.
// Tests pass a fresh prometheus.NewRegistry() to stay isolated.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	m := &Metrics{}

	m.HTTPRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	m.HTTPRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quill_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	m.CommitsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_commits_total",
			Help: "Commit attempts by outcome",
		},
		[]string{"outcome"},
	)

	m.BlobLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quill_blob_lookups_total",
			Help: "Blob resolutions by dedup result (hit or miss)",
		},
		[]string{"result"},
	)

	m.RestoresTotal = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_restores_total",
			Help: "Total number of restores",
		},
	)

	m.DocumentsCreated = factory.NewCounter(
		prometheus.CounterOpts{
			Name: "quill_documents_created_total",
			Help: "Total number of documents created",
		},
	)

	m.DiffDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_diff_duration_seconds",
			Help:    "Duration of text-leaf diffs in seconds",
			Buckets: []float64{.0001, .0005, .001, .005, .01, .05, .1, .5, 1},
		},
	)

	m.DiffLeaves = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "quill_diff_leaves",
			Help:    "Text leaves added or removed per diff",
			Buckets: prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	return m
}

// Record methods are no-ops on a nil *Metrics.

// RecordCommit counts a commit attempt
func (m *Metrics) RecordCommit(outcome string) {
	if m == nil {
		return
	}
	m.CommitsTotal.WithLabelValues(outcome).Inc()
}

// RecordBlobLookup counts one block resolution
func (m *Metrics) RecordBlobLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.BlobLookupsTotal.WithLabelValues(result).Inc()
}

// RecordRestore counts a restore
func (m *Metrics) RecordRestore() {
	if m == nil {
		return
	}
	m.RestoresTotal.Inc()
}

// RecordDocumentCreated counts a created document
func (m *Metrics) RecordDocumentCreated() {
	if m == nil {
		return
	}
	m.DocumentsCreated.Inc()
}

// RecordDiff records a diff's duration and the number of changed leaves
func (m *Metrics) RecordDiff(duration time.Duration, leaves int) {
	if m == nil {
		return
	}
	m.DiffDuration.Observe(duration.Seconds())
	m.DiffLeaves.Observe(float64(leaves))
}

// RecordHTTPRequest records request metrics
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
