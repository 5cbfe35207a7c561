package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordMethods(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.RecordCommit(OutcomeCreated)
	m.RecordCommit(OutcomeCreated)
	m.RecordCommit(OutcomeNoChanges)
	m.RecordBlobLookup(true)
	m.RecordBlobLookup(false)
	m.RecordBlobLookup(false)
	m.RecordRestore()
	m.RecordDocumentCreated()
	m.RecordDiff(time.Millisecond, 3)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.CommitsTotal.WithLabelValues(OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CommitsTotal.WithLabelValues(OutcomeNoChanges)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BlobLookupsTotal.WithLabelValues("hit")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.BlobLookupsTotal.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RestoresTotal))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DocumentsCreated))
	assert.Equal(t, 1, testutil.CollectAndCount(m.DiffDuration))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics

	assert.NotPanics(t, func() {
		m.RecordCommit(OutcomeError)
		m.RecordBlobLookup(true)
		m.RecordRestore()
		m.RecordDocumentCreated()
		m.RecordDiff(time.Second, 1)
		m.RecordHTTPRequest("GET", "/", "200", time.Second)
	})
}
