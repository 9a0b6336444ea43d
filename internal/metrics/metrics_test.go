package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)

	m.RecordSeen()
	m.RecordSeen()
	m.DuplicateDropped()
	m.Emitted("property")
	m.Emitted("valuation")
	m.Emitted("valuation")
	m.DroppedEmpty("leads")
	m.Written("property", 3)
	m.Written("taxes", 0)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Records))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DuplicatesDropped))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.ConstructionFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.EntitiesEmitted.WithLabelValues("valuation")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DependentsDropped.WithLabelValues("leads")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.RowsWritten.WithLabelValues("property")))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.RecordSeen()
		m.DuplicateDropped()
		m.ConstructionFailed()
		m.Emitted("property")
		m.DroppedEmpty("leads")
		m.Written("property", 1)
	})
}

func TestNew_DoubleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := New(reg)
	require.NoError(t, err)

	_, err = New(reg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to register metric")
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := New(reg)
	require.NoError(t, err)
	m.RecordSeen()

	path := filepath.Join(t.TempDir(), "etl.prom")
	require.NoError(t, WriteTextfile(path, reg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "property_etl_records_total 1")
}
