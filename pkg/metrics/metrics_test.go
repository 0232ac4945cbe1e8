package metrics

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	m := New()
	m.RoutesGenerated.WithLabelValues("standard").Inc()
	m.RoutesGenerated.WithLabelValues("standard").Inc()
	m.DocumentsWritten.WithLabelValues("next").Add(2)
	m.NextHopID.Set(6)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.RoutesGenerated.WithLabelValues("standard")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.RoutesGenerated.WithLabelValues("int")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.DocumentsWritten.WithLabelValues("next")))
	assert.Equal(t, 6.0, testutil.ToFloat64(m.NextHopID))
}

func TestFlush(t *testing.T) {
	m := New()
	m.ValidationFailures.WithLabelValues("mac").Inc()

	path := filepath.Join(t.TempDir(), "tna_routegen.prom")
	require.NoError(t, m.Flush(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `tna_routegen_validation_failures_total{field="mac"} 1`)

	assert.NoError(t, m.Flush(""))
}
