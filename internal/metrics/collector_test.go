package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector_Counters(t *testing.T) {
	c := NewCollector(prometheus.NewRegistry())

	c.RecordTick()
	c.RecordTick()
	c.RecordStateChanges("net", 2)
	c.RecordStateChanges("net", 0)
	c.RecordProviderError("lid")
	c.RecordEvaluation(ResultTrue)
	c.RecordEvaluation(ResultSkipped)
	c.RecordEvaluation(ResultSkipped)
	c.RecordDispatch("ok", 20*time.Millisecond)
	c.RecordDispatch("missing_variable", 0)
	c.SetStateKeys(5)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.ticks))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.stateChanges.WithLabelValues("net")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.providerErrors.WithLabelValues("lid")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evaluations.WithLabelValues(ResultTrue)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.evaluations.WithLabelValues(ResultSkipped)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatches.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dispatches.WithLabelValues("missing_variable")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.dispatchDuration))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.stateKeys))
}

func TestCollector_NilIsNoop(t *testing.T) {
	var c *Collector

	assert.NotPanics(t, func() {
		c.RecordTick()
		c.RecordStateChanges("net", 1)
		c.RecordProviderError("net")
		c.RecordEvaluation(ResultFalse)
		c.RecordDispatch("failed", time.Second)
		c.SetStateKeys(1)
	})
	assert.Nil(t, c.Registry())
	assert.NoError(t, c.WriteTextfile(filepath.Join(t.TempDir(), "m.prom")))
}

func TestCollector_WriteTextfile(t *testing.T) {
	c := NewCollector(nil)
	c.RecordTick()

	path := filepath.Join(t.TempDir(), "scriptrunner.prom")
	require.NoError(t, c.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "scriptrunner_ticks_total 1")
	assert.Contains(t, string(data), "# TYPE scriptrunner_state_keys gauge")
}

func TestCollector_WriteTextfileBadPath(t *testing.T) {
	c := NewCollector(nil)

	err := c.WriteTextfile(filepath.Join(t.TempDir(), "missing", "dir", "m.prom"))
	assert.Error(t, err)
}
