package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackCountsOutcomes(t *testing.T) {
	t.Parallel()

	registry := prometheus.NewRegistry()
	m := NewOperationMetrics(registry)

	m.Track("checkout", time.Now(), nil)
	m.Track("checkout", time.Now(), nil)
	m.Track("checkout", time.Now(), errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.success.WithLabelValues("checkout")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failure.WithLabelValues("checkout")))

	count, err := testutil.GatherAndCount(registry, "shop_operation_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestNilCollectorIsSafe(t *testing.T) {
	t.Parallel()

	var m *OperationMetrics
	m.Track("anything", time.Now(), nil)
	m.IncSuccess("anything")
	m.IncFailure("anything")
	m.ObserveDuration("anything", time.Second)

	unregistered := NewOperationMetrics(nil)
	unregistered.Track("anything", time.Now(), errors.New("boom"))
}
