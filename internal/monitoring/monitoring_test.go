package monitoring

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestLifecycle(t *testing.T) {
	t.Run("happy path", func(t *testing.T) {
		var l Lifecycle
		assert.Equal(t, Uninitialized, l.State())
		assert.False(t, l.Ready())

		assert.True(t, l.BeginLoading())
		assert.Equal(t, Loading, l.State())

		assert.True(t, l.MarkReady())
		assert.True(t, l.Ready())
	})

	t.Run("failure is terminal", func(t *testing.T) {
		var l Lifecycle
		l.BeginLoading()
		assert.True(t, l.MarkFailed(errors.New("missing model")))
		assert.Equal(t, Failed, l.State())

		assert.False(t, l.MarkReady())
		assert.False(t, l.BeginLoading())
		assert.Equal(t, Failed, l.State())
	})

	t.Run("ready requires loading", func(t *testing.T) {
		var l Lifecycle
		assert.False(t, l.MarkReady())
		assert.Equal(t, Uninitialized, l.State())
	})

	t.Run("state names", func(t *testing.T) {
		assert.Equal(t, "ready", Ready.String())
		assert.Equal(t, "unknown", State(42).String())
	})
}

func TestMetrics(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.ObservePrediction("joy", 3*time.Millisecond)
	m.ObservePrediction("joy", time.Millisecond)
	m.ObserveError("shape_mismatch")
	m.ObserveCache(true)
	m.ObserveCache(false)
	m.ObserveCache(false)
	m.ObserveRequest("/predict", "200")
	m.SetClassifierHealthy(true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.PredictionsTotal.WithLabelValues("joy")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.PredictionErrors.WithLabelValues("shape_mismatch")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(CacheHit)))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.CacheLookups.WithLabelValues(CacheMiss)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RequestsTotal.WithLabelValues("/predict", "200")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierHealthy))
}

func TestNilMetricsAreNoOps(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObservePrediction("joy", time.Millisecond)
		m.ObserveError("unclassified")
		m.ObserveCache(true)
		m.ObserveRequest("/", "200")
		m.SetClassifierHealthy(false)
	})
}

func TestMonitorClassifierHealth(t *testing.T) {
	t.Run("healthy probe", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var healthy atomic.Bool
		m := NewMetrics(prometheus.NewRegistry())

		MonitorClassifierHealth(ctx, func(context.Context) error {
			cancel()
			return nil
		}, time.Hour, &healthy, m)

		assert.True(t, healthy.Load())
		assert.Equal(t, 1.0, testutil.ToFloat64(m.ClassifierHealthy))
	})

	t.Run("failing probe", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		var healthy atomic.Bool
		healthy.Store(true)

		MonitorClassifierHealth(ctx, func(context.Context) error {
			cancel()
			return errors.New("session closed")
		}, time.Hour, &healthy, nil)

		assert.False(t, healthy.Load())
	})
}
