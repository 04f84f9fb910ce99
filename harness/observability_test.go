package harness

import (
	"context"
	"testing"
	"time"

	"cyclicexec/domain"
	"cyclicexec/internal/cache"
	"cyclicexec/internal/metrics"
	"cyclicexec/internal/telemetry"
	"cyclicexec/scheduler"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHarnessRunObservesMetricsAndPopulatesCache(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
		{ID: 2, Period: 5, WCET: 2, Deadline: 5},
	}, 20)

	m := metrics.InitMetrics("cyclicexec_test_harness", "scheduler")
	geocache := cache.NewGeometryCache(cache.NewMemoryCache(nil), time.Minute)
	h := New(WithMetrics(m), WithGeometryCache(geocache))

	result := h.Run(context.Background(), ts, scheduler.NewFlowSolver())
	require.NoError(t, result.Err)
	assert.True(t, result.Success)

	successes := testutil.ToFloat64(m.SchedulesTotal.WithLabelValues("flow", "success"))
	assert.Equal(t, float64(1), successes)

	frameSize := testutil.ToFloat64(m.FrameSize.WithLabelValues())
	assert.Positive(t, frameSize)

	_, ok := geocache.Get(context.Background(), ts)
	assert.True(t, ok, "Run should populate the geometry cache on a miss")
}

func TestHarnessRunRecordsFailureMetrics(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 2, WCET: 2, Deadline: 2},
		{ID: 2, Period: 4, WCET: 3, Deadline: 4},
	}, 4)

	m := metrics.InitMetrics("cyclicexec_test_harness_fail", "scheduler")
	h := New(WithMetrics(m))

	result := h.Run(context.Background(), ts, scheduler.NewFlowSolver())
	assert.Error(t, result.Err)
	assert.False(t, result.Success)

	failures := testutil.ToFloat64(m.SchedulesTotal.WithLabelValues("flow", "error"))
	assert.Equal(t, float64(1), failures)
}

func TestHarnessRunWithTracerDoesNotPanic(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
	}, 4)

	p, err := telemetry.Init(context.Background(), telemetry.Config{Enabled: false, ServiceName: "cyclicexec-test"})
	require.NoError(t, err)

	h := New(WithTracer(p))
	result := h.Run(context.Background(), ts, scheduler.NewILPSolver())
	require.NoError(t, result.Err)
	assert.True(t, result.Success)
}

func TestHarnessRunAllDrainsSourceIntoSink(t *testing.T) {
	source := NewSliceSource([]*domain.TaskSet{
		mustTaskSet(t, []domain.Task{{ID: 1, Period: 4, WCET: 1, Deadline: 4}}, 4),
		mustTaskSet(t, []domain.Task{{ID: 1, Period: 5, WCET: 2, Deadline: 5}}, 5),
	})
	sink := NewMemorySink()
	h := New()

	err := h.RunAll(context.Background(), source, scheduler.NewILPSolver(), sink)
	require.NoError(t, err)

	results := sink.Results()
	require.Len(t, results, 2)
	for _, r := range results {
		assert.True(t, r.Success)
	}
}

func TestHarnessRunCacheHitSkipsGeometryRecompute(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
		{ID: 2, Period: 5, WCET: 2, Deadline: 5},
	}, 20)

	geocache := cache.NewGeometryCache(cache.NewMemoryCache(nil), time.Minute)
	h := New(WithGeometryCache(geocache))

	first := h.Run(context.Background(), ts, scheduler.NewFlowSolver())
	require.NoError(t, first.Err)

	second := h.Run(context.Background(), ts, scheduler.NewFlowSolver())
	require.NoError(t, second.Err)
	assert.True(t, second.Success)
}
