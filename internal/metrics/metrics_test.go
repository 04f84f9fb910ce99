package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveSolveIncrementsSchedulesTotal(t *testing.T) {
	m := InitMetrics("cyclicexec_test", "scheduler")

	m.ObserveSolve("flow", true, 10*time.Millisecond)
	m.ObserveSolve("flow", false, 5*time.Millisecond)

	got := testutil.ToFloat64(m.SchedulesTotal.WithLabelValues("flow", "success"))
	if got != 1 {
		t.Errorf("expected 1 success for flow, got %v", got)
	}
	got = testutil.ToFloat64(m.SchedulesTotal.WithLabelValues("flow", "error"))
	if got != 1 {
		t.Errorf("expected 1 error for flow, got %v", got)
	}
}

func TestObserveFrameSizeSetsGauge(t *testing.T) {
	m := InitMetrics("cyclicexec_test", "scheduler")
	m.ObserveFrameSize(4)
	got := testutil.ToFloat64(m.FrameSize.WithLabelValues())
	if got != 4 {
		t.Errorf("expected frame size gauge 4, got %v", got)
	}
}

func TestObserveBFDRepairsAccumulates(t *testing.T) {
	m := InitMetrics("cyclicexec_test", "scheduler")
	m.ObserveBFDRepairs(2)
	m.ObserveBFDRepairs(3)
	got := testutil.ToFloat64(m.BFDRepairs.WithLabelValues())
	if got != 5 {
		t.Errorf("expected 5 total repairs, got %v", got)
	}
}
