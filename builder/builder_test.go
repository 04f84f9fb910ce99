package builder

import (
	"context"
	"testing"

	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTaskSet(t *testing.T, tasks []domain.Task, end int64) *domain.TaskSet {
	t.Helper()
	ts, err := domain.NewTaskSet(0, end, tasks)
	require.NoError(t, err)
	return ts
}

func TestBuildPartitionsFramesExactly(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
		{ID: 2, Period: 5, WCET: 2, Deadline: 5},
		{ID: 3, Period: 20, WCET: 1, Deadline: 20},
		{ID: 4, Period: 20, WCET: 2, Deadline: 20},
	}, 20)
	geo, err := geometry.Compute(ts)
	require.NoError(t, err)

	assignment, err := scheduler.NewFlowSolver().Solve(context.Background(), ts, geo)
	require.NoError(t, err)

	sched, err := Build(ts, geo, assignment)
	require.NoError(t, err)

	require.NotEmpty(t, sched.Intervals)
	assert.Equal(t, float64(ts.StartTime), sched.StartTime)
	assert.Equal(t, sched.StartTime, sched.Intervals[0].StartTime)

	for i := 0; i < len(sched.Intervals)-1; i++ {
		assert.Equal(t, sched.Intervals[i].EndTime, sched.Intervals[i+1].StartTime, "interval %d leaves a gap", i)
	}
	assert.GreaterOrEqual(t, sched.Intervals[len(sched.Intervals)-1].EndTime, sched.EndTime-domain.Epsilon)

	seen := make(map[domain.JobKey]int)
	for _, iv := range sched.Intervals {
		if iv.IsIdle() {
			continue
		}
		seen[iv.Key()]++
		assert.True(t, iv.JobCompleted)
	}
	for _, job := range ts.Jobs() {
		assert.Equal(t, 1, seen[job.Key()], "job %+v should appear exactly once", job.Key())
	}
}

func TestBuildOverrunProducesInvalidSchedule(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 4, WCET: 3, Deadline: 4},
	}, 4)
	geo, err := geometry.Compute(ts)
	require.NoError(t, err)

	assignment := scheduler.NewAssignment(geo.NumFrames)
	// Force two jobs worth of work (3+3 = 6) into the single frame of size 4
	// by double-placing.
	assignment.Place(1, domain.JobKey{TaskID: 1, Index: 1})
	assignment.Place(1, domain.JobKey{TaskID: 1, Index: 1})

	_, err = Build(ts, geo, assignment)
	require.Error(t, err)
}

func TestBuildIdleIntervalsNeverCarryAJob(t *testing.T) {
	ts := mustTaskSet(t, []domain.Task{
		{ID: 1, Period: 6, WCET: 1, Deadline: 6},
	}, 6)
	geo, err := geometry.Compute(ts)
	require.NoError(t, err)

	assignment, err := scheduler.NewFlowSolver().Solve(context.Background(), ts, geo)
	require.NoError(t, err)

	sched, err := Build(ts, geo, assignment)
	require.NoError(t, err)

	for _, iv := range sched.Intervals {
		if iv.IsIdle() {
			assert.False(t, iv.JobCompleted)
		}
	}
}
