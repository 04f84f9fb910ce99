package validator

import (
	"context"
	"testing"

	"cyclicexec/builder"
	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/scheduler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildSchedule(t *testing.T, solver scheduler.Solver, tasks []domain.Task, end int64) (*domain.Schedule, []domain.Job) {
	t.Helper()
	ts, err := domain.NewTaskSet(0, end, tasks)
	require.NoError(t, err)
	geo, err := geometry.Compute(ts)
	require.NoError(t, err)
	assignment, err := solver.Solve(context.Background(), ts, geo)
	require.NoError(t, err)
	sched, err := builder.Build(ts, geo, assignment)
	require.NoError(t, err)
	return sched, ts.Jobs()
}

func TestValidateFeasibleScheduleFromFlowSolver(t *testing.T) {
	sched, jobs := buildSchedule(t, scheduler.NewFlowSolver(), []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
		{ID: 2, Period: 5, WCET: 2, Deadline: 5},
		{ID: 3, Period: 20, WCET: 1, Deadline: 20},
		{ID: 4, Period: 20, WCET: 2, Deadline: 20},
	}, 20)

	result := Validate(sched, jobs)
	assert.True(t, result.WCETOK)
	assert.True(t, result.DeadlineOK)
	assert.True(t, result.Feasible())
}

func TestValidateFeasibleScheduleFromILPSolver(t *testing.T) {
	sched, jobs := buildSchedule(t, scheduler.NewILPSolver(), []domain.Task{
		{ID: 1, Period: 4, WCET: 1, Deadline: 4},
		{ID: 2, Period: 5, WCET: 2, Deadline: 5},
		{ID: 3, Period: 20, WCET: 1, Deadline: 20},
		{ID: 4, Period: 20, WCET: 2, Deadline: 20},
	}, 20)

	result := Validate(sched, jobs)
	assert.True(t, result.Feasible())
}

func TestValidateCatchesWCETOverrun(t *testing.T) {
	sched := &domain.Schedule{
		StartTime: 0,
		EndTime:   4,
		Intervals: []domain.Interval{
			{StartTime: 0, EndTime: 3, TaskID: 1, JobIndex: 1, JobCompleted: true},
			{StartTime: 3, EndTime: 4, TaskID: 0},
		},
	}
	jobs := []domain.Job{
		{TaskID: 1, Index: 1, Release: 0, Deadline: 4, WCET: 1, Remaining: 1},
	}

	result := Validate(sched, jobs)
	assert.False(t, result.WCETOK)
	assert.Contains(t, result.WCETViolations, domain.JobKey{TaskID: 1, Index: 1})
}

func TestValidateCatchesDeadlineOverrun(t *testing.T) {
	sched := &domain.Schedule{
		StartTime: 0,
		EndTime:   5,
		Intervals: []domain.Interval{
			{StartTime: 0, EndTime: 5, TaskID: 1, JobIndex: 1, JobCompleted: true},
		},
	}
	jobs := []domain.Job{
		{TaskID: 1, Index: 1, Release: 0, Deadline: 4, WCET: 1, Remaining: 1},
	}

	result := Validate(sched, jobs)
	assert.False(t, result.DeadlineOK)
	assert.Contains(t, result.DeadlineViolations, domain.JobKey{TaskID: 1, Index: 1})
}
