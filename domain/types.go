// Package domain holds the periodic-task scheduling data model shared by
// every solver and by the schedule builder/validator: Task, Job, TaskSet,
// Interval and Schedule.
package domain

import (
	"sort"

	"cyclicexec/apperror"
)

// Task is a periodic real-time task. Offset is assumed zero throughout this
// core; it is retained on the struct so a future extension has somewhere to
// put it.
type Task struct {
	ID       int64
	Period   int64   // T_i, positive
	WCET     float64 // C_i, non-negative
	Deadline int64   // D_i, relative deadline, D_i >= C_i
	Offset   int64   // always 0 in this core
}

// Validate enforces the task-model invariants: positive period, WCET in
// [0, period], deadline positive, deadline >= WCET, deadline <= period
// (implicit-deadline model).
func (t Task) Validate() error {
	if t.Period <= 0 {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: period must be positive, got %d", t.ID, t.Period).WithField("period")
	}
	if t.WCET < 0 {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: wcet must be non-negative, got %g", t.ID, t.WCET).WithField("wcet")
	}
	if t.WCET > float64(t.Period)+Epsilon {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: wcet %g exceeds period %d", t.ID, t.WCET, t.Period).WithField("wcet")
	}
	if t.Deadline <= 0 {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: deadline must be positive, got %d", t.ID, t.Deadline).WithField("deadline")
	}
	if float64(t.Deadline) < t.WCET-Epsilon {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: deadline %d is less than wcet %g", t.ID, t.Deadline, t.WCET).WithField("deadline")
	}
	if t.Deadline > t.Period {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: deadline %d exceeds period %d", t.ID, t.Deadline, t.Period).WithField("deadline")
	}
	if t.Offset != 0 {
		return apperror.Newf(apperror.CodeInvalidInput, "task %d: nonzero offset %d is not supported by this core", t.ID, t.Offset).WithField("offset")
	}
	return nil
}

// JobKey identifies a job by (task id, 1-based release index within the
// hyperperiod).
type JobKey struct {
	TaskID int64
	Index  int64 // j, 1-based
}

// Job is a single release of a task within the hyperperiod.
//
// Release and Deadline are derived from the period alone: r_{i,j} =
// (j-1)*T_i and d_{i,j} = j*T_i — the job's absolute deadline assumes
// relative deadline equals period, independent of Task.Deadline (which
// instead feeds the frame-size feasibility lemmas in
// geometry.ChooseFrameSize).
type Job struct {
	TaskID    int64
	Index     int64 // j, 1-based
	Release   int64
	Deadline  int64
	WCET      float64 // C_i, fixed at construction time
	Remaining float64 // execution time left to place; starts equal to WCET
}

// Key returns the job's identity.
func (j Job) Key() JobKey {
	return JobKey{TaskID: j.TaskID, Index: j.Index}
}

// TaskSet is the complete input to one solver invocation: a simulation
// window plus the periodic tasks populating it. Tasks retain insertion
// order; iteration throughout this module follows that order so repeated
// runs on identical input produce identical output.
type TaskSet struct {
	StartTime int64
	EndTime   int64
	Tasks     []Task
}

// NewTaskSet validates every task and rejects duplicate task IDs before
// returning a usable TaskSet.
func NewTaskSet(startTime, endTime int64, tasks []Task) (*TaskSet, error) {
	if endTime < startTime {
		return nil, apperror.Newf(apperror.CodeInvalidInput, "endTime %d precedes startTime %d", endTime, startTime)
	}
	seen := make(map[int64]struct{}, len(tasks))
	for _, t := range tasks {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := seen[t.ID]; dup {
			return nil, apperror.Newf(apperror.CodeInvalidInput, "duplicate task id %d", t.ID).WithField("taskId")
		}
		seen[t.ID] = struct{}{}
	}
	cp := make([]Task, len(tasks))
	copy(cp, tasks)
	return &TaskSet{StartTime: startTime, EndTime: endTime, Tasks: cp}, nil
}

// Hyperperiod returns H, the LCM of every task's period. An empty TaskSet
// has hyperperiod 1 by convention (lcm of the empty set).
func (ts *TaskSet) Hyperperiod() int64 {
	h := int64(1)
	for _, t := range ts.Tasks {
		h = lcm(h, t.Period)
	}
	return h
}

// Jobs enumerates every job of every task across one hyperperiod, in task
// insertion order and then ascending release index — the order the flow
// network's node indexing depends on.
func (ts *TaskSet) Jobs() []Job {
	h := ts.Hyperperiod()
	var jobs []Job
	for _, t := range ts.Tasks {
		count := h / t.Period
		for j := int64(1); j <= count; j++ {
			jobs = append(jobs, Job{
				TaskID:    t.ID,
				Index:     j,
				Release:   (j - 1) * t.Period,
				Deadline:  j * t.Period,
				WCET:      t.WCET,
				Remaining: t.WCET,
			})
		}
	}
	return jobs
}

// TotalWork returns W = sum_i C_i * (H/T_i), the total execution demand per
// hyperperiod. The flow solver requires maxFlow == TotalWork for a feasible
// assignment.
func (ts *TaskSet) TotalWork() float64 {
	h := ts.Hyperperiod()
	var w float64
	for _, t := range ts.Tasks {
		w += t.WCET * float64(h/t.Period)
	}
	return w
}

// Utilization returns sum_i C_i/T_i. U > 1 is a necessary (not sufficient)
// infeasibility witness.
func (ts *TaskSet) Utilization() float64 {
	var u float64
	for _, t := range ts.Tasks {
		u += t.WCET / float64(t.Period)
	}
	return u
}

// MaxWCET returns the largest WCET across all tasks, used by frame-size
// rule (b). Returns 0 for an empty TaskSet.
func (ts *TaskSet) MaxWCET() float64 {
	var max float64
	for _, t := range ts.Tasks {
		if t.WCET > max {
			max = t.WCET
		}
	}
	return max
}

// TaskByID returns the task with the given ID and true, or the zero value
// and false if absent.
func (ts *TaskSet) TaskByID(id int64) (Task, bool) {
	for _, t := range ts.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// SortedTaskIDs returns every task ID in ascending order, for callers that
// must break ties deterministically by task id rather than insertion order.
func (ts *TaskSet) SortedTaskIDs() []int64 {
	ids := make([]int64, len(ts.Tasks))
	for i, t := range ts.Tasks {
		ids[i] = t.ID
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// GCD returns the greatest common divisor of a and b (always non-negative).
func GCD(a, b int64) int64 {
	return gcd(a, b)
}

// LCM returns the least common multiple of a and b.
func LCM(a, b int64) int64 {
	return lcm(a, b)
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}

func lcm(a, b int64) int64 {
	if a == 0 || b == 0 {
		return 0
	}
	g := gcd(a, b)
	return a / g * b
}
