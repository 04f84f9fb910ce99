// Package validator checks a materialized Schedule for WCET conformance and
// deadline feasibility, independent of which solver produced the underlying
// Assignment. The two checks are independent booleans, kept separate from
// the solve loop so they also accept schedules produced elsewhere.
package validator

import (
	"cyclicexec/domain"
)

// Result is the outcome of validating one Schedule.
type Result struct {
	WCETOK     bool
	DeadlineOK bool
	// Violations names, for diagnostics, which job keys failed which check.
	WCETViolations     []domain.JobKey
	DeadlineViolations []domain.JobKey
}

// Feasible reports whether both checks passed.
func (r Result) Feasible() bool {
	return r.WCETOK && r.DeadlineOK
}

// Validate runs the WCET and deadline checks against sched, given the job
// records it was built from (for each job's WCET and deadline). Both
// checks only consider intervals with JobCompleted set,
// matching the builder's contract that every busy interval in this core
// runs a job to completion.
func Validate(sched *domain.Schedule, jobs []domain.Job) Result {
	jobByKey := make(map[domain.JobKey]domain.Job, len(jobs))
	for _, j := range jobs {
		jobByKey[j.Key()] = j
	}

	busyDuration := make(map[domain.JobKey]float64)
	for _, iv := range sched.Intervals {
		if iv.IsIdle() || !iv.JobCompleted {
			continue
		}
		busyDuration[iv.Key()] += iv.Duration()
	}

	result := Result{WCETOK: true, DeadlineOK: true}

	for key, duration := range busyDuration {
		job, ok := jobByKey[key]
		if !ok {
			continue
		}
		if duration > job.WCET+domain.Epsilon {
			result.WCETOK = false
			result.WCETViolations = append(result.WCETViolations, key)
		}
	}

	for _, iv := range sched.Intervals {
		if iv.IsIdle() || !iv.JobCompleted {
			continue
		}
		job, ok := jobByKey[iv.Key()]
		if !ok {
			continue
		}
		if iv.EndTime > float64(job.Deadline)+domain.Epsilon {
			result.DeadlineOK = false
			result.DeadlineViolations = append(result.DeadlineViolations, iv.Key())
		}
	}

	return result
}
