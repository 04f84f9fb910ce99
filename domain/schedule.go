package domain

// Interval is one entry in a materialized Schedule's timeline: either a
// busy slice running a specific job, or an idle gap (TaskID == 0).
//
// PreemptedPrev is always false in this core: a cyclic executive never
// preempts a job inside its frame. The field exists so a consumer that
// also handles preemptive schedules (ScheduleValidator accepts them) has
// somewhere to read the flag from.
type Interval struct {
	StartTime     float64
	EndTime       float64
	TaskID        int64 // 0 marks an idle interval
	JobIndex      int64
	JobCompleted  bool
	PreemptedPrev bool
}

// IsIdle reports whether this interval carries no job.
func (iv Interval) IsIdle() bool {
	return iv.TaskID == 0
}

// Key returns the job identity this interval belongs to. Only meaningful
// when !IsIdle().
func (iv Interval) Key() JobKey {
	return JobKey{TaskID: iv.TaskID, Index: iv.JobIndex}
}

// Duration returns EndTime - StartTime.
func (iv Interval) Duration() float64 {
	return iv.EndTime - iv.StartTime
}

// Schedule is the materialized timeline produced by builder.Build:
// contiguous, non-overlapping Intervals with non-decreasing start times,
// the last of which ends at EndTime.
type Schedule struct {
	StartTime float64
	EndTime   float64
	Intervals []Interval
}
