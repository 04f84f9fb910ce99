// Package builder materializes a solver's job->frame Assignment into a
// Schedule: an ordered, gap-filled timeline of busy and idle Intervals,
// accumulated in one linear pass over the frames and post-processed once.
package builder

import (
	"sort"

	"cyclicexec/apperror"
	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/scheduler"
)

// Build materializes assignment into a Schedule over [ts.StartTime,
// ts.EndTime]. Jobs within a frame are ordered by ascending task id; a job
// that would push time past its frame boundary raises CodeInvalidSchedule
// rather than silently overrunning.
func Build(ts *domain.TaskSet, geo *geometry.FrameGeometry, assignment *scheduler.Assignment) (*domain.Schedule, error) {
	jobByKey := make(map[domain.JobKey]domain.Job)
	for _, j := range ts.Jobs() {
		jobByKey[j.Key()] = j
	}

	sched := &domain.Schedule{StartTime: float64(ts.StartTime)}
	time := float64(ts.StartTime)

	for k := int64(1); k <= geo.NumFrames; k++ {
		_, frameEnd := geo.FrameBounds(k)
		keys := append([]domain.JobKey(nil), assignment.JobsIn(k)...)
		sort.SliceStable(keys, func(i, j int) bool {
			if keys[i].TaskID != keys[j].TaskID {
				return keys[i].TaskID < keys[j].TaskID
			}
			return keys[i].Index < keys[j].Index
		})

		for _, key := range keys {
			job, ok := jobByKey[key]
			if !ok {
				return nil, apperror.Newf(apperror.CodeInvalidSchedule, "assignment references unknown job %+v", key)
			}
			if time > float64(frameEnd)+domain.Epsilon {
				return nil, apperror.Newf(apperror.CodeInvalidSchedule,
					"frame %d overrun: cumulative work reaches %g but frame ends at %d", k, time, frameEnd)
			}
			sched.Intervals = append(sched.Intervals, domain.Interval{
				StartTime:    time,
				TaskID:       job.TaskID,
				JobIndex:     job.Index,
				JobCompleted: true,
			})
			time += job.WCET
			if time > float64(frameEnd)+domain.Epsilon {
				return nil, apperror.Newf(apperror.CodeInvalidSchedule,
					"frame %d overrun: job %+v pushes cumulative work to %g past frame end %d", k, key, time, frameEnd)
			}
		}

		if time < float64(frameEnd)-domain.Epsilon {
			sched.Intervals = append(sched.Intervals, domain.Interval{
				StartTime: time,
				TaskID:    0,
			})
			time = float64(frameEnd)
		} else {
			time = float64(frameEnd)
		}
	}

	endTime := float64(ts.EndTime)
	lastDeadline := latestDeadline(ts)
	if lastDeadline > endTime {
		endTime = lastDeadline
	}
	sched.Intervals = append(sched.Intervals, domain.Interval{
		StartTime: time,
		TaskID:    0,
	})

	postProcess(sched, endTime)
	sched.EndTime = endTime

	return sched, nil
}

// postProcess closes each interval: every interval's endTime is the next
// interval's startTime; the last interval's endTime is the schedule's
// final endTime.
func postProcess(sched *domain.Schedule, endTime float64) {
	for i := 0; i < len(sched.Intervals)-1; i++ {
		sched.Intervals[i].EndTime = sched.Intervals[i+1].StartTime
	}
	if n := len(sched.Intervals); n > 0 {
		sched.Intervals[n-1].EndTime = endTime
	}
}

func latestDeadline(ts *domain.TaskSet) float64 {
	var max float64
	for _, j := range ts.Jobs() {
		if float64(j.Deadline) > max {
			max = float64(j.Deadline)
		}
	}
	return max
}
