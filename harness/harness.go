// Package harness defines the thin contracts a caller wires the scheduling
// core into: where task sets come from and where per-run results go. The
// wire format and storage of those collaborators belong to the caller —
// only the contracts, the Run/RunAll pipeline driving them (bare, and wired
// to metrics/tracing/caching via Harness), and an in-memory reference
// implementation live here, the last used by this package's own tests and
// available to callers that want a drop-in starting point.
package harness

import (
	"context"
	"time"

	"cyclicexec/builder"
	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/scheduler"
	"cyclicexec/validator"

	"github.com/google/uuid"
)

// TaskSetSource yields the task sets a harness run should solve, one call
// per task set. A caller-provided implementation might read these from a
// file, a generator, or a fixed in-memory list.
type TaskSetSource interface {
	Next(ctx context.Context) (*domain.TaskSet, bool, error)
}

// ResultSink receives one RunMetrics per task set the harness processed.
type ResultSink interface {
	Record(ctx context.Context, result RunMetrics) error
}

// RunMetrics is the per-run metrics record handed to a ResultSink. RunID
// disambiguates repeated runs against the same task set in a sink that
// aggregates across many runs.
type RunMetrics struct {
	RunID       string
	Scheduler   scheduler.Kind
	NTasks      int
	Utilization float64
	Success     bool
	TotalTime   time.Duration
	Err         error
}

// Run solves one TaskSet end to end (geometry -> solver -> builder ->
// validator). Success means the builder returned a Schedule and the
// validator reports it feasible.
func Run(ctx context.Context, ts *domain.TaskSet, solver scheduler.Solver) RunMetrics {
	start := time.Now()
	metrics := RunMetrics{
		RunID:       uuid.NewString(),
		Scheduler:   solver.Kind(),
		NTasks:      len(ts.Tasks),
		Utilization: ts.Utilization(),
	}

	geo, err := geometry.Compute(ts)
	if err != nil {
		metrics.Err = err
		metrics.TotalTime = time.Since(start)
		return metrics
	}

	assignment, err := solver.Solve(ctx, ts, geo)
	if err != nil {
		metrics.Err = err
		metrics.TotalTime = time.Since(start)
		return metrics
	}

	sched, err := builder.Build(ts, geo, assignment)
	if err != nil {
		metrics.Err = err
		metrics.TotalTime = time.Since(start)
		return metrics
	}

	result := validator.Validate(sched, ts.Jobs())
	metrics.Success = result.Feasible()
	metrics.TotalTime = time.Since(start)
	return metrics
}

// RunAll drains source, running each task set against solver and recording
// its RunMetrics to sink, until the source is exhausted or ctx is
// canceled. A per-task-set error from solving is recorded, not returned —
// solver failures are terminal per-invocation, not fatal to the harness,
// so only a source or sink error aborts the whole run.
func RunAll(ctx context.Context, source TaskSetSource, solver scheduler.Solver, sink ResultSink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		ts, ok, err := source.Next(ctx)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}

		metrics := Run(ctx, ts, solver)
		if err := sink.Record(ctx, metrics); err != nil {
			return err
		}
	}
}
