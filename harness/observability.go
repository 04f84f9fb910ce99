package harness

import (
	"context"
	"time"

	"cyclicexec/builder"
	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/internal/cache"
	"cyclicexec/internal/logger"
	"cyclicexec/internal/metrics"
	"cyclicexec/internal/telemetry"
	"cyclicexec/scheduler"
	"cyclicexec/validator"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

// Harness wires the bare solve pipeline (Run/RunAll) to the ambient
// metrics, tracing and caching stack, each injected at construction. Every
// field is optional: a zero-value Harness behaves exactly like the bare
// Run function, just routed through one more layer.
type Harness struct {
	metrics  *metrics.Metrics
	tracer   *telemetry.Provider
	geocache *cache.GeometryCache
}

// Option configures a Harness at construction.
type Option func(*Harness)

// WithMetrics attaches a Metrics instance; every Run call observes solve
// duration/outcome, the chosen frame size, and BFD repair counts against it.
func WithMetrics(m *metrics.Metrics) Option {
	return func(h *Harness) { h.metrics = m }
}

// WithTracer attaches a telemetry Provider; every Run call opens a span
// covering geometry-through-validation and records the real algorithm
// attributes once the solver returns.
func WithTracer(p *telemetry.Provider) Option {
	return func(h *Harness) { h.tracer = p }
}

// WithGeometryCache attaches a GeometryCache; Run checks it before calling
// geometry.Compute and populates it on a miss.
func WithGeometryCache(gc *cache.GeometryCache) Option {
	return func(h *Harness) { h.geocache = gc }
}

// New builds a Harness from opts, applied in order.
func New(opts ...Option) *Harness {
	h := &Harness{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run solves one TaskSet exactly as the package-level Run does, additionally
// recording span attributes, Prometheus observations, and geometry-cache
// reads/writes around the steps that produce them.
func (h *Harness) Run(ctx context.Context, ts *domain.TaskSet, solver scheduler.Solver) RunMetrics {
	kind := solver.Kind()
	start := time.Now()
	result := RunMetrics{
		RunID:       uuid.NewString(),
		Scheduler:   kind,
		NTasks:      len(ts.Tasks),
		Utilization: ts.Utilization(),
	}

	var span trace.Span
	if h.tracer != nil {
		ctx, span = h.tracer.StartSolveSpan(ctx, string(kind))
		defer span.End()
	}

	geo, err := h.computeGeometry(ctx, ts)
	if err != nil {
		result.Err = err
		result.TotalTime = time.Since(start)
		h.finish(span, kind, result, nil)
		return result
	}
	if span != nil {
		span.SetAttributes(telemetry.GeometryAttributes(geo.FrameSize, geo.NumFrames, geo.Hyperperiod)...)
	}
	if h.metrics != nil {
		h.metrics.ObserveFrameSize(geo.FrameSize)
	}

	assignment, err := solver.Solve(ctx, ts, geo)
	if err != nil {
		result.Err = err
		result.TotalTime = time.Since(start)
		h.finish(span, kind, result, nil)
		return result
	}
	if h.metrics != nil && assignment.BFDRepairs > 0 {
		h.metrics.ObserveBFDRepairs(assignment.BFDRepairs)
	}

	sched, err := builder.Build(ts, geo, assignment)
	if err != nil {
		result.Err = err
		result.TotalTime = time.Since(start)
		h.finish(span, kind, result, assignment)
		return result
	}

	validation := validator.Validate(sched, ts.Jobs())
	result.Success = validation.Feasible()
	result.TotalTime = time.Since(start)
	if span != nil {
		span.SetAttributes(telemetry.ValidationAttributes(validation.WCETOK, validation.DeadlineOK)...)
	}
	h.finish(span, kind, result, assignment)
	return result
}

// RunAll drains source exactly as the package-level RunAll does, routing
// each solve through Harness.Run instead of the bare function.
func (h *Harness) RunAll(ctx context.Context, source TaskSetSource, solver scheduler.Solver, sink ResultSink) error {
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

		result := h.Run(ctx, ts, solver)
		if err := sink.Record(ctx, result); err != nil {
			return err
		}
	}
}

// computeGeometry consults the geometry cache, if attached, before falling
// back to geometry.Compute; a hit is validated by reuse, a miss populates
// the cache for the next TaskSet with the same shape.
func (h *Harness) computeGeometry(ctx context.Context, ts *domain.TaskSet) (*geometry.FrameGeometry, error) {
	if h.geocache != nil {
		if geo, ok := h.geocache.Get(ctx, ts); ok {
			return geo, nil
		}
	}

	geo, err := geometry.Compute(ts)
	if err != nil {
		return nil, err
	}

	if h.geocache != nil {
		_ = h.geocache.Set(ctx, ts, geo)
	}

	return geo, nil
}

// finish records the solve's outcome against the log, metrics, and the
// span, if attached.
func (h *Harness) finish(span trace.Span, kind scheduler.Kind, result RunMetrics, assignment *scheduler.Assignment) {
	log := logger.WithSolver(string(kind)).With("run_id", result.RunID)
	durationMS := float64(result.TotalTime.Microseconds()) / 1000.0
	if result.Err != nil {
		log.Warn("run failed", "error", result.Err, "duration_ms", durationMS)
	} else if assignment != nil && kind == scheduler.KindFlow {
		log.Info("run complete", "success", result.Success, "duration_ms", durationMS,
			"iterations", assignment.Iterations, "max_flow", assignment.MaxFlow,
			"bfd_repairs", assignment.BFDRepairs)
	} else {
		log.Info("run complete", "success", result.Success, "duration_ms", durationMS)
	}

	if h.metrics != nil {
		h.metrics.ObserveSolve(string(kind), result.Success, result.TotalTime)
	}
	if span == nil {
		return
	}
	if result.Err != nil {
		telemetry.SetSpanError(span, result.Err)
		return
	}
	if assignment != nil {
		telemetry.SetSolveResult(span, string(kind), assignment.Iterations, assignment.MaxFlow)
	}
}
