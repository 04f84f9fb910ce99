package scheduler

import (
	"context"
	"math"
	"sort"

	"cyclicexec/apperror"
	"cyclicexec/domain"
	"cyclicexec/geometry"
	"cyclicexec/internal/flownet"
)

// integerScale is the fixed-point factor WCETs are multiplied by before
// running the max-flow engine: max-flow integrality needs integer
// capacities, so fractional WCETs are scaled to integer units first. The
// solver never needs to unscale times — the flow network only ever decides
// which single frame each job lands in — so no unscale step exists
// downstream. Covers WCETs expressed to up to 6 decimal places.
const integerScale = 1_000_000

// FlowSolver assigns jobs to frames via a bipartite max-flow between jobs
// and frames, followed by a best-fit-descent repair pass that
// re-concentrates any job the flow split across multiple frames.
type FlowSolver struct {
	pool *flownet.GraphPool
}

// NewFlowSolver returns Solver B, allocating a fresh flownet.Graph on every
// Solve call.
func NewFlowSolver() *FlowSolver { return &FlowSolver{} }

// NewFlowSolverWithPool returns Solver B backed by pool: repeated Solve
// calls against task sets with the same job/frame count reuse the pool's
// dense matrices instead of reallocating them, the way scheduler.Pool's
// batch runs do across many task sets of similar shape.
func NewFlowSolverWithPool(pool *flownet.GraphPool) *FlowSolver {
	return &FlowSolver{pool: pool}
}

func (s *FlowSolver) Kind() Kind { return KindFlow }

// flowNetwork bundles the graph plus the node-index bijections the solver
// and the repair pass both need.
type flowNetwork struct {
	g         *flownet.Graph
	source    int
	sink      int
	jobIdx    map[domain.JobKey]int
	frameIdx  map[int64]int
	scale     int64
	frameSize int64
}

func (s *FlowSolver) Solve(ctx context.Context, ts *domain.TaskSet, geo *geometry.FrameGeometry) (*Assignment, error) {
	jobs := ts.Jobs()
	assignment := NewAssignment(geo.NumFrames)

	// Zero-WCET jobs contribute no work and cannot carry flow (their sink
	// edge would have capacity 0), so place them directly into their
	// earliest valid frame before building the network.
	var workJobs []domain.Job
	for _, job := range jobs {
		if job.WCET <= domain.Epsilon {
			frames, ok := geo.ValidFrames(job.Key())
			if !ok || len(frames) == 0 {
				return nil, apperror.Newf(apperror.CodeInfeasibleAssignment, "job %+v has an empty valid-frame set", job.Key())
			}
			assignment.Place(frames[0], job.Key())
			continue
		}
		workJobs = append(workJobs, job)
	}

	if len(workJobs) == 0 {
		return assignment, nil
	}

	net, err := buildFlowNetwork(workJobs, geo, s.pool)
	if err != nil {
		return nil, err
	}
	if s.pool != nil {
		defer s.pool.Release(net.g)
	}

	maxFlow, iterations, err := flownet.NewMaxFlowEngine(net.g).Run(ctx, net.source, net.sink)
	if err != nil {
		return nil, apperror.Wrap(apperror.CodeInfeasibleAssignment, err, "max-flow computation canceled")
	}

	wantFlow := scaleFlow(totalWork(workJobs), net.scale)
	if maxFlow != wantFlow {
		return nil, apperror.Newf(apperror.CodeInfeasibleAssignment,
			"max flow %d does not saturate total work %d: no valid assignment exists", maxFlow, wantFlow)
	}

	repairs, err := repairSplitJobs(net, workJobs, geo)
	if err != nil {
		return nil, err
	}

	for _, job := range workJobs {
		k, ok := solelyAssignedFrame(net, job, geo)
		if !ok {
			return nil, apperror.Newf(apperror.CodeInfeasibleAssignment, "job %+v has no single assigned frame after repair", job.Key())
		}
		assignment.Place(k, job.Key())
	}

	assignment.Iterations = iterations
	assignment.MaxFlow = float64(maxFlow) / float64(net.scale)
	assignment.BFDRepairs = repairs

	return assignment, nil
}

func totalWork(jobs []domain.Job) float64 {
	var w float64
	for _, j := range jobs {
		w += j.WCET
	}
	return w
}

func scaleFlow(c float64, scale int64) int64 {
	return int64(math.Round(c * float64(scale)))
}

// wcetScale returns the fixed-point factor a job set's capacities need
// before an integrality-sensitive backend runs: 1 when every WCET is
// integer-valued within Epsilon, integerScale otherwise. Both solvers call
// this, so identical input is scaled identically regardless of solver
// choice.
func wcetScale(jobs []domain.Job) int64 {
	for _, j := range jobs {
		if math.Abs(j.WCET-math.Round(j.WCET)) > domain.Epsilon {
			return integerScale
		}
	}
	return 1
}

// buildFlowNetwork constructs the source/frame/job/sink graph: the source
// feeds each frame up to its capacity, each frame feeds the jobs whose
// window contains it, and each job drains its WCET into the sink. Vertex
// indexing is deterministic: source=0, sink=1, jobs in TaskSet insertion
// order starting at 2, then frames in ascending k.
func buildFlowNetwork(jobs []domain.Job, geo *geometry.FrameGeometry, pool *flownet.GraphPool) (*flowNetwork, error) {
	scale := wcetScale(jobs)

	const source, sink = 0, 1
	next := 2

	jobIdx := make(map[domain.JobKey]int, len(jobs))
	for _, j := range jobs {
		jobIdx[j.Key()] = next
		next++
	}

	var frameKeys []int64
	for k := int64(1); k <= geo.NumFrames; k++ {
		frameKeys = append(frameKeys, k)
	}
	frameIdx := make(map[int64]int, len(frameKeys))
	for _, k := range frameKeys {
		frameIdx[k] = next
		next++
	}

	var g *flownet.Graph
	if pool != nil {
		g = pool.Acquire(next)
	} else {
		g = flownet.NewGraph(next)
	}
	frameCap := geo.FrameSize * scale

	for _, k := range frameKeys {
		g.AddEdge(source, frameIdx[k], frameCap)
	}

	for _, j := range jobs {
		frames, ok := geo.ValidFrames(j.Key())
		if !ok || len(frames) == 0 {
			return nil, apperror.Newf(apperror.CodeInfeasibleAssignment, "job %+v has an empty valid-frame set", j.Key())
		}
		for _, k := range frames {
			g.AddEdge(frameIdx[k], jobIdx[j.Key()], frameCap)
		}
		g.AddEdge(jobIdx[j.Key()], sink, scaleFlow(j.WCET, scale))
	}

	return &flowNetwork{
		g: g, source: source, sink: sink,
		jobIdx: jobIdx, frameIdx: frameIdx,
		scale: scale, frameSize: geo.FrameSize,
	}, nil
}

// preemptedJob is a job whose max-flow allocation spans more than one
// frame and therefore must be repaired: a cyclic executive cannot split a
// job across frames.
type preemptedJob struct {
	job    domain.Job
	period int64
}

// repairSplitJobs is the best-fit-descent pass: detect jobs split across
// frames, zero out their flow, then re-place each — ordered by ascending
// task period, ties by task id then job id — into the valid frame with the
// smallest residual capacity that can still hold it (best fit). Returns the
// number of jobs repaired, reported upstream for telemetry.
func repairSplitJobs(net *flowNetwork, jobs []domain.Job, geo *geometry.FrameGeometry) (int, error) {
	var preempted []preemptedJob

	for _, job := range jobs {
		frames, _ := geo.ValidFrames(job.Key())
		var contributingFrames []int64
		for _, k := range frames {
			if net.g.Flow(net.frameIdx[k], net.jobIdx[job.Key()]) > 0 {
				contributingFrames = append(contributingFrames, k)
			}
		}
		if len(contributingFrames) <= 1 {
			continue
		}

		for _, k := range contributingFrames {
			delta := net.g.Flow(net.frameIdx[k], net.jobIdx[job.Key()])
			net.g.AddFlow(net.source, net.frameIdx[k], -delta)
			net.g.AddFlow(net.frameIdx[k], net.jobIdx[job.Key()], -delta)
			net.g.AddFlow(net.jobIdx[job.Key()], net.sink, -delta)
		}

		task, _ := taskOf(job, geo)
		preempted = append(preempted, preemptedJob{job: job, period: task})
	}

	sort.SliceStable(preempted, func(i, j int) bool {
		a, b := preempted[i], preempted[j]
		if a.period != b.period {
			return a.period < b.period
		}
		if a.job.TaskID != b.job.TaskID {
			return a.job.TaskID < b.job.TaskID
		}
		return a.job.Index < b.job.Index
	})

	for _, pj := range preempted {
		frames, _ := geo.ValidFrames(pj.job.Key())
		need := scaleFlow(pj.job.WCET, net.scale)

		bestK, bestResidual := int64(0), int64(-1)
		for _, k := range frames {
			residual := net.g.Residual(net.source, net.frameIdx[k])
			if residual < need {
				continue
			}
			if bestResidual == -1 || residual < bestResidual || (residual == bestResidual && k < bestK) {
				bestK, bestResidual = k, residual
			}
		}

		if bestResidual == -1 {
			return 0, apperror.Newf(apperror.CodeInfeasibleAssignment,
				"best-fit-descent repair found no frame with residual capacity for job %+v", pj.job.Key())
		}

		net.g.AddFlow(net.source, net.frameIdx[bestK], need)
		net.g.AddFlow(net.frameIdx[bestK], net.jobIdx[pj.job.Key()], need)
		net.g.AddFlow(net.jobIdx[pj.job.Key()], net.sink, need)
	}

	return len(preempted), nil
}

// taskOf resolves a job's task period; used only for BFD ordering. geo does
// not carry task data directly, so the period is derived from the job's
// release/deadline spacing (deadline - release == period under the
// implicit-deadline model).
func taskOf(job domain.Job, _ *geometry.FrameGeometry) (int64, bool) {
	return job.Deadline - job.Release, true
}

// solelyAssignedFrame returns the one frame carrying positive flow into
// job, after repair has guaranteed there is exactly one.
func solelyAssignedFrame(net *flowNetwork, job domain.Job, geo *geometry.FrameGeometry) (int64, bool) {
	frames, _ := geo.ValidFrames(job.Key())
	for _, k := range frames {
		if net.g.Flow(net.frameIdx[k], net.jobIdx[job.Key()]) > 0 {
			return k, true
		}
	}
	return 0, false
}
