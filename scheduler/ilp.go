package scheduler

import (
	"context"
	"sort"

	"cyclicexec/apperror"
	"cyclicexec/domain"
	"cyclicexec/geometry"
)

// MIPBackend solves the 0/1 feasibility formulation: for every job i and
// every frame k in its valid-frame set, a binary variable x_{i,k} is 1 iff
// job i is placed in frame k, subject to each job having exactly one
// variable set and each frame's placed WCETs summing to at most the frame
// size. MIPBackend keeps the solver pluggable: a real external solver
// (CPLEX, Gurobi, HiGHS, a CP-SAT binding) could implement this interface
// without scheduler.ILPSolver's caller-facing API changing. The only
// implementation shipped here, backtrackingBackend, is a deterministic
// depth-first feasibility search.
type MIPBackend interface {
	Solve(ctx context.Context, p *ilpProblem) (*Assignment, error)
}

// ilpProblem is the backend-facing view of an ILP instance: one entry per
// job, in task insertion order then job index, each carrying its valid
// frames and WCET.
type ilpProblem struct {
	numFrames int64
	frameSize int64
	jobs      []ilpJob
}

type ilpJob struct {
	key    domain.JobKey
	wcet   int64 // scaled to integer units, see scaleFlow in flow.go
	frames []int64
}

// ILPSolver assigns jobs to frames by solving the binary feasibility
// formulation via a pluggable MIPBackend.
type ILPSolver struct {
	backend MIPBackend
}

// NewILPSolver returns Solver A using the default backtracking backend. Pass
// a custom MIPBackend (e.g. a wrapper around an external solver binary) via
// NewILPSolverWithBackend.
func NewILPSolver() *ILPSolver {
	return &ILPSolver{backend: &backtrackingBackend{}}
}

// NewILPSolverWithBackend returns Solver A using backend in place of the
// default backtracking search.
func NewILPSolverWithBackend(backend MIPBackend) *ILPSolver {
	return &ILPSolver{backend: backend}
}

func (s *ILPSolver) Kind() Kind { return KindILP }

func (s *ILPSolver) Solve(ctx context.Context, ts *domain.TaskSet, geo *geometry.FrameGeometry) (*Assignment, error) {
	jobs := ts.Jobs()
	scale := wcetScale(jobs)

	problem := &ilpProblem{
		numFrames: geo.NumFrames,
		frameSize: geo.FrameSize * scale,
	}
	for _, job := range jobs {
		frames, ok := geo.ValidFrames(job.Key())
		if !ok || len(frames) == 0 {
			return nil, apperror.Newf(apperror.CodeInfeasibleAssignment, "job %+v has an empty valid-frame set", job.Key())
		}
		problem.jobs = append(problem.jobs, ilpJob{
			key:    job.Key(),
			wcet:   scaleFlow(job.WCET, scale),
			frames: frames,
		})
	}

	return s.backend.Solve(ctx, problem)
}

// backtrackingBackend is the default MIPBackend: depth-first search over
// jobs ordered by most-constrained-first (fewest valid frames, ties broken
// by the problem's own job order), with per-frame remaining-capacity
// pruning. It is a feasibility search, not an optimizer — the question is
// only whether a 0/1 assignment exists, never an objective value.
type backtrackingBackend struct{}

func (b *backtrackingBackend) Solve(ctx context.Context, p *ilpProblem) (*Assignment, error) {
	order := make([]int, len(p.jobs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return len(p.jobs[order[i]].frames) < len(p.jobs[order[j]].frames)
	})

	remaining := make(map[int64]int64, p.numFrames)
	for k := int64(1); k <= p.numFrames; k++ {
		remaining[k] = p.frameSize
	}

	placement := make(map[domain.JobKey]int64, len(p.jobs))

	ok, err := backtrack(ctx, p, order, 0, remaining, placement)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperror.New(apperror.CodeInfeasibleAssignment, "no 0/1 frame assignment satisfies every job's deadline window and every frame's capacity")
	}

	assignment := NewAssignment(p.numFrames)
	for _, job := range p.jobs {
		assignment.Place(placement[job.key], job.key)
	}
	return assignment, nil
}

func backtrack(ctx context.Context, p *ilpProblem, order []int, pos int, remaining map[int64]int64, placement map[domain.JobKey]int64) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, apperror.Wrap(apperror.CodeInfeasibleAssignment, err, "ILP feasibility search canceled")
	}
	if pos == len(order) {
		return true, nil
	}

	job := p.jobs[order[pos]]
	candidates := make([]int64, len(job.frames))
	copy(candidates, job.frames)
	sort.Slice(candidates, func(i, j int) bool { return candidates[i] < candidates[j] })

	for _, k := range candidates {
		if remaining[k] < job.wcet {
			continue
		}

		remaining[k] -= job.wcet
		placement[job.key] = k

		ok, err := backtrack(ctx, p, order, pos+1, remaining, placement)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}

		remaining[k] += job.wcet
		delete(placement, job.key)
	}

	return false, nil
}
