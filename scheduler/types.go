// Package scheduler implements the two job->frame assignment strategies:
// an ILP feasibility solver and a max-flow + best-fit-descent solver. Both
// share the Solver interface so a caller (or scheduler.Pool) can run
// either without knowing which was chosen.
package scheduler

import (
	"context"
	"sort"

	"cyclicexec/domain"
	"cyclicexec/geometry"
)

// Kind names which solver produced an Assignment.
type Kind string

const (
	KindILP  Kind = "ilp"
	KindFlow Kind = "flow"
)

// Assignment maps each frame index (1-based) to the jobs placed in it.
// Invariants, enforced by both solvers before returning: every job appears
// in exactly one frame; each frame's job WCETs sum to at most the frame
// size; each job's frame lies in its valid-frame set.
type Assignment struct {
	NumFrames int64
	frames    map[int64][]domain.JobKey

	// Iterations and MaxFlow are FlowSolver-only diagnostics: the number of
	// Edmonds-Karp augmenting paths found and the achieved max-flow value,
	// reported upstream for telemetry. ILPSolver leaves both zero — neither
	// concept applies to a feasibility search over binary variables.
	Iterations int
	MaxFlow    float64

	// BFDRepairs is the number of jobs FlowSolver's best-fit-descent pass
	// had to re-place after max-flow split them across frames. Always zero
	// for ILPSolver, which never splits a job.
	BFDRepairs int
}

// NewAssignment returns an empty assignment over numFrames frames.
func NewAssignment(numFrames int64) *Assignment {
	return &Assignment{NumFrames: numFrames, frames: make(map[int64][]domain.JobKey)}
}

// Place appends key to frame k's job list.
func (a *Assignment) Place(k int64, key domain.JobKey) {
	a.frames[k] = append(a.frames[k], key)
}

// JobsIn returns the jobs placed in frame k, or nil if none.
func (a *Assignment) JobsIn(k int64) []domain.JobKey {
	return a.frames[k]
}

// Frames returns every frame index that has at least one job placed in it,
// in ascending order.
func (a *Assignment) Frames() []int64 {
	ks := make([]int64, 0, len(a.frames))
	for k := range a.frames {
		ks = append(ks, k)
	}
	sort.Slice(ks, func(i, j int) bool { return ks[i] < ks[j] })
	return ks
}

// Solver produces a job->frame Assignment for a TaskSet given its frame
// geometry, or an apperror (typically CodeInfeasibleAssignment) if none
// exists.
type Solver interface {
	Kind() Kind
	Solve(ctx context.Context, ts *domain.TaskSet, geo *geometry.FrameGeometry) (*Assignment, error)
}
