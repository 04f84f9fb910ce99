// Package geometry derives the cyclic-executive's frame structure from a
// TaskSet: the hyperperiod, a valid frame size, and the set of frames each
// job may legally run in. Every function here is a pure function of the
// TaskSet (no mutation, no I/O).
package geometry

import (
	"math"

	"cyclicexec/apperror"
	"cyclicexec/domain"
)

// FrameGeometry is the computed frame structure for one TaskSet.
type FrameGeometry struct {
	Hyperperiod int64
	FrameSize   int64
	NumFrames   int64

	// validFrames[jobKey] is the sorted list of frame indices (1-based)
	// fully contained in that job's [release, deadline] window.
	validFrames map[domain.JobKey][]int64
}

// Compute derives the hyperperiod, chooses a frame size, and enumerates
// every job's valid-frame set. Returns apperror (CodeInfeasibleFrameSize)
// if no admissible frame size exists.
func Compute(ts *domain.TaskSet) (*FrameGeometry, error) {
	h := ts.Hyperperiod()

	f, err := ChooseFrameSize(ts, h)
	if err != nil {
		return nil, err
	}

	g := &FrameGeometry{
		Hyperperiod: h,
		FrameSize:   f,
		NumFrames:   h / f,
		validFrames: make(map[domain.JobKey][]int64),
	}

	for _, job := range ts.Jobs() {
		g.validFrames[job.Key()] = validFrameSet(job, f, g.NumFrames)
	}

	return g, nil
}

// ChooseFrameSize searches candidate frame sizes from H down to 2 — this
// favors coarser frames, shrinking the solver problem — and returns the
// first f satisfying all three validity rules:
//
//	(a) f divides H
//	(b) f >= max_i ceil(C_i)
//	(c) for every task, 2f - gcd(T_i, f) <= D_i
func ChooseFrameSize(ts *domain.TaskSet, h int64) (int64, error) {
	minF := math.Ceil(ts.MaxWCET() - domain.Epsilon)

	for f := h; f >= 2; f-- {
		if h%f != 0 {
			continue
		}
		if float64(f) < minF {
			continue
		}
		if frameSizeSatisfiesDeadlines(ts, f) {
			return f, nil
		}
	}

	return 0, apperror.New(apperror.CodeInfeasibleFrameSize,
		"no frame size f >= 2 divides the hyperperiod while satisfying every task's deadline lemma")
}

func frameSizeSatisfiesDeadlines(ts *domain.TaskSet, f int64) bool {
	for _, t := range ts.Tasks {
		g := domain.GCD(t.Period, f)
		if 2*f-g > t.Deadline {
			return false
		}
	}
	return true
}

// validFrameSet returns every frame index k (1-based) such that the frame
// [(k-1)*f, k*f] lies wholly inside [job.Release, job.Deadline].
func validFrameSet(job domain.Job, f, numFrames int64) []int64 {
	var frames []int64
	for k := int64(1); k <= numFrames; k++ {
		frameStart := (k - 1) * f
		frameEnd := k * f
		if frameStart >= job.Release && frameEnd <= job.Deadline {
			frames = append(frames, k)
		}
	}
	return frames
}

// Rehydrate reconstructs a FrameGeometry from already-computed field values,
// for callers restoring one from a cache instead of recomputing it with
// Compute.
func Rehydrate(hyperperiod, frameSize, numFrames int64, validFrames map[domain.JobKey][]int64) *FrameGeometry {
	return &FrameGeometry{
		Hyperperiod: hyperperiod,
		FrameSize:   frameSize,
		NumFrames:   numFrames,
		validFrames: validFrames,
	}
}

// ValidFrames returns the valid-frame set for a job, or (nil, false) if the
// job is unknown to this geometry (e.g. computed against a different
// TaskSet).
func (g *FrameGeometry) ValidFrames(key domain.JobKey) ([]int64, bool) {
	frames, ok := g.validFrames[key]
	return frames, ok
}

// AllValidFrames returns the full job -> valid-frame-set mapping. The
// returned map must not be mutated by callers.
func (g *FrameGeometry) AllValidFrames() map[domain.JobKey][]int64 {
	return g.validFrames
}

// FrameBounds returns the [start, end) time bounds of frame k (1-based).
func (g *FrameGeometry) FrameBounds(k int64) (start, end int64) {
	return (k - 1) * g.FrameSize, k * g.FrameSize
}
