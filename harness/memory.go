package harness

import (
	"context"
	"sync"

	"cyclicexec/domain"
)

// SliceSource is a TaskSetSource over a fixed in-memory slice, useful for
// tests and small offline batches.
type SliceSource struct {
	mu       sync.Mutex
	taskSets []*domain.TaskSet
	pos      int
}

// NewSliceSource returns a source that yields taskSets in order, once each.
func NewSliceSource(taskSets []*domain.TaskSet) *SliceSource {
	return &SliceSource{taskSets: taskSets}
}

func (s *SliceSource) Next(ctx context.Context) (*domain.TaskSet, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pos >= len(s.taskSets) {
		return nil, false, nil
	}
	ts := s.taskSets[s.pos]
	s.pos++
	return ts, true, nil
}

// MemorySink is a ResultSink that appends every recorded RunMetrics to an
// in-memory slice, safe for concurrent use.
type MemorySink struct {
	mu      sync.Mutex
	results []RunMetrics
}

// NewMemorySink returns an empty MemorySink.
func NewMemorySink() *MemorySink {
	return &MemorySink{}
}

func (s *MemorySink) Record(ctx context.Context, result RunMetrics) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = append(s.results, result)
	return nil
}

// Results returns a copy of every RunMetrics recorded so far.
func (s *MemorySink) Results() []RunMetrics {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]RunMetrics, len(s.results))
	copy(cp, s.results)
	return cp
}
