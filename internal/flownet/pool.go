package flownet

import "sync"

// GraphPool recycles *Graph instances across repeated solves of
// same-shaped task sets, avoiding the repeated dense-matrix allocation a
// fresh NewGraph(n) would otherwise cost on every scheduler.FlowSolver.Solve
// call. Graph and MaxFlowEngine keep their own scratch slices, so the graph
// is the only type worth pooling.
//
// GraphPool is safe for concurrent use; a *Graph acquired from it must not
// be shared across goroutines until released.
type GraphPool struct {
	pool sync.Pool
}

// NewGraphPool returns an empty pool. The zero value is also ready to use;
// this constructor exists for symmetry with the rest of the module's
// constructors.
func NewGraphPool() *GraphPool {
	return &GraphPool{}
}

// Acquire returns a *Graph reset to n vertices, reused from the pool if one
// is available.
func (p *GraphPool) Acquire(n int) *Graph {
	v := p.pool.Get()
	if v == nil {
		return NewGraph(n)
	}
	g := v.(*Graph)
	g.Reset(n)
	return g
}

// Release returns g to the pool. g must not be used again by the caller
// afterward. Releasing nil is a no-op.
func (p *GraphPool) Release(g *Graph) {
	if g == nil {
		return
	}
	p.pool.Put(g)
}
