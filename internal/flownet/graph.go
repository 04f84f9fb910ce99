// Package flownet provides a dense-matrix flow network and an Edmonds-Karp
// max-flow engine, used by scheduler.FlowSolver to compute a fractional
// job->frame assignment before best-fit-descent repair concentrates it.
//
// Capacities and flow live in dense matrices rather than object graphs
// with parent pointers: a reverse edge's residual capacity is always
// cap[v][u]-flow[v][u], with flow[v][u] == -flow[u][v] maintained as an
// invariant rather than recomputed.
package flownet

// Graph is a directed flow network over integer-indexed vertices 0..n-1.
// Capacities and flows are dense matrices; nbr records, for each vertex,
// the neighbors reachable via a forward or reverse residual edge in the
// order they were first added — BFS iterates neighbors in this order so
// max-flow runs are reproducible.
type Graph struct {
	n    int
	cap  [][]int64
	flow [][]int64
	nbr  [][]int
	seen [][]bool // seen[u][v]: v already present in nbr[u]
}

// NewGraph allocates an empty graph over n vertices (0..n-1).
func NewGraph(n int) *Graph {
	g := &Graph{
		n:    n,
		cap:  make([][]int64, n),
		flow: make([][]int64, n),
		nbr:  make([][]int, n),
		seen: make([][]bool, n),
	}
	for i := 0; i < n; i++ {
		g.cap[i] = make([]int64, n)
		g.flow[i] = make([]int64, n)
		g.seen[i] = make([]bool, n)
	}
	return g
}

// N returns the number of vertices.
func (g *Graph) N() int { return g.n }

// Reset reinitializes g as an empty graph over n vertices, reusing the
// backing row slices when n does not exceed their current capacity. Used
// by GraphPool to recycle a *Graph across repeated solves instead of
// reallocating the cap/flow/nbr/seen matrices from scratch each time.
func (g *Graph) Reset(n int) {
	g.n = n
	if cap(g.cap) < n {
		g.cap = make([][]int64, n)
		g.flow = make([][]int64, n)
		g.nbr = make([][]int, n)
		g.seen = make([][]bool, n)
	} else {
		g.cap = g.cap[:n]
		g.flow = g.flow[:n]
		g.nbr = g.nbr[:n]
		g.seen = g.seen[:n]
	}

	for i := 0; i < n; i++ {
		if cap(g.cap[i]) < n {
			g.cap[i] = make([]int64, n)
			g.flow[i] = make([]int64, n)
			g.seen[i] = make([]bool, n)
		} else {
			g.cap[i] = g.cap[i][:n]
			g.flow[i] = g.flow[i][:n]
			g.seen[i] = g.seen[i][:n]
			for j := 0; j < n; j++ {
				g.cap[i][j] = 0
				g.flow[i][j] = 0
				g.seen[i][j] = false
			}
		}
		if g.nbr[i] != nil {
			g.nbr[i] = g.nbr[i][:0]
		}
	}
}

// AddEdge adds capacity to the forward edge u->v and registers both u->v
// and v->u in the adjacency lists, so the residual reverse edge is always
// traversable by BFS even before any flow exists on it. Calling AddEdge
// again for the same (u,v) accumulates capacity (parallel edges).
func (g *Graph) AddEdge(u, v int, capacity int64) {
	g.cap[u][v] += capacity
	g.link(u, v)
	g.link(v, u)
}

func (g *Graph) link(u, v int) {
	if !g.seen[u][v] {
		g.seen[u][v] = true
		g.nbr[u] = append(g.nbr[u], v)
	}
}

// Neighbors returns u's adjacency list in insertion order. Callers must not
// mutate the returned slice.
func (g *Graph) Neighbors(u int) []int { return g.nbr[u] }

// Capacity returns the original (unreduced) capacity of edge u->v.
func (g *Graph) Capacity(u, v int) int64 { return g.cap[u][v] }

// Flow returns the current flow on edge u->v (negative if flow runs v->u).
func (g *Graph) Flow(u, v int) int64 { return g.flow[u][v] }

// Residual returns the remaining capacity on edge u->v: cap[u][v]-flow[u][v].
func (g *Graph) Residual(u, v int) int64 { return g.cap[u][v] - g.flow[u][v] }

// AddFlow pushes delta units of flow along u->v, maintaining the
// antisymmetry flow[v][u] == -flow[u][v]. delta may be negative to undo
// flow (used by BFD repair to reset a split job's contributions).
func (g *Graph) AddFlow(u, v int, delta int64) {
	g.flow[u][v] += delta
	g.flow[v][u] -= delta
}
