package flownet

import "context"

// noParent marks a vertex BFS has not discovered yet.
const noParent = -1

// sourceSentinel marks the BFS source vertex itself — distinct from
// noParent so callers can tell "the source" from "never reached" when
// walking the parent array.
const sourceSentinel = -2

// MaxFlowEngine runs Edmonds-Karp (BFS augmenting paths) over a Graph.
//
// Complexity: O(V*E^2) worst case; in practice bounded by the bipartite
// source/frame/job/sink structure scheduler.FlowSolver builds.
type MaxFlowEngine struct {
	g *Graph
}

// NewMaxFlowEngine wraps g for running max-flow. g is mutated in place: the
// flow matrix reflects the computed flow after Run returns.
func NewMaxFlowEngine(g *Graph) *MaxFlowEngine {
	return &MaxFlowEngine{g: g}
}

// Run computes the maximum flow from source to sink, repeatedly finding a
// shortest (fewest-edges) augmenting path via BFS and pushing its
// bottleneck capacity until no augmenting path remains or ctx is canceled.
// The second return value is the number of augmenting paths found, reported
// upstream for telemetry.
func (e *MaxFlowEngine) Run(ctx context.Context, source, sink int) (int64, int, error) {
	var total int64
	var iterations int
	for {
		if err := ctx.Err(); err != nil {
			return total, iterations, err
		}

		bottleneck, parent := e.bfs(ctx, source, sink)
		if bottleneck <= 0 {
			return total, iterations, nil
		}

		iterations++
		total += bottleneck
		for v := sink; v != source; {
			u := parent[v]
			e.g.AddFlow(u, v, bottleneck)
			v = u
		}
	}
}

// bfs finds the shortest augmenting path from source to sink in the
// residual graph. Returns the path's bottleneck capacity (0 if no path
// exists) and the BFS parent array; parent[source] == sourceSentinel,
// undiscovered vertices hold noParent.
func (e *MaxFlowEngine) bfs(ctx context.Context, source, sink int) (int64, []int) {
	n := e.g.N()
	parent := make([]int, n)
	for i := range parent {
		parent[i] = noParent
	}
	bottleneck := make([]int64, n)

	parent[source] = sourceSentinel
	bottleneck[source] = maxInt64
	visited := make([]bool, n)
	visited[source] = true

	queue := []int{source}
	for len(queue) > 0 {
		select {
		case <-ctx.Done():
			return 0, parent
		default:
		}

		u := queue[0]
		queue = queue[1:]

		for _, v := range e.g.Neighbors(u) {
			if visited[v] {
				continue
			}
			residual := e.g.Residual(u, v)
			if residual <= 0 {
				continue
			}
			visited[v] = true
			parent[v] = u
			bottleneck[v] = min64(bottleneck[u], residual)
			if v == sink {
				return bottleneck[sink], parent
			}
			queue = append(queue, v)
		}
	}

	return 0, parent
}

const maxInt64 = int64(1) << 62

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
