package graph

import (
	"container/heap"
	"fmt"
	"strings"
)

// CycleError reports a dependency cycle with one deterministic witness path.
// The path starts and ends at the same model.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return "dependency cycle: " + strings.Join(e.Path, " -> ")
}

// Report is the outcome of structural validation.
type Report struct {
	Dangling []Ref       `json:"dangling,omitempty"`
	Cycle    *CycleError `json:"cycle,omitempty"`
}

// OK reports whether the graph passed validation.
func (r *Report) OK() bool {
	return len(r.Dangling) == 0 && r.Cycle == nil
}

// Err collapses the report into a single error, or nil when the graph is valid.
func (r *Report) Err() error {
	if r.OK() {
		return nil
	}
	var parts []string
	for _, d := range r.Dangling {
		parts = append(parts, fmt.Sprintf("model %q references non-existent model %q", d.Model, d.Target))
	}
	if r.Cycle != nil {
		parts = append(parts, r.Cycle.Error())
	}
	return fmt.Errorf("invalid reference graph: %s", strings.Join(parts, "; "))
}

// Validate checks the two fixture invariants: every symbolic reference
// resolves to an existing model, and the reference graph is acyclic.
func (g *Graph) Validate() *Report {
	r := &Report{Dangling: g.dangling}
	if _, err := g.TopoOrder(); err != nil {
		r.Cycle = err
	}
	return r
}

type intMinHeap []int

func (h intMinHeap) Len() int           { return len(h) }
func (h intMinHeap) Less(i, j int) bool { return h[i] < h[j] }
func (h intMinHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *intMinHeap) Push(x any)        { *h = append(*h, x.(int)) }
func (h *intMinHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// TopoOrder returns a deterministic dependency-first ordering of model names:
// every model appears after all models it references. Determinism comes from
// a min-heap over canonical (lexical) indices. Dangling references are
// ignored here; Validate reports them separately.
func (g *Graph) TopoOrder() ([]string, *CycleError) {
	// Kahn's algorithm. A model's in-degree is the number of models it
	// references, so zero-degree nodes are the leaves.
	indeg := make([]int, len(g.names))
	for i := range g.out {
		indeg[i] = len(g.out[i])
	}

	ready := &intMinHeap{}
	heap.Init(ready)
	for i, d := range indeg {
		if d == 0 {
			heap.Push(ready, i)
		}
	}

	order := make([]string, 0, len(g.names))
	for ready.Len() > 0 {
		i := heap.Pop(ready).(int)
		order = append(order, g.names[i])
		for _, j := range g.dependents[i] {
			indeg[j]--
			if indeg[j] == 0 {
				heap.Push(ready, j)
			}
		}
	}

	if len(order) < len(g.names) {
		return nil, &CycleError{Path: g.findCycle()}
	}
	return order, nil
}

// findCycle extracts one stable cycle witness with an ordered DFS over the
// reference edges. It assumes a cycle exists.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)

	color := make([]int, len(g.names))
	parent := make([]int, len(g.names))
	for i := range parent {
		parent[i] = -1
	}

	var cycle []int
	var dfs func(u int) bool
	dfs = func(u int) bool {
		color[u] = gray
		for _, v := range g.out[u] { // already sorted
			if color[v] == white {
				parent[v] = u
				if dfs(v) {
					return true
				}
				continue
			}
			if color[v] == gray {
				// Back-edge u -> v. Walk parents from u back to v.
				cycle = append(cycle, v)
				for cur := u; cur != -1 && cur != v; cur = parent[cur] {
					cycle = append(cycle, cur)
				}
				cycle = append(cycle, v)
				return true
			}
		}
		color[u] = black
		return false
	}

	for i := 0; i < len(g.names); i++ {
		if color[i] == white && dfs(i) {
			break
		}
	}
	if len(cycle) == 0 {
		return nil
	}

	// The walk collected the cycle in reverse; flip it into forward order.
	out := make([]string, 0, len(cycle))
	for i := len(cycle) - 1; i >= 0; i-- {
		out = append(out, g.names[cycle[i]])
	}
	return out
}
