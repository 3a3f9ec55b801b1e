// Package graph builds the reference graph over a set of parsed models and
// validates the structural properties the fixture depends on: every
// reference resolves, and the graph is acyclic.
package graph

import (
	"sort"

	"github.com/groblegark/loom/internal/model"
)

// Edge represents one reference as a directed graph edge.
type Edge struct {
	Source string `json:"source"` // the referencing model
	Target string `json:"target"` // the referenced model
}

// Stats holds aggregate counts over the reference graph.
type Stats struct {
	Models         int    `json:"models"`
	Enabled        int    `json:"enabled"`
	Edges          int    `json:"edges"`  // resolved references, matches Edges()
	Roots          int    `json:"roots"`  // models no other model references
	Leaves         int    `json:"leaves"` // models with no references
	MaxFanOut      int    `json:"max_fan_out"`
	MaxFanOutModel string `json:"max_fan_out_model,omitempty"`
}

// Graph is an immutable reference graph over named models.
type Graph struct {
	nodes map[string]*model.Model
	names []string // node names in lexical order; index order is canonical
	index map[string]int

	// out[i] lists indices of models that names[i] references, excluding
	// dangling references. dependents is the reverse adjacency.
	out        [][]int
	dependents [][]int
	dangling   []Ref
}

// Ref is one unresolved reference: Model names a model whose file references
// the non-existent name Target.
type Ref struct {
	Model  string `json:"model"`
	Target string `json:"target"`
}

// New builds the reference graph. Dangling references are recorded, not
// rejected; Validate reports them.
func New(models []*model.Model) *Graph {
	g := &Graph{
		nodes: make(map[string]*model.Model, len(models)),
		index: make(map[string]int, len(models)),
	}
	for _, m := range models {
		g.nodes[m.Name] = m
	}
	g.names = make([]string, 0, len(g.nodes))
	for name := range g.nodes {
		g.names = append(g.names, name)
	}
	sort.Strings(g.names)
	for i, name := range g.names {
		g.index[name] = i
	}

	g.out = make([][]int, len(g.names))
	g.dependents = make([][]int, len(g.names))
	for i, name := range g.names {
		m := g.nodes[name]
		for _, ref := range m.Refs {
			j, ok := g.index[ref]
			if !ok {
				g.dangling = append(g.dangling, Ref{Model: name, Target: ref})
				continue
			}
			g.out[i] = append(g.out[i], j)
			g.dependents[j] = append(g.dependents[j], i)
		}
	}
	for i := range g.out {
		sort.Ints(g.out[i])
		sort.Ints(g.dependents[i])
	}
	sort.Slice(g.dangling, func(i, j int) bool {
		if g.dangling[i].Model != g.dangling[j].Model {
			return g.dangling[i].Model < g.dangling[j].Model
		}
		return g.dangling[i].Target < g.dangling[j].Target
	})
	return g
}

// Len returns the number of models in the graph.
func (g *Graph) Len() int {
	return len(g.names)
}

// Model returns the named model, or nil.
func (g *Graph) Model(name string) *model.Model {
	return g.nodes[name]
}

// Names returns the model names in lexical order.
func (g *Graph) Names() []string {
	out := make([]string, len(g.names))
	copy(out, g.names)
	return out
}

// Edges returns every resolved reference edge, ordered by source then target.
func (g *Graph) Edges() []Edge {
	var edges []Edge
	for i, name := range g.names {
		for _, j := range g.out[i] {
			edges = append(edges, Edge{Source: name, Target: g.names[j]})
		}
	}
	return edges
}

// Stats computes aggregate counts over the graph.
func (g *Graph) Stats() Stats {
	s := Stats{Models: len(g.names)}
	for i, name := range g.names {
		m := g.nodes[name]
		if m.Config.Enabled {
			s.Enabled++
		}
		s.Edges += len(g.out[i])
		if len(m.Refs) == 0 {
			s.Leaves++
		}
		if len(g.dependents[i]) == 0 {
			s.Roots++
		}
		if len(m.Refs) > s.MaxFanOut {
			s.MaxFanOut = len(m.Refs)
			s.MaxFanOutModel = name
		}
	}
	return s
}
