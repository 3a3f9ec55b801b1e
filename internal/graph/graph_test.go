package graph

import (
	"testing"

	"github.com/groblegark/loom/internal/model"
)

// node builds a minimal enabled model with the given refs.
func node(name string, refs ...string) *model.Model {
	return &model.Model{
		Name:   name,
		Path:   "models/" + name + ".sql",
		Config: model.DefaultConfig(),
		Refs:   refs,
	}
}

// scatterModels builds a scatter fixture: a root referencing n leaves.
func scatterModels(n int) []*model.Model {
	models := make([]*model.Model, 0, n+1)
	refs := make([]string, 0, n)
	for i := 0; i < n; i++ {
		name := nodeName(i)
		models = append(models, node(name))
		refs = append(refs, name)
	}
	models = append(models, node("root_scatter", refs...))
	return models
}

func nodeName(i int) string {
	return "node_0_" + string(rune('0'+i))
}

func TestGraph_Edges(t *testing.T) {
	g := New(scatterModels(3))

	if g.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", g.Len())
	}
	edges := g.Edges()
	if len(edges) != 3 {
		t.Fatalf("Edges() returned %d edges, want 3", len(edges))
	}
	for i, e := range edges {
		if e.Source != "root_scatter" {
			t.Errorf("edges[%d].Source = %q, want root_scatter", i, e.Source)
		}
		if e.Target != nodeName(i) {
			t.Errorf("edges[%d].Target = %q, want %q", i, e.Target, nodeName(i))
		}
	}
}

func TestGraph_Stats(t *testing.T) {
	models := scatterModels(3)
	models[0].Config.Enabled = false
	g := New(models)

	s := g.Stats()
	if s.Models != 4 {
		t.Errorf("Models = %d, want 4", s.Models)
	}
	if s.Enabled != 3 {
		t.Errorf("Enabled = %d, want 3", s.Enabled)
	}
	if s.Edges != 3 {
		t.Errorf("Edges = %d, want 3", s.Edges)
	}
	if s.Roots != 1 {
		t.Errorf("Roots = %d, want 1", s.Roots)
	}
	if s.Leaves != 3 {
		t.Errorf("Leaves = %d, want 3", s.Leaves)
	}
	if s.MaxFanOut != 3 || s.MaxFanOutModel != "root_scatter" {
		t.Errorf("MaxFanOut = %d/%q, want 3/root_scatter", s.MaxFanOut, s.MaxFanOutModel)
	}
}

func TestGraph_Stats_ExcludesDanglingRefs(t *testing.T) {
	g := New([]*model.Model{
		node("a", "b", "ghost"),
		node("b"),
	})

	s := g.Stats()
	if s.Edges != 1 {
		t.Errorf("Edges = %d, want 1 (a -> b only)", s.Edges)
	}
	if got := len(g.Edges()); s.Edges != got {
		t.Errorf("Stats().Edges = %d, Edges() = %d; counts must agree", s.Edges, got)
	}
}

func TestValidate_OK(t *testing.T) {
	g := New(scatterModels(5))
	report := g.Validate()
	if !report.OK() {
		t.Errorf("Validate() not OK: %+v", report)
	}
	if err := report.Err(); err != nil {
		t.Errorf("Err() = %v, want nil", err)
	}
}

func TestValidate_DanglingRef(t *testing.T) {
	g := New([]*model.Model{
		node("a", "b", "ghost"),
		node("b", "phantom"),
	})
	report := g.Validate()
	if report.OK() {
		t.Fatal("Validate() OK, want dangling refs")
	}
	if len(report.Dangling) != 2 {
		t.Fatalf("Dangling = %v, want 2 entries", report.Dangling)
	}
	// Sorted by model then target.
	if report.Dangling[0] != (Ref{Model: "a", Target: "ghost"}) {
		t.Errorf("Dangling[0] = %+v", report.Dangling[0])
	}
	if report.Dangling[1] != (Ref{Model: "b", Target: "phantom"}) {
		t.Errorf("Dangling[1] = %+v", report.Dangling[1])
	}
	if err := report.Err(); err == nil {
		t.Error("Err() = nil, want error")
	}
}

func TestValidate_Cycle(t *testing.T) {
	g := New([]*model.Model{
		node("a", "b"),
		node("b", "c"),
		node("c", "a"),
		node("d"),
	})
	report := g.Validate()
	if report.Cycle == nil {
		t.Fatal("Validate() found no cycle")
	}
	path := report.Cycle.Path
	if len(path) != 4 {
		t.Fatalf("cycle path = %v, want 4 entries", path)
	}
	if path[0] != path[len(path)-1] {
		t.Errorf("cycle path %v does not close", path)
	}
	// Deterministic witness: starts from the lexically first member.
	if path[0] != "a" {
		t.Errorf("cycle path starts at %q, want a", path[0])
	}
}

func TestTopoOrder_DependenciesFirst(t *testing.T) {
	g := New(scatterModels(4))
	order, cerr := g.TopoOrder()
	if cerr != nil {
		t.Fatalf("TopoOrder() cycle: %v", cerr)
	}
	if len(order) != 5 {
		t.Fatalf("TopoOrder() returned %d names, want 5", len(order))
	}
	if order[len(order)-1] != "root_scatter" {
		t.Errorf("last = %q, want root_scatter (depends on everything)", order[len(order)-1])
	}

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	for _, e := range g.Edges() {
		if pos[e.Target] > pos[e.Source] {
			t.Errorf("reference %s -> %s ordered after its dependent", e.Source, e.Target)
		}
	}
}

func TestTopoOrder_Deterministic(t *testing.T) {
	models := []*model.Model{
		node("z"),
		node("m"),
		node("a"),
	}
	order, cerr := New(models).TopoOrder()
	if cerr != nil {
		t.Fatalf("TopoOrder() cycle: %v", cerr)
	}
	want := []string{"a", "m", "z"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("TopoOrder() = %v, want %v", order, want)
		}
	}
}

func TestTopoOrder_IgnoresDanglingRefs(t *testing.T) {
	g := New([]*model.Model{
		node("a", "b", "ghost"),
		node("b"),
	})
	order, cerr := g.TopoOrder()
	if cerr != nil {
		t.Fatalf("TopoOrder() cycle: %v", cerr)
	}
	if len(order) != 2 || order[0] != "b" || order[1] != "a" {
		t.Errorf("TopoOrder() = %v, want [b a]", order)
	}
}
