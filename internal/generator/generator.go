// Package generator writes synthetic model fixture trees used to stress-test
// compile-time graph resolution. Output is byte-deterministic for a given
// Spec so golden copies catch accidental mutation.
package generator

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/groblegark/loom/internal/model"
)

// Topology is the shape of the generated reference graph.
type Topology string

const (
	// TopologyScatter adds one root model fanning out references to every
	// generated node.
	TopologyScatter Topology = "scatter"
	// TopologyChain links each node to its predecessor within a path.
	TopologyChain Topology = "chain"
)

// String returns the string representation of the topology.
func (t Topology) String() string {
	return string(t)
}

// IsValid checks whether the topology is a known value.
func (t Topology) IsValid() bool {
	switch t {
	case TopologyScatter, TopologyChain:
		return true
	}
	return false
}

// RootName is the name of the fan-out model written for scatter fixtures.
const RootName = "root_scatter"

// SeedRow is the fixed literal row every generated model selects.
type SeedRow struct {
	ID    int
	Label string
	Flag  bool
	Date  string
}

// DefaultSeed matches the canonical fixture row.
var DefaultSeed = SeedRow{ID: 1, Label: "blue", Flag: true, Date: "2022-01-01"}

// SelectSQL renders the seed row as a literal select.
func (r SeedRow) SelectSQL() string {
	return fmt.Sprintf("select %d as id, '%s' as label, %t as flag, '%s' as created_date",
		r.ID, r.Label, r.Flag, r.Date)
}

// Spec describes a fixture to generate.
type Spec struct {
	Topology     Topology
	Paths        int
	NodesPerPath int

	Schema       string
	Materialized model.Materialization
	Seed         SeedRow

	// Optional conditional database clause written into every config block:
	// database=if_target(DatabaseIfType, DatabaseIfName, DatabaseElse).
	DatabaseIfType string
	DatabaseIfName string
	DatabaseElse   string

	// Force allows writing into a directory that already contains files.
	Force bool
}

// Validate checks the spec for constraint violations.
func (s Spec) Validate() error {
	if !s.Topology.IsValid() {
		return fmt.Errorf("invalid topology %q", s.Topology)
	}
	if s.Paths < 1 {
		return fmt.Errorf("paths must be at least 1, got %d", s.Paths)
	}
	if s.NodesPerPath < 1 {
		return fmt.Errorf("nodes per path must be at least 1, got %d", s.NodesPerPath)
	}
	if !s.Materialized.IsValid() {
		return fmt.Errorf("invalid materialization %q", s.Materialized)
	}
	if s.Schema != "" && !model.ValidIdentifier(s.Schema) {
		return fmt.Errorf("invalid schema %q", s.Schema)
	}
	cond := []string{s.DatabaseIfType, s.DatabaseIfName, s.DatabaseElse}
	set := 0
	for _, v := range cond {
		if v != "" {
			set++
		}
	}
	if set != 0 && set != 3 {
		return fmt.Errorf("conditional database requires type, if-name, and else-name together")
	}
	return nil
}

// NodeName returns the canonical name for the node at the given path and index.
func NodeName(path, index int) string {
	return fmt.Sprintf("node_%d_%d", path, index)
}

// plannedModel is one file the generator will write.
type plannedModel struct {
	name string
	refs []string
}

// plan lays out every model for the spec in a stable order.
func plan(s Spec) []plannedModel {
	var models []plannedModel
	for p := 0; p < s.Paths; p++ {
		for i := 0; i < s.NodesPerPath; i++ {
			m := plannedModel{name: NodeName(p, i)}
			if s.Topology == TopologyChain && i > 0 {
				m.refs = []string{NodeName(p, i-1)}
			}
			models = append(models, m)
		}
	}
	if s.Topology == TopologyScatter {
		root := plannedModel{name: RootName}
		for p := 0; p < s.Paths; p++ {
			for i := 0; i < s.NodesPerPath; i++ {
				root.refs = append(root.refs, NodeName(p, i))
			}
		}
		models = append(models, root)
	}
	return models
}

// renderConfig renders the config block for the spec.
func renderConfig(s Spec) string {
	var b strings.Builder
	b.WriteString("{{ config(enabled=true")
	b.WriteString(fmt.Sprintf(", materialized=%q", s.Materialized))
	if s.Schema != "" {
		b.WriteString(fmt.Sprintf(", schema=%q", s.Schema))
	}
	if s.DatabaseIfType != "" {
		b.WriteString(fmt.Sprintf(", database=if_target(%q, %q, %q)",
			s.DatabaseIfType, s.DatabaseIfName, s.DatabaseElse))
	}
	b.WriteString(") }}")
	return b.String()
}

// Render produces the file contents for one planned model.
func Render(s Spec, name string, refs []string) string {
	var b strings.Builder
	b.WriteString(renderConfig(s))
	b.WriteString("\n\n")
	b.WriteString(s.Seed.SelectSQL())
	b.WriteString("\n")
	for _, ref := range refs {
		b.WriteString("union all\n")
		b.WriteString(fmt.Sprintf("select * from {{ ref('%s') }}\n", ref))
	}
	return b.String()
}

// Generate writes the fixture described by spec into dir and returns the
// written file paths in lexical order. It refuses to write into a non-empty
// directory unless spec.Force is set.
func Generate(dir string, spec Spec) ([]string, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	if entries, err := os.ReadDir(dir); err == nil && len(entries) > 0 && !spec.Force {
		return nil, fmt.Errorf("directory %s is not empty (use force to overwrite)", dir)
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read output directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	var paths []string
	for _, m := range plan(spec) {
		path := filepath.Join(dir, m.name+".sql")
		if err := os.WriteFile(path, []byte(Render(spec, m.name, m.refs)), 0o644); err != nil {
			return nil, fmt.Errorf("write model %s: %w", m.name, err)
		}
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths, nil
}
