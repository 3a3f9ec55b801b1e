// Package compiler resolves symbolic references into qualified relation
// names for a chosen target, mirroring the external tool's compile stage:
// dangling references, references to disabled models, and cycles are
// configuration errors surfaced here.
package compiler

import (
	"errors"
	"fmt"

	"github.com/groblegark/loom/internal/graph"
	"github.com/groblegark/loom/internal/model"
	"github.com/groblegark/loom/internal/parser"
	"github.com/groblegark/loom/internal/project"
)

// Relation is a fully qualified warehouse relation.
type Relation struct {
	Database string `json:"database"`
	Schema   string `json:"schema"`
	Name     string `json:"name"`
}

// String renders the relation with full qualification.
func (r Relation) String() string {
	return fmt.Sprintf("%q.%q.%q", r.Database, r.Schema, r.Name)
}

// SchemaQualified renders the relation without the database part, for
// warehouses where a session is bound to a single database.
func (r Relation) SchemaQualified() string {
	return fmt.Sprintf("%q.%q", r.Schema, r.Name)
}

// DanglingRefError reports a reference to a model that does not exist
// anywhere in the fixture tree.
type DanglingRefError struct {
	Model string
	Ref   string
}

func (e *DanglingRefError) Error() string {
	return fmt.Sprintf("compiling %s: reference to non-existent model %q", e.Model, e.Ref)
}

// DisabledRefError reports a reference to a model that exists but is disabled.
type DisabledRefError struct {
	Model string
	Ref   string
}

func (e *DisabledRefError) Error() string {
	return fmt.Sprintf("compiling %s: reference to disabled model %q", e.Model, e.Ref)
}

// CompiledModel is one model with its references resolved.
type CompiledModel struct {
	Name         string                `json:"name"`
	Relation     Relation              `json:"relation"`
	Materialized model.Materialization `json:"materialized"`
	Refs         []string              `json:"refs,omitempty"`
	SQL          string                `json:"-"`
}

// Result holds the outcome of compiling a whole project.
type Result struct {
	Target     string           `json:"target"`
	TargetType string           `json:"target_type"`
	Models     []*CompiledModel `json:"models"` // dependency-first order
	Skipped    []string         `json:"skipped,omitempty"`

	byName map[string]*CompiledModel
}

// Model returns the compiled model by name, or nil.
func (r *Result) Model(name string) *CompiledModel {
	return r.byName[name]
}

// relationFor resolves a model's destination relation against a target.
// The model's own database and schema settings win; target values fill
// the gaps.
func relationFor(m *model.Model, tgt project.Target) Relation {
	db := m.Config.Database.Resolve(tgt.Type)
	if db == "" {
		db = tgt.Database
	}
	schema := m.Config.Schema
	if schema == "" {
		schema = tgt.Schema
	}
	return Relation{Database: db, Schema: schema, Name: m.Name}
}

// Compile resolves every enabled model in the graph against the named
// target. Models compile in dependency-first order; ephemeral references
// are inlined as subqueries.
func Compile(g *graph.Graph, targetName string, tgt project.Target) (*Result, error) {
	report := g.Validate()
	if len(report.Dangling) > 0 {
		errs := make([]error, len(report.Dangling))
		for i, d := range report.Dangling {
			errs[i] = &DanglingRefError{Model: d.Model, Ref: d.Target}
		}
		return nil, errors.Join(errs...)
	}
	if report.Cycle != nil {
		return nil, report.Cycle
	}

	order, cerr := g.TopoOrder()
	if cerr != nil {
		return nil, cerr
	}

	res := &Result{
		Target:     targetName,
		TargetType: tgt.Type,
		byName:     make(map[string]*CompiledModel),
	}

	for _, name := range order {
		m := g.Model(name)
		if !m.Config.Enabled {
			res.Skipped = append(res.Skipped, name)
			continue
		}

		sql, err := parser.ReplaceRefs(m.Path, m.RawSQL, func(ref string) (string, error) {
			refModel := g.Model(ref)
			if !refModel.Config.Enabled {
				return "", &DisabledRefError{Model: name, Ref: ref}
			}
			if refModel.Config.Materialized == model.MaterializationEphemeral {
				// Ephemeral models are never materialized; inline the
				// compiled query instead.
				return "(\n" + res.byName[ref].SQL + "\n)", nil
			}
			return relationFor(refModel, tgt).String(), nil
		})
		if err != nil {
			var dis *DisabledRefError
			if errors.As(err, &dis) {
				return nil, dis
			}
			return nil, err
		}

		cm := &CompiledModel{
			Name:         name,
			Relation:     relationFor(m, tgt),
			Materialized: m.Config.Materialized,
			Refs:         m.Refs,
			SQL:          sql,
		}
		res.Models = append(res.Models, cm)
		res.byName[name] = cm
	}

	return res, nil
}
