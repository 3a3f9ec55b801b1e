// Package warehouse materializes compiled models against a database and
// verifies the fixture's row-count property: every model yields its own
// seed row unioned with the full contents of every referenced model.
package warehouse

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/groblegark/loom/internal/compiler"
	"github.com/groblegark/loom/internal/events"
	"github.com/groblegark/loom/internal/model"
)

// Executor runs DDL and count queries against a warehouse database.
type Executor interface {
	EnsureSchema(ctx context.Context, schema string) error
	CreateView(ctx context.Context, rel compiler.Relation, query string) error
	CreateTable(ctx context.Context, rel compiler.Relation, query string) error
	RowCount(ctx context.Context, rel compiler.Relation) (int64, error)
	Close() error
}

// Runner materializes a compiled project model by model.
type Runner struct {
	exec Executor
	mgr  *events.Manager
	now  func() time.Time
}

// NewRunner creates a runner that fires per-model events on mgr.
func NewRunner(exec Executor, mgr *events.Manager) *Runner {
	return &Runner{exec: exec, mgr: mgr, now: time.Now}
}

// Run materializes every compiled model in dependency-first order. A model
// whose upstream errored or was skipped is skipped rather than attempted.
// Ephemeral models are inlined at compile time and produce no result row.
// The returned run is complete even when individual models errored; Run
// itself only fails when a schema cannot be created.
func (r *Runner) Run(ctx context.Context, projectName string, res *compiler.Result) (*model.Run, error) {
	run := &model.Run{
		InvocationID: r.mgr.InvocationID(),
		Project:      projectName,
		Target:       res.Target,
		StartedAt:    r.now(),
	}

	for _, schema := range schemas(res) {
		if err := r.exec.EnsureSchema(ctx, schema); err != nil {
			return nil, fmt.Errorf("ensure schema %s: %w", schema, err)
		}
	}

	// Names whose materialization errored or was skipped; their dependents
	// are skipped in turn.
	halted := make(map[string]bool)

	for _, cm := range res.Models {
		if cm.Materialized == model.MaterializationEphemeral {
			// Ephemeral models produce no result, but skips must still
			// propagate through them to their dependents.
			if haltedRef(cm, halted) != "" {
				halted[cm.Name] = true
			}
			continue
		}

		result := &model.RunResult{
			ModelName:    cm.Name,
			Materialized: cm.Materialized,
		}

		if upstream := haltedRef(cm, halted); upstream != "" {
			result.Status = model.RunStatusSkipped
			result.Error = fmt.Sprintf("upstream model %s did not run", upstream)
			halted[cm.Name] = true
		} else {
			start := r.now()
			err := r.materialize(ctx, cm)
			result.DurationMS = r.now().Sub(start).Milliseconds()
			if err != nil {
				result.Status = model.RunStatusError
				result.Error = err.Error()
				halted[cm.Name] = true
			} else {
				result.Status = model.RunStatusSuccess
			}
		}

		run.Results = append(run.Results, result)
		r.mgr.Fire(events.MaterializedModel{
			Model:      cm.Name,
			Status:     result.Status.String(),
			DurationMS: result.DurationMS,
			Err:        result.Error,
		})
	}

	run.CompletedAt = r.now()
	run.Summarize()
	return run, nil
}

func (r *Runner) materialize(ctx context.Context, cm *compiler.CompiledModel) error {
	switch cm.Materialized {
	case model.MaterializationView:
		return r.exec.CreateView(ctx, cm.Relation, cm.SQL)
	case model.MaterializationTable:
		return r.exec.CreateTable(ctx, cm.Relation, cm.SQL)
	}
	return fmt.Errorf("cannot materialize %s as %s", cm.Name, cm.Materialized)
}

// haltedRef returns the first reference of cm that did not run, or "".
func haltedRef(cm *compiler.CompiledModel, halted map[string]bool) string {
	for _, ref := range cm.Refs {
		if halted[ref] {
			return ref
		}
	}
	return ""
}

// schemas returns the distinct schemas of all materialized models, sorted.
func schemas(res *compiler.Result) []string {
	seen := make(map[string]bool)
	var out []string
	for _, cm := range res.Models {
		if cm.Materialized == model.MaterializationEphemeral {
			continue
		}
		if s := cm.Relation.Schema; s != "" && !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	sort.Strings(out)
	return out
}

// CountCheck is the observed and expected row count for one model.
type CountCheck struct {
	Model    string `json:"model"`
	Rows     int64  `json:"rows"`
	Expected int64  `json:"expected"`
	OK       bool   `json:"ok"`
}

// CheckCounts queries the row count of every materialized model and compares
// it against the fixture property rows = 1 + sum(rows of each reference).
// Ephemeral references contribute their own computed expectation since they
// have no relation to count. A root fanning out to N single-row models must
// therefore hold exactly N+1 rows.
func CheckCounts(ctx context.Context, exec Executor, res *compiler.Result) ([]CountCheck, error) {
	counts := make(map[string]int64)
	var checks []CountCheck

	for _, cm := range res.Models {
		expected := int64(1)
		for _, ref := range cm.Refs {
			expected += counts[ref]
		}

		if cm.Materialized == model.MaterializationEphemeral {
			counts[cm.Name] = expected
			continue
		}

		rows, err := exec.RowCount(ctx, cm.Relation)
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", cm.Name, err)
		}
		counts[cm.Name] = rows
		checks = append(checks, CountCheck{
			Model:    cm.Name,
			Rows:     rows,
			Expected: expected,
			OK:       rows == expected,
		})
	}

	return checks, nil
}
