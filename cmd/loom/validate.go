package main

import (
	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/events"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check that every reference resolves and the graph is acyclic",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		g, err := loadGraph(p)
		if err != nil {
			return err
		}

		report := g.Validate()
		for _, d := range report.Dangling {
			mgr.Fire(events.DanglingRefFound{Model: d.Model, Ref: d.Target})
		}
		if report.Cycle != nil {
			mgr.Fire(events.CycleFound{Path: report.Cycle.Path})
		}
		mgr.Fire(events.ValidationFinished{
			Models:   g.Len(),
			Dangling: len(report.Dangling),
			Cyclic:   report.Cycle != nil,
		})

		if jsonOutput {
			printJSON(report)
		}
		return report.Err()
	},
}
