package main

import (
	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/events"
	"github.com/groblegark/loom/internal/generator"
	"github.com/groblegark/loom/internal/model"
)

var generateCmd = &cobra.Command{
	Use:   "generate <dir>",
	Short: "Write a synthetic fixture tree of referencing models",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]

		topology, _ := cmd.Flags().GetString("topology")
		paths, _ := cmd.Flags().GetInt("paths")
		nodes, _ := cmd.Flags().GetInt("nodes")
		schema, _ := cmd.Flags().GetString("schema")
		materialized, _ := cmd.Flags().GetString("materialized")
		dbIfType, _ := cmd.Flags().GetString("database-if-type")
		dbIfName, _ := cmd.Flags().GetString("database-if-name")
		dbElse, _ := cmd.Flags().GetString("database-else")
		force, _ := cmd.Flags().GetBool("force")

		spec := generator.Spec{
			Topology:       generator.Topology(topology),
			Paths:          paths,
			NodesPerPath:   nodes,
			Schema:         schema,
			Materialized:   model.Materialization(materialized),
			Seed:           generator.DefaultSeed,
			DatabaseIfType: dbIfType,
			DatabaseIfName: dbIfName,
			DatabaseElse:   dbElse,
			Force:          force,
		}

		written, err := generator.Generate(dir, spec)
		if err != nil {
			return err
		}

		mgr.Fire(events.FixtureGenerated{
			Topology: topology,
			Models:   len(written),
			Dir:      dir,
		})
		if jsonOutput {
			printJSON(written)
		}
		return nil
	},
}

func init() {
	generateCmd.Flags().String("topology", "scatter", "graph shape (scatter or chain)")
	generateCmd.Flags().Int("paths", 1, "number of node paths")
	generateCmd.Flags().Int("nodes", 10, "nodes per path")
	generateCmd.Flags().String("schema", "", "schema written into every config block")
	generateCmd.Flags().String("materialized", "view", "materialization written into every config block")
	generateCmd.Flags().String("database-if-type", "", "target type that selects database-if-name")
	generateCmd.Flags().String("database-if-name", "", "database used when the target type matches")
	generateCmd.Flags().String("database-else", "", "database used when the target type does not match")
	generateCmd.Flags().Bool("force", false, "write into a non-empty directory")
}
