package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <model>",
	Short: "Show a model's references as an ASCII tree",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		depth, _ := cmd.Flags().GetInt("depth")

		p, err := loadProject()
		if err != nil {
			return err
		}
		g, err := loadGraph(p)
		if err != nil {
			return err
		}

		root := g.Model(name)
		if root == nil {
			return fmt.Errorf("model %q not found", name)
		}

		if jsonOutput {
			printJSON(g.Edges())
			return nil
		}

		fmt.Printf("%s [%s]\n", root.Name, root.Config.Materialized)
		printRefTree(g, root.Refs, "", depth-1)
		return nil
	},
}

func printRefTree(g *graph.Graph, refs []string, prefix string, remainingDepth int) {
	for i, ref := range refs {
		isLast := i == len(refs)-1

		// Choose connector
		connector := "├── "
		childPrefix := prefix + "│   "
		if isLast {
			connector = "└── "
			childPrefix = prefix + "    "
		}

		m := g.Model(ref)
		if m == nil {
			fmt.Printf("%s%s%s (dangling)\n", prefix, connector, ref)
			continue
		}

		fmt.Printf("%s%s%s [%s]\n", prefix, connector, m.Name, m.Config.Materialized)

		// Recurse if we have remaining depth
		if remainingDepth > 0 && len(m.Refs) > 0 {
			printRefTree(g, m.Refs, childPrefix, remainingDepth-1)
		}
	}
}

func init() {
	graphCmd.Flags().Int("depth", 3, "maximum depth to traverse")
}
