package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate counts over the reference graph",
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

		stats := g.Stats()
		if jsonOutput {
			printJSON(stats)
			return nil
		}

		fmt.Printf("Models:       %d\n", stats.Models)
		fmt.Printf("Enabled:      %d\n", stats.Enabled)
		fmt.Printf("Edges:        %d\n", stats.Edges)
		fmt.Printf("Roots:        %d\n", stats.Roots)
		fmt.Printf("Leaves:       %d\n", stats.Leaves)
		if stats.MaxFanOutModel != "" {
			fmt.Printf("Max fan-out:  %d (%s)\n", stats.MaxFanOut, stats.MaxFanOutModel)
		}
		return nil
	},
}
