package main

import (
	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/parser"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List every model in the project",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		models, err := parser.ParseDir(p.AbsModelPaths()...)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(models)
		} else {
			printModelsTable(models)
		}
		return nil
	},
}
