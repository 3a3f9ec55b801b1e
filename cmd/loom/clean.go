package main

import (
	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/clean"
)

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove the project's clean targets",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		return clean.Run(p, mgr)
	},
}
