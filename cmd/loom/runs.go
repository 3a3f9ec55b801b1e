package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/store"
	"github.com/groblegark/loom/internal/store/postgres"
)

// openRegistry connects to the run registry configured by LOOM_REGISTRY_URL.
func openRegistry() (store.Store, error) {
	if cfg.RegistryURL == "" {
		return nil, fmt.Errorf("LOOM_REGISTRY_URL is not set")
	}
	return postgres.New(cfg.RegistryURL)
}

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "Inspect recorded runs",
}

var runsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		registry, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		runs, err := registry.ListRuns(context.Background(), limit)
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(runs)
		} else {
			printRunsTable(runs)
		}
		return nil
	},
}

var runsShowCmd = &cobra.Command{
	Use:   "show <invocation-id>",
	Short: "Show one run with its per-model results",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		registry, err := openRegistry()
		if err != nil {
			return err
		}
		defer registry.Close()

		run, err := registry.GetRun(context.Background(), args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			printJSON(run)
		} else {
			printRunTable(run)
		}
		return nil
	},
}

func init() {
	runsListCmd.Flags().Int("limit", 20, "maximum number of runs to list")

	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)
}
