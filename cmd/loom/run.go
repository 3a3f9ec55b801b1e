package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/artifacts"
	"github.com/groblegark/loom/internal/events"
	"github.com/groblegark/loom/internal/model"
	"github.com/groblegark/loom/internal/store/postgres"
	"github.com/groblegark/loom/internal/warehouse"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Compile and materialize every model against the warehouse",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		checkCounts, _ := cmd.Flags().GetBool("check-counts")

		if cfg.WarehouseURL == "" {
			return fmt.Errorf("LOOM_WAREHOUSE_URL is not set")
		}

		p, err := loadProject()
		if err != nil {
			return err
		}
		res, err := compileProject(p)
		if err != nil {
			return err
		}

		exec, err := warehouse.Open(cfg.WarehouseURL)
		if err != nil {
			return err
		}
		defer exec.Close()

		ctx := context.Background()
		mgr.Fire(events.RunStarted{Project: p.Name, Target: res.Target})

		run, err := warehouse.NewRunner(exec, mgr).Run(ctx, p.Name, res)
		if err != nil {
			return err
		}

		mgr.Fire(events.RunFinished{
			Status:  run.Status.String(),
			Models:  run.ModelsTotal,
			Errored: run.ModelsErrored,
			Skipped: run.ModelsSkipped,
		})

		if cfg.RegistryURL != "" {
			registry, err := postgres.New(cfg.RegistryURL)
			if err != nil {
				return fmt.Errorf("open run registry: %w", err)
			}
			defer registry.Close()
			if err := registry.RecordRun(ctx, run); err != nil {
				return fmt.Errorf("record run: %w", err)
			}
		}

		dst := &artifacts.DirDestination{Dir: p.AbsTargetPath()}
		if _, err := artifacts.WriteAll(ctx, dst, run); err != nil {
			return err
		}

		var checks []warehouse.CountCheck
		if checkCounts && run.Status == model.RunStatusSuccess {
			checks, err = warehouse.CheckCounts(ctx, exec, res)
			if err != nil {
				return err
			}
		}

		if jsonOutput {
			printJSON(run)
			if checks != nil {
				printJSON(checks)
			}
		} else {
			printRunTable(run)
			if checks != nil {
				fmt.Println()
				printChecksTable(checks)
			}
		}

		if run.Status != model.RunStatusSuccess {
			// Return instead of exiting so the deferred Close calls run.
			return fmt.Errorf("run %s finished with status %s: %d of %d models errored",
				run.InvocationID, run.Status, run.ModelsErrored, run.ModelsTotal)
		}
		for _, c := range checks {
			if !c.OK {
				return fmt.Errorf("row count check failed for %s: got %d, want %d", c.Model, c.Rows, c.Expected)
			}
		}
		return nil
	},
}

func init() {
	runCmd.Flags().Bool("check-counts", false, "verify each model holds 1 + sum of its references' rows")
}
