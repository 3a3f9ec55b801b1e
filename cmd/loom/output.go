package main

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/groblegark/loom/internal/compiler"
	"github.com/groblegark/loom/internal/model"
	"github.com/groblegark/loom/internal/ui"
	"github.com/groblegark/loom/internal/warehouse"
)

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error marshaling JSON: %v\n", err)
		return
	}
	fmt.Println(string(data))
}

func printModelsTable(models []*model.Model) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tENABLED\tMATERIALIZED\tSCHEMA\tREFS")
	for _, m := range models {
		schema := m.Config.Schema
		if schema == "" {
			schema = "-"
		}
		fmt.Fprintf(w, "%s\t%t\t%s\t%s\t%d\n",
			m.Name,
			m.Config.Enabled,
			m.Config.Materialized,
			schema,
			len(m.Refs),
		)
	}
	w.Flush()
	fmt.Printf("\n%d models\n", len(models))
}

func printCompiledTable(res *compiler.Result) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tRELATION\tMATERIALIZED\tREFS")
	for _, cm := range res.Models {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n",
			cm.Name,
			cm.Relation,
			cm.Materialized,
			len(cm.Refs),
		)
	}
	w.Flush()
	fmt.Printf("\n%d models compiled for target %s (%d skipped)\n",
		len(res.Models), res.Target, len(res.Skipped))
}

func printRunTable(run *model.Run) {
	fmt.Printf("Invocation:  %s\n", ui.RenderAccent(run.InvocationID))
	fmt.Printf("Project:     %s\n", run.Project)
	fmt.Printf("Target:      %s\n", run.Target)
	fmt.Printf("Status:      %s\n", run.Status)
	fmt.Printf("Started At:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration:    %s\n", run.CompletedAt.Sub(run.StartedAt))
	fmt.Printf("Models:      %d total, %d errored, %d skipped\n",
		run.ModelsTotal, run.ModelsErrored, run.ModelsSkipped)

	if len(run.Results) == 0 {
		return
	}
	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tMATERIALIZED\tSTATUS\tDURATION\tERROR")
	for _, res := range run.Results {
		errMsg := res.Error
		if errMsg == "" {
			errMsg = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%dms\t%s\n",
			res.ModelName,
			res.Materialized,
			res.Status,
			res.DurationMS,
			errMsg,
		)
	}
	w.Flush()
}

func printRunsTable(runs []*model.Run) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INVOCATION\tPROJECT\tTARGET\tSTATUS\tSTARTED\tMODELS\tERRORED")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%d\n",
			r.InvocationID,
			r.Project,
			r.Target,
			r.Status,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.ModelsTotal,
			r.ModelsErrored,
		)
	}
	w.Flush()
	fmt.Printf("\n%d runs\n", len(runs))
}

func printChecksTable(checks []warehouse.CountCheck) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tROWS\tEXPECTED\tOK")
	for _, c := range checks {
		fmt.Fprintf(w, "%s\t%d\t%d\t%t\n", c.Model, c.Rows, c.Expected, c.OK)
	}
	w.Flush()
}
