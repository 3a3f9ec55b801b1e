package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/events"
)

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Resolve references and write compiled queries to the target path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := loadProject()
		if err != nil {
			return err
		}
		res, err := compileProject(p)
		if err != nil {
			return err
		}

		outDir := filepath.Join(p.AbsTargetPath(), "compiled")
		if err := os.MkdirAll(outDir, 0o755); err != nil {
			return fmt.Errorf("create compile output directory: %w", err)
		}
		for _, cm := range res.Models {
			path := filepath.Join(outDir, cm.Name+".sql")
			if err := os.WriteFile(path, []byte(cm.SQL+"\n"), 0o644); err != nil {
				return fmt.Errorf("write compiled model %s: %w", cm.Name, err)
			}
		}

		mgr.Fire(events.CompileFinished{
			Compiled: len(res.Models),
			Skipped:  len(res.Skipped),
		})
		if jsonOutput {
			printJSON(res)
		} else {
			printCompiledTable(res)
		}
		return nil
	},
}
