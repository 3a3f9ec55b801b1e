package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/groblegark/loom/internal/compiler"
	"github.com/groblegark/loom/internal/config"
	"github.com/groblegark/loom/internal/events"
	"github.com/groblegark/loom/internal/graph"
	"github.com/groblegark/loom/internal/idgen"
	"github.com/groblegark/loom/internal/parser"
	"github.com/groblegark/loom/internal/project"
	"github.com/groblegark/loom/internal/ui"
)

var (
	projectDir string
	targetName string
	jsonOutput bool
	logLevel   string
	noColor    bool

	cfg       *config.Config
	mgr       *events.Manager
	publisher events.Publisher
)

var rootCmd = &cobra.Command{
	Use:          "loom",
	Short:        "Generate, validate, and compile model dependency fixtures",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg = config.Load()

		id, err := idgen.Generate()
		if err != nil {
			return fmt.Errorf("generate invocation id: %w", err)
		}
		mgr = events.NewManager(id)

		level := events.Level(logLevel)
		if !level.IsValid() {
			return fmt.Errorf("invalid log level %q", logLevel)
		}
		if noColor {
			ui.ForceNoColor()
		}
		format := events.LineText
		useColor := ui.ShouldUseColor() && !noColor
		if jsonOutput {
			format = events.LineJSON
			useColor = false
		}
		mgr.AddLogger(events.LoggerConfig{
			Out:      os.Stderr,
			Format:   format,
			MinLevel: level,
			UseColor: useColor,
		})

		if cfg.NATSURL != "" {
			p, err := events.NewNATSPublisher(cfg.NATSURL)
			if err != nil {
				return fmt.Errorf("connect event publisher: %w", err)
			}
			publisher = p
			mgr.AddCallback(events.PublisherCallback(publisher, mgr.InvocationID()))
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if publisher != nil {
			publisher.Close()
		}
	},
}

// loadProject loads the loom.toml in the --project-dir.
func loadProject() (*project.Project, error) {
	return project.Load(projectDir)
}

// loadGraph parses every model path of the project and builds the
// reference graph.
func loadGraph(p *project.Project) (*graph.Graph, error) {
	models, err := parser.ParseDir(p.AbsModelPaths()...)
	if err != nil {
		return nil, err
	}
	mgr.Fire(events.ModelsParsed{Count: len(models)})
	return graph.New(models), nil
}

// compileProject parses, builds the graph, and compiles it against the
// --target (or the project default).
func compileProject(p *project.Project) (*compiler.Result, error) {
	g, err := loadGraph(p)
	if err != nil {
		return nil, err
	}
	name, tgt, err := p.ResolveTarget(targetName)
	if err != nil {
		return nil, err
	}
	for _, m := range g.Names() {
		mgr.Fire(events.CompilingModel{Model: m})
	}
	return compiler.Compile(g, name, tgt)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&projectDir, "project-dir", ".", "directory containing loom.toml")
	rootCmd.PersistentFlags().StringVar(&targetName, "target", "", "warehouse target to compile against")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "minimum event level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(compileCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(cleanCmd)
	rootCmd.AddCommand(uploadCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
