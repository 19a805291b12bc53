package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/conneroisu/unidom/internal/build"
	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/registry"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var inspectCmd = &cobra.Command{
	Use:     "inspect [root]",
	Aliases: []string{"i"},
	Short:   "Compile without writing and show the execution tree and components",
	Long: `Compile the project in memory and print the execution tree of the root
document together with the component map. Nothing is written.

Examples:
  unidom inspect                      # JSON output
  unidom inspect --format yaml        # YAML output
  unidom inspect --format table       # Tree and component table with dependencies`,
	Args: cobra.MaximumNArgs(1),
	RunE: runInspect,
}

var inspectFormat string

func init() {
	rootCmd.AddCommand(inspectCmd)

	choiceFlag(inspectCmd.Flags(), &inspectFormat, "format", "f", "json", "Output format", "json", "yaml", "table")
}

// inspection is the document printed by inspect.
type inspection struct {
	ExecTree   *compiler.ExecutionTree              `json:"execTree" yaml:"execTree"`
	Components map[string]*registry.ComponentEntry `json:"components" yaml:"components"`
	Warnings   []string                            `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}
	cfg, err := loadProject(ctx, args, logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	artifacts, err := build.NewPipeline(cfg, build.WithLogger(logger)).Compile(ctx)
	if err != nil {
		return fmt.Errorf("compilation failed: %w", err)
	}

	report := inspection{
		ExecTree:   artifacts.Tree,
		Components: artifacts.Components.Snapshot(),
	}
	for _, d := range artifacts.Diagnostics {
		report.Warnings = append(report.Warnings, d.Error())
	}

	out := cmd.OutOrStdout()
	switch inspectFormat {
	case "json":
		enc := json.NewEncoder(out)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(report); err != nil {
			return err
		}
		return enc.Close()
	case "table":
		return writeInspectTable(out, artifacts)
	default:
		return fmt.Errorf("unsupported format: %s (supported: json, yaml, table)", inspectFormat)
	}
}

func writeInspectTable(w io.Writer, artifacts *build.Artifacts) error {
	fmt.Fprintln(w, "Execution tree:")
	writeTree(w, artifacts.Tree, 1)

	components := artifacts.Components.GetAll()
	fmt.Fprintf(w, "\nComponents (%d):\n", len(components))
	if len(components) == 0 {
		return nil
	}

	analyzer := registry.NewDependencyAnalyzer(artifacts.Components)
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tNODES\tCLOSURES\tUSES\tFILE")
	for _, c := range components {
		uses, err := analyzer.Uses(c.Markup, c.Name)
		if err != nil {
			return err
		}
		deps := "-"
		if len(uses) > 0 {
			deps = strings.Join(uses, ",")
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%s\t%s\n",
			c.Name, c.ExecutionTree.Count(), c.ExecutionTree.ClosureCount(), deps, c.FilePath)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if n := len(artifacts.Diagnostics); n > 0 {
		fmt.Fprintf(w, "\nWarnings (%d):\n", n)
		for _, d := range artifacts.Diagnostics {
			fmt.Fprintf(w, "  %s\n", d.Error())
		}
	}
	return nil
}

// writeTree prints one node per line, indented by depth.
func writeTree(w io.Writer, t *compiler.ExecutionTree, depth int) {
	if t == nil {
		return
	}
	line := strings.Repeat("  ", depth) + t.Context.String()
	if t.Closure != "" {
		line += "  { " + t.Closure + " }"
	}
	fmt.Fprintln(w, line)
	for _, c := range t.Children {
		writeTree(w, c, depth+1)
	}
}
