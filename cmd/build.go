package cmd

import (
	"fmt"
	"time"

	"github.com/conneroisu/unidom/internal/build"
	"github.com/conneroisu/unidom/internal/config"
	"github.com/spf13/cobra"
)

var buildCmd = &cobra.Command{
	Use:     "build [root]",
	Aliases: []string{"b"},
	Short:   "Compile the project into the build directory",
	Long: `Compile the application root document and every component, then replace
the build directory with index.html, main.js, the runtime library and a copy
of the remaining source resources.

The root defaults to the working directory. When run from inside src/ the
parent directory is used.

Examples:
  unidom build                    # Build the project in the working directory
  unidom build ./site             # Build another project
  unidom build --output dist      # Build to a specific output directory
  unidom build --strict           # Fail on unbalanced braces
  unidom build --no-minify        # Keep main.js readable
  unidom build --clean            # Only empty the output directory`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBuild,
}

var (
	buildOutput   string
	buildStrict   bool
	buildNoMinify bool
	buildClean    bool
)

func init() {
	rootCmd.AddCommand(buildCmd)

	buildCmd.Flags().StringVarP(&buildOutput, "output", "o", "", "Output directory")
	buildCmd.Flags().BoolVar(&buildStrict, "strict", false, "Treat unbalanced braces as errors")
	buildCmd.Flags().BoolVar(&buildNoMinify, "no-minify", false, "Write main.js without minification")
	buildCmd.Flags().BoolVar(&buildClean, "clean", false, "Empty the output directory and exit")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	cfg, err := loadProject(ctx, args, logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := applyBuildFlags(cfg); err != nil {
		return err
	}

	pipeline := build.NewPipeline(cfg, build.WithLogger(logger))
	out := cmd.OutOrStdout()

	if buildClean {
		if err := pipeline.Clean(ctx); err != nil {
			return fmt.Errorf("failed to clean output directory: %w", err)
		}
		fmt.Fprintf(out, "🧹 Cleaned %s\n", cfg.OutputPath())
		return nil
	}

	fmt.Fprintln(out, "🔨 Building...")
	result, err := pipeline.Build(ctx)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}

	fmt.Fprintf(out, "✅ Build completed in %v\n", result.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "   - %d components, %d closures\n",
		result.Artifacts.Components.Count(), result.Artifacts.Tree.ClosureCount())
	fmt.Fprintf(out, "   - %d files written to %s\n", len(result.Files), cfg.OutputPath())
	if n := len(result.Artifacts.Diagnostics); n > 0 {
		fmt.Fprintf(out, "⚠️  %d warnings\n", n)
		for _, d := range result.Artifacts.Diagnostics {
			fmt.Fprintf(out, "   - %s\n", d.Error())
		}
	}
	return nil
}

// applyBuildFlags overrides configuration with explicitly set flags and
// validates the result again.
func applyBuildFlags(cfg *config.Config) error {
	if buildOutput != "" {
		cfg.Build.OutputDir = buildOutput
	}
	if buildStrict {
		cfg.Compiler.Strict = true
	}
	if buildNoMinify {
		cfg.Build.Minify = false
	}

	if result := config.ValidateConfigWithDetails(cfg); result.HasErrors() {
		return fmt.Errorf("invalid configuration: %w", &result.Errors[0])
	}
	return nil
}
