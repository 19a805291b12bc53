package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/conneroisu/unidom/internal/build"
	"github.com/conneroisu/unidom/internal/config"
	"github.com/conneroisu/unidom/internal/logging"
	"github.com/conneroisu/unidom/internal/watcher"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:     "watch [root]",
	Aliases: []string{"w"},
	Short:   "Build, then rebuild on every source change",
	Long: `Run a full build, then watch the source directory and rebuild once per
burst of changes. A failed rebuild is reported and watching continues.

Examples:
  unidom watch                    # Watch the project in the working directory
  unidom watch --verbose          # List the changed files for each rebuild`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchVerbose bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVarP(&watchVerbose, "verbose", "v", false, "Verbose output")
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := loadProject(ctx, args, logger)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	pipeline := build.NewPipeline(cfg, build.WithLogger(logger))
	fileWatcher, err := newProjectWatcher(cfg, logger)
	if err != nil {
		return err
	}
	defer fileWatcher.Stop()

	out := cmd.OutOrStdout()
	fileWatcher.AddHandler(func(ctx context.Context, events []watcher.ChangeEvent) error {
		if watchVerbose {
			fmt.Fprintln(out, "📁 File changes detected:")
			for _, event := range events {
				fmt.Fprintf(out, "   %s: %s\n", event.Type, event.Path)
			}
		} else {
			fmt.Fprintf(out, "📁 %d file(s) changed\n", len(events))
		}
		rebuild(ctx, pipeline, logger)
		return nil
	})

	rebuild(ctx, pipeline, logger)

	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	fmt.Fprintf(out, "👀 Watching %s for changes... (Press Ctrl+C to stop)\n", cfg.SourcePath())

	<-ctx.Done()
	fmt.Fprintln(out, "\n🛑 Stopping file watcher...")
	return nil
}

// newProjectWatcher watches the source tree, leaving out the build
// directory, version control metadata and editor temporaries.
func newProjectWatcher(cfg *config.Config, logger logging.Logger) (*watcher.FileWatcher, error) {
	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	fileWatcher.AddFilter(watcher.NoGitFilter)
	fileWatcher.AddFilter(watcher.NoSwapFilter)
	fileWatcher.AddFilter(watcher.ExcludeDirFilter(cfg.OutputPath()))

	if err := fileWatcher.AddRecursive(cfg.SourcePath()); err != nil {
		_ = fileWatcher.Stop()
		return nil, fmt.Errorf("failed to watch %s: %w", cfg.SourcePath(), err)
	}
	return fileWatcher, nil
}

// rebuild runs one build and logs the outcome; errors never stop watching.
func rebuild(ctx context.Context, pipeline *build.Pipeline, logger logging.Logger) {
	_, err := pipeline.Build(ctx)
	if err != nil {
		logger.Error(ctx, err, "Rebuild failed")
	}

	metrics := pipeline.Metrics()
	snapshot := metrics.GetSnapshot()
	logger.Debug(ctx, "Watch session",
		"builds", snapshot.TotalBuilds,
		"failed", snapshot.FailedBuilds,
		"success_rate", fmt.Sprintf("%.1f%%", metrics.GetSuccessRate()),
		"average_duration", snapshot.AverageDuration.String(),
	)
	if err != nil {
		return
	}
	stats := pipeline.CacheStats()
	logger.Debug(ctx, "Component cache", "entries", stats.Entries, "hits", stats.Hits, "misses", stats.Misses)
}
