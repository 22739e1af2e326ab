package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/display"
	"github.com/conneroisu/matchscan/internal/events"
	"github.com/conneroisu/matchscan/internal/logging"
	"github.com/conneroisu/matchscan/internal/scanner"
	"github.com/conneroisu/matchscan/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch <document|directory> <output-base>",
	Aliases: []string{"w"},
	Short:   "Re-run the scan whenever files under the roots change",
	Long: `Run the scan once, then watch every root and the scan document. A burst
of changes triggers one complete re-run after the debounce period; a run
still in progress is cancelled first and writes nothing. The failure log
is truncated at the start of every run, so it lists the latest run only.

Examples:
  matchscan watch scan.yml out/result
  matchscan watch -d ./src out/result --pattern 'FIND .*' --debounce 1s`,
	Args: cobra.ExactArgs(2),
	RunE: runWatch,
}

var watchFlags JobFlags

func init() {
	rootCmd.AddCommand(watchCmd)
	addJobFlags(watchCmd.Flags(), &watchFlags)

	watchCmd.Flags().Duration("debounce", config.DefaultDebounce, "Quiet period before a re-run")
	viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLogger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLogger()

	source, outputBase := args[0], args[1]
	job, err := buildJob(cmd, &watchFlags, source, outputBase)
	if err != nil {
		return err
	}

	console, failures, sink, err := runSinks(cmd, cfg, &watchFlags)
	if err != nil {
		return err
	}
	defer failures.Close()

	fileWatcher, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer fileWatcher.Stop()

	if err := fileWatcher.AddRoots(job.Roots); err != nil {
		return err
	}

	documentPath := ""
	if info, err := os.Stat(source); err == nil && !info.IsDir() && !watchFlags.Directory {
		if abs, err := filepath.Abs(source); err == nil {
			documentPath = abs
		}
		if err := fileWatcher.AddPath(source); err != nil {
			logger.Warn(commandContext(cmd), err, "Scan document not watched", "path", source)
		}
	}
	fileWatcher.AddFilter(watchFilter(job, documentPath))

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := scanner.NewRunner(scanner.WithLogger(logger))
	rescanner := watcher.NewRescanner(func(runCtx context.Context) {
		watchRun(runCtx, cmd, source, outputBase, runner, console, failures, sink, logger)
	})
	defer rescanner.Stop()

	fileWatcher.AddHandler(rescanner.Handler(ctx))

	rescanner.Trigger(ctx)
	if err := fileWatcher.Start(ctx); err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}

	console.Println("Watching for changes . . . (Press Ctrl+C to stop)")
	<-ctx.Done()
	console.Println("Stopping . . .")
	return nil
}

// watchRun performs one complete run. The job is rebuilt every time so
// edits to the scan document take effect, and the failure log is truncated
// so it holds the failures of the latest run only.
func watchRun(ctx context.Context, cmd *cobra.Command, source, outputBase string, runner *scanner.Runner, console *display.Console, failures *events.FailureLog, sink events.Sink, logger logging.Logger) {
	job, err := buildJob(cmd, &watchFlags, source, outputBase)
	if err != nil {
		console.Println(err.Error())
		return
	}

	if err := failures.Reset(); err != nil {
		logger.Warn(ctx, err, "Failure log not reset")
	}

	console.Println("Generating output files . . .")
	report, err := runner.Run(ctx, job, sink)
	if flushErr := failures.Flush(); flushErr != nil {
		logger.Warn(ctx, flushErr, "Failure log not flushed")
	}
	if err != nil {
		console.Println(err.Error())
		logger.Error(ctx, err, "Watch run failed")
		return
	}
	if report.State == scanner.StateCancelled {
		return
	}

	primary, absErr := filepath.Abs(report.Paths.Primary)
	if absErr != nil {
		primary = report.Paths.Primary
	}
	console.Println("Output file: " + primary)
}

// watchFilter keeps changes to file roots, to allow-listed files under
// directory roots and to the scan document itself. The output artifacts
// are ignored unless a root names them explicitly.
func watchFilter(job scanner.Job, documentPath string) watcher.FileFilter {
	inRoots := watcher.RootFilter(job.Roots)
	allowed := watcher.ExtensionFilter(job.Extensions)

	exact := make(map[string]bool)
	if documentPath != "" {
		exact[documentPath] = true
	}
	for _, root := range job.Roots {
		if root.IsDirectory() {
			continue
		}
		if abs, err := filepath.Abs(root.Path()); err == nil {
			exact[abs] = true
		}
	}

	return func(path string) bool {
		if abs, err := filepath.Abs(path); err == nil && exact[abs] {
			return true
		}
		return inRoots(path) && allowed(path)
	}
}
