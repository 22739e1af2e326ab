package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/scanner"
)

var runCmd = &cobra.Command{
	Use:     "run <document|directory> <output-base>",
	Aliases: []string{"r"},
	Short:   "Scan the configured roots and write the match listings",
	Long: `Scan every root of a scan document, or a single directory with -d, and
write <output-base>.txt (one matching file per line) and
<output-base>-matches.txt (one "<file>,<fragment>" line per fragment).

Per-file failures are printed and written to the failure log; they never
fail the command. Only configuration errors (missing output path, invalid or
empty pattern, unreadable document) exit non-zero.

Examples:
  matchscan run scan.yml out/result
  matchscan run legacy.rgex out/result --first-only=false
  matchscan run -d ./src out/result --pattern 'FOR EACH .* INT\(.*\)'`,
	Args: cobra.ExactArgs(2),
	RunE: runRun,
}

var runFlags JobFlags

func init() {
	rootCmd.AddCommand(runCmd)
	addJobFlags(runCmd.Flags(), &runFlags)
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, closeLogger, err := newLogger(cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer closeLogger()

	job, err := buildJob(cmd, &runFlags, args[0], args[1])
	if err != nil {
		return err
	}

	console, failures, sink, err := runSinks(cmd, cfg, &runFlags)
	if err != nil {
		return err
	}
	defer failures.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	console.Println("Generating output files . . .")

	runner := scanner.NewRunner(scanner.WithLogger(logger))
	report, err := runner.Run(ctx, job, sink)
	if err != nil {
		return err
	}

	if report.State == scanner.StateCancelled {
		console.Println("Cancelled . . .")
		return nil
	}

	primary, absErr := filepath.Abs(report.Paths.Primary)
	if absErr != nil {
		primary = report.Paths.Primary
	}
	console.Println("Done . . .")
	console.Println("Output file: " + primary)
	return nil
}

// commandContext returns the command's context, or Background outside
// of Execute.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
