package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/display"
	"github.com/conneroisu/matchscan/internal/events"
	"github.com/conneroisu/matchscan/internal/scanner"
	"github.com/conneroisu/matchscan/internal/types"
)

// JobFlags are the scan flags shared by run, watch and serve.
type JobFlags struct {
	Directory bool
	Pattern   string
	FirstOnly bool
	LogFile   string
	Quiet     bool
	Verbose   bool
}

func addJobFlags(fs *pflag.FlagSet, flags *JobFlags) {
	fs.BoolVarP(&flags.Directory, "directory", "d", false, "Treat the first argument as a single directory root")
	fs.StringVar(&flags.Pattern, "pattern", "", "Regular expression (overrides the document)")
	fs.BoolVar(&flags.FirstOnly, "first-only", true, "Keep only the first match per file (overrides the document when set)")
	fs.StringVar(&flags.LogFile, "log-file", "", "Failure log path (default from output.failure_log)")
	fs.BoolVarP(&flags.Quiet, "quiet", "q", false, "Print only failures and the summary")
	fs.BoolVarP(&flags.Verbose, "verbose", "v", false, "Print every extracted fragment")
}

// buildJob resolves the source argument into a job. A directory source
// (forced with -d, or detected when the argument is a directory) becomes a
// single directory root named after the folder, with its path made
// absolute; anything else is loaded as a scan document.
func buildJob(cmd *cobra.Command, flags *JobFlags, source, outputBase string) (scanner.Job, error) {
	job := scanner.Job{
		OutputBase: outputBase,
		FirstOnly:  flags.FirstOnly,
		Pattern:    flags.Pattern,
	}

	info, statErr := os.Stat(source)
	if flags.Directory || (statErr == nil && info.IsDir()) {
		if statErr != nil {
			return job, fmt.Errorf("'%s' not found", source)
		}
		if !info.IsDir() {
			return job, fmt.Errorf("'%s' is not a directory", source)
		}
		path, err := filepath.Abs(source)
		if err != nil {
			return job, fmt.Errorf("resolving '%s': %w", source, err)
		}
		job.Roots = []types.Root{types.NewRoot(types.DirectoryLogicalName(source), path, true)}
		return job, nil
	}

	if statErr != nil {
		return job, fmt.Errorf("'%s' file not found", source)
	}

	doc, err := config.LoadDocument(source)
	if err != nil {
		return job, err
	}
	job.Roots = doc.RootList()
	if !cmd.Flags().Changed("pattern") {
		job.Pattern = doc.Pattern
	}
	if !cmd.Flags().Changed("first-only") {
		job.FirstOnly = doc.FirstMatchOnly
	}
	return job, nil
}

// runSinks wires the console and the failure log into one sink. The caller
// closes the returned failure log to flush it.
func runSinks(cmd *cobra.Command, cfg *config.Config, flags *JobFlags) (*display.Console, *events.FailureLog, events.Sink, error) {
	console := display.NewConsole(cmd.OutOrStdout(), display.ColorMode(cfg.Output.Color), flags.Quiet, flags.Verbose)

	logPath := flags.LogFile
	if logPath == "" {
		logPath = cfg.Output.FailureLog
	}
	failures, err := events.CreateFailureLog(logPath)
	if err != nil {
		return nil, nil, nil, err
	}

	return console, failures, events.MultiSink{console, failures}, nil
}
