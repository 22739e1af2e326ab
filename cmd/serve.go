package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/scanner"
	"github.com/conneroisu/matchscan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve <document|directory> <output-base>",
	Aliases: []string{"s"},
	Short:   "Serve scan runs to websocket clients",
	Long: `Start an HTTP server exposing scan runs.

  GET /ws          websocket; send {"action":"start"} or {"action":"cancel"}
                   and receive every run event as JSON, then a
                   {"kind":"finished","state":...} message
  GET /api/roots   the roots the next run will scan
  GET /api/state   the runner state
  GET /health      liveness

Only one run is active at a time. The document is reloaded for every run.

Examples:
  matchscan serve scan.yml out/result
  matchscan serve scan.yml out/result --port 9000`,
	Args: cobra.ExactArgs(2),
	RunE: runServe,
}

var serveFlags JobFlags

func init() {
	rootCmd.AddCommand(serveCmd)
	addJobFlags(serveCmd.Flags(), &serveFlags)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().String("host", config.DefaultHost, "Host to bind to")

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
}

func runServe(cmd *cobra.Command, args []string) error {
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
	// Fail fast on a bad document; later runs report errors to the client.
	if _, err := buildJob(cmd, &serveFlags, source, outputBase); err != nil {
		return err
	}

	jobs := func() (scanner.Job, error) {
		return buildJob(cmd, &serveFlags, source, outputBase)
	}

	runner := scanner.NewRunner(scanner.WithLogger(logger))
	srv := server.New(cfg.Server, jobs, runner, logger)

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "> Serving on http://%s (Press Ctrl+C to stop)\n", cfg.Server.Address())
	return srv.Start(ctx)
}
