// Package cmd provides the command-line interface for matchscan.
//
// Configuration System:
//
//	Process settings come from several sources with clear precedence:
//	1. Command-line flags (--config, --log-level, ...) - highest priority
//	2. MATCHSCAN_CONFIG_FILE environment variable - custom config file path
//	3. Individual environment variables (MATCHSCAN_LOG_LEVEL, ...)
//	4. Configuration file (.matchscan.yml) - lowest priority
//
// The scan document (roots, pattern, first-match-only) is a separate file
// named on the command line of run, roots, init, watch and serve.
package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/matchscan/internal/config"
	"github.com/conneroisu/matchscan/internal/logging"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "matchscan",
	Short: "Scan source trees for pattern matches",
	Long: `matchscan walks a configured set of files and directories, extracts every
fragment matching a case-insensitive regular expression and writes two
listings: the matching files, and each "<file>,<fragment>" pair.

Quick Start:
  matchscan init scan.yml                         Create a scan document
  matchscan roots add scan.yml ./src              Add a directory root
  matchscan run scan.yml out/result               Run and write out/result.txt
  matchscan run -d ./src out/result --pattern X   Scan one directory
  matchscan watch scan.yml out/result             Re-run on changes
  matchscan serve scan.yml out/result             Websocket progress server`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .matchscan.yml, can also use MATCHSCAN_CONFIG_FILE env var)")
	rootCmd.PersistentFlags().StringP("log-level", "l", config.DefaultLogLevel, "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", config.DefaultLogFormat, "log format (text, json)")
	rootCmd.PersistentFlags().String("color", config.DefaultColor, "colorize console output (auto, always, never)")

	viper.BindPFlag("log.level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("log.format", rootCmd.PersistentFlags().Lookup("log-format"))
	viper.BindPFlag("output.color", rootCmd.PersistentFlags().Lookup("color"))
}

// initConfig initializes the configuration system.
//
// Configuration Loading Priority (highest to lowest):
//  1. --config flag
//  2. MATCHSCAN_CONFIG_FILE environment variable
//  3. .matchscan.yml in the current directory
//
// Every key can also be set through a MATCHSCAN_ variable with dots
// replaced by underscores, e.g. MATCHSCAN_SERVER_PORT=9000.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if envConfigFile := os.Getenv("MATCHSCAN_CONFIG_FILE"); envConfigFile != "" {
		viper.SetConfigFile(envConfigFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".matchscan")
	}

	viper.SetEnvPrefix("MATCHSCAN")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// A missing or unreadable file leaves the defaults in place.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// newLogger builds the process logger: stderr, plus a dated file when a
// log directory is configured. The returned close function is never nil.
func newLogger(cfg *config.Config, stderr io.Writer) (logging.Logger, func() error, error) {
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}

	loggerConfig := &logging.LoggerConfig{
		Level:  level,
		Format: cfg.Log.Format,
		Output: stderr,
	}
	console := logging.NewLogger(loggerConfig)

	if cfg.Log.Dir == "" {
		return console, func() error { return nil }, nil
	}

	file, err := logging.NewFileLogger(loggerConfig, cfg.Log.Dir)
	if err != nil {
		return nil, nil, err
	}
	return logging.NewMultiLogger(console, file), file.Close, nil
}
