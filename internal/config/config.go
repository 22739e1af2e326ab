// Package config provides configuration management for matchscan.
//
// Two layers are kept apart. Process settings (logging, console output,
// watch debounce, server address) are loaded through Viper from
// .matchscan.yml, the file named by --config or MATCHSCAN_CONFIG_FILE, and
// MATCHSCAN_* environment variables. The scan document (ordered roots, the
// pattern and the first-match-only flag) is a separate file handled by
// LoadDocument and SaveDocument.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/conneroisu/matchscan/internal/validation"
)

// Config holds the process settings.
type Config struct {
	Log    LogConfig    `mapstructure:"log" yaml:"log"`
	Output OutputConfig `mapstructure:"output" yaml:"output"`
	Watch  WatchConfig  `mapstructure:"watch" yaml:"watch"`
	Server ServerConfig `mapstructure:"server" yaml:"server"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	// Dir receives dated structured log files when set
	Dir string `mapstructure:"dir" yaml:"dir"`
}

type OutputConfig struct {
	// FailureLog is the "<name> - Failed: <reason>" log file
	FailureLog string `mapstructure:"failure_log" yaml:"failure_log"`
	// Color is "auto", "always" or "never"
	Color string `mapstructure:"color" yaml:"color"`
}

type WatchConfig struct {
	Debounce time.Duration `mapstructure:"debounce" yaml:"debounce"`
}

type ServerConfig struct {
	Host string `mapstructure:"host" yaml:"host"`
	Port int    `mapstructure:"port" yaml:"port"`
}

// Defaults applied when a setting is absent.
const (
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
	DefaultFailureLog = "matchscan.log"
	DefaultColor      = "auto"
	DefaultDebounce   = 300 * time.Millisecond
	DefaultHost       = "localhost"
	DefaultPort       = 8088
)

// Load reads the settings from the global Viper instance.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads the settings from v, applies defaults and validates them.
func LoadFrom(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config.Log.Level == "" {
		config.Log.Level = DefaultLogLevel
	}
	if config.Log.Format == "" {
		config.Log.Format = DefaultLogFormat
	}
	if config.Output.FailureLog == "" {
		config.Output.FailureLog = DefaultFailureLog
	}
	if config.Output.Color == "" {
		config.Output.Color = DefaultColor
	}
	if config.Watch.Debounce == 0 {
		config.Watch.Debounce = DefaultDebounce
	}
	if config.Server.Host == "" {
		config.Server.Host = DefaultHost
	}
	if !v.IsSet("server.port") {
		config.Server.Port = DefaultPort
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates configuration values for correctness
func validateConfig(config *Config) error {
	if err := validateLogConfig(&config.Log); err != nil {
		return fmt.Errorf("log config: %w", err)
	}
	if err := validateOutputConfig(&config.Output); err != nil {
		return fmt.Errorf("output config: %w", err)
	}
	if config.Watch.Debounce < 0 {
		return fmt.Errorf("watch config: debounce must not be negative, got %s", config.Watch.Debounce)
	}
	if err := validateServerConfig(&config.Server); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	return nil
}

func validateLogConfig(config *LogConfig) error {
	switch strings.ToLower(config.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unknown level %q", config.Level)
	}
	switch config.Format {
	case "text", "json":
	default:
		return fmt.Errorf("format must be text or json, got %q", config.Format)
	}
	return nil
}

func validateOutputConfig(config *OutputConfig) error {
	switch config.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("color must be auto, always or never, got %q", config.Color)
	}
	if strings.HasSuffix(config.FailureLog, string(filepath.Separator)) {
		return fmt.Errorf("failure_log must name a file, got %q", config.FailureLog)
	}
	return nil
}

func validateServerConfig(config *ServerConfig) error {
	// 0 lets the system pick a port
	if config.Port < 0 || config.Port > 65535 {
		return fmt.Errorf("port %d is not in valid range 0-65535", config.Port)
	}
	if err := validation.ValidateHost(config.Host); err != nil {
		return err
	}
	return nil
}

// Address returns host:port for the server.
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
