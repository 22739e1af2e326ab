package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFromDefaults(t *testing.T) {
	cfg, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, DefaultLogFormat, cfg.Log.Format)
	assert.Empty(t, cfg.Log.Dir)
	assert.Equal(t, DefaultFailureLog, cfg.Output.FailureLog)
	assert.Equal(t, DefaultColor, cfg.Output.Color)
	assert.Equal(t, DefaultDebounce, cfg.Watch.Debounce)
	assert.Equal(t, "localhost:8088", cfg.Server.Address())
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".matchscan.yml")
	require.NoError(t, os.WriteFile(path, []byte(`log:
  level: debug
  format: json
output:
  failure_log: failures.log
  color: never
watch:
  debounce: 1s
server:
  host: 0.0.0.0
  port: 0
`), 0o644))

	v := viper.New()
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, "failures.log", cfg.Output.FailureLog)
	assert.Equal(t, "never", cfg.Output.Color)
	assert.Equal(t, time.Second, cfg.Watch.Debounce)
	assert.Equal(t, 0, cfg.Server.Port, "an explicit port 0 is kept")
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("MATCHSCAN_OUTPUT_COLOR", "always")

	v := viper.New()
	v.SetEnvPrefix("matchscan")
	v.AutomaticEnv()
	v.BindEnv("output.color", "MATCHSCAN_OUTPUT_COLOR")

	cfg, err := LoadFrom(v)
	require.NoError(t, err)
	assert.Equal(t, "always", cfg.Output.Color)
}

func TestLoadFromValidation(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value interface{}
		msg   string
	}{
		{"unknown level", "log.level", "loud", "log config"},
		{"unknown format", "log.format", "xml", "log config"},
		{"unknown color", "output.color", "sometimes", "output config"},
		{"directory failure log", "output.failure_log", "logs" + string(filepath.Separator), "output config"},
		{"negative debounce", "watch.debounce", "-1s", "watch config"},
		{"port out of range", "server.port", 70000, "server config"},
		{"host with shell characters", "server.host", "localhost;rm", "server config"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			v.Set(tt.key, tt.value)

			_, err := LoadFrom(v)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}
