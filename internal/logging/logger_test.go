package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input   string
		want    LogLevel
		wantErr bool
	}{
		{"debug", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"", LevelInfo, false},
		{" warning ", LevelWarn, false},
		{"error", LevelError, false},
		{"verbose", LevelInfo, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseLevel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogLevelString(t *testing.T) {
	assert.Equal(t, "DEBUG", LevelDebug.String())
	assert.Equal(t, "ERROR", LevelError.String())
	assert.Equal(t, "UNKNOWN", LogLevel(99).String())
}

func TestLoggerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelWarn, Output: &buf})

	logger.Debug(context.Background(), "debug line")
	logger.Info(context.Background(), "info line")
	logger.Warn(context.Background(), errors.New("slow"), "warn line")
	logger.Error(context.Background(), errors.New("boom"), "error line")

	out := buf.String()
	assert.NotContains(t, out, "debug line")
	assert.NotContains(t, out, "info line")
	assert.Contains(t, out, "warn line")
	assert.Contains(t, out, "error=slow")
	assert.Contains(t, out, "error line")
}

func TestLoggerJSONFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelDebug, Format: "json", Output: &buf}).
		WithComponent("scanner").
		With("run_id", "r1")

	logger.Info(context.Background(), "Scan started", "roots", 2, 42, "dropped", "dangling")

	var record map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Scan started", record["msg"])
	assert.Equal(t, "scanner", record["component"])
	assert.Equal(t, "r1", record["run_id"])
	assert.Equal(t, float64(2), record["roots"])
	assert.NotContains(t, record, "dangling")
}

func TestNopDiscards(t *testing.T) {
	logger := Nop()
	assert.NotPanics(t, func() {
		logger.Error(context.Background(), errors.New("x"), "ignored")
		logger.With("k", "v").WithComponent("c").Info(context.Background(), "ignored")
	})
}

func TestFileLogger(t *testing.T) {
	dir := t.TempDir()

	logger, err := NewFileLogger(&LoggerConfig{Level: LevelInfo}, dir)
	require.NoError(t, err)
	logger.Info(context.Background(), "written to file", "key", "value")
	require.NoError(t, logger.Close())

	assert.True(t, strings.HasPrefix(logger.Path(), dir))
	assert.True(t, strings.HasSuffix(logger.Path(), ".log"))

	data, err := os.ReadFile(logger.Path())
	require.NoError(t, err)
	assert.Contains(t, string(data), "written to file")
	assert.Contains(t, string(data), "key=value")
}

func TestMultiLogger(t *testing.T) {
	var a, b bytes.Buffer
	multi := NewMultiLogger(
		NewLogger(&LoggerConfig{Level: LevelInfo, Output: &a}),
		NewLogger(&LoggerConfig{Level: LevelError, Output: &b}),
	)

	multi.WithComponent("watcher").Info(context.Background(), "rescan")
	multi.With("path", "/x").Error(context.Background(), errors.New("bad"), "failed")

	assert.Contains(t, a.String(), "rescan")
	assert.Contains(t, a.String(), "component=watcher")
	assert.Contains(t, a.String(), "failed")
	assert.NotContains(t, b.String(), "rescan")
	assert.Contains(t, b.String(), "path=/x")
}

func TestPerfLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&LoggerConfig{Level: LevelInfo, Output: &buf})

	StartOperation(logger, "scan").End(context.Background(), "scanned", 3)
	StartOperation(logger, "write").EndWithError(context.Background(), errors.New("disk full"))

	out := buf.String()
	assert.Contains(t, out, "Operation completed")
	assert.Contains(t, out, "operation=scan")
	assert.Contains(t, out, "scanned=3")
	assert.Contains(t, out, "duration_ms=")
	assert.Contains(t, out, "Operation failed")
	assert.Contains(t, out, "error=\"disk full\"")
}
