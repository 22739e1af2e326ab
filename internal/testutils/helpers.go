// Package testutils provides fixture helpers shared by the package tests.
package testutils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// WriteTree creates files relative to dir, making parent directories as
// needed, and returns dir.
func WriteTree(t *testing.T, dir string, files map[string]string) string {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return dir
}

// CreateTempTree creates a fresh temporary directory holding files.
func CreateTempTree(t *testing.T, files map[string]string) string {
	t.Helper()
	return WriteTree(t, t.TempDir(), files)
}

// ReadLines returns the lines of path without the trailing newline. An
// empty file yields nil.
func ReadLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := strings.TrimRight(string(data), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

// AssertFilePermissions checks the permission bits of path.
func AssertFilePermissions(t *testing.T, path string, expectedMode os.FileMode) {
	t.Helper()
	info, err := os.Stat(path)
	require.NoError(t, err)

	actualMode := info.Mode()
	require.Equal(t, expectedMode, actualMode&os.FileMode(0o777),
		"File %s has incorrect permissions: got %o, want %o",
		path, actualMode&os.FileMode(0o777), expectedMode)
}

// WaitForFile waits until path exists and cond accepts its lines. It is
// used to observe artifacts written by background runs.
func WaitForFile(t *testing.T, path string, timeout time.Duration, cond func(lines []string) bool) []string {
	t.Helper()
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil {
			text := strings.TrimRight(string(data), "\n")
			var lines []string
			if text != "" {
				lines = strings.Split(text, "\n")
			}
			if cond == nil || cond(lines) {
				return lines
			}
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("File %s did not reach the expected state within %v", path, timeout)
	return nil
}
