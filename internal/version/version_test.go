package version

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBuildInfoShort(t *testing.T) {
	tests := []struct {
		name     string
		info     BuildInfo
		expected string
	}{
		{"release with commit", BuildInfo{Version: "v1.2.0", GitCommit: "abcdef123456"}, "v1.2.0 (abcdef1)"},
		{"dev with commit", BuildInfo{Version: "dev", GitCommit: "abcdef123456"}, "dev-abcdef1"},
		{"unknown commit", BuildInfo{Version: "v1.2.0", GitCommit: "unknown"}, "v1.2.0"},
		{"short commit", BuildInfo{Version: "v1.2.0", GitCommit: "abc"}, "v1.2.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.info.Short())
		})
	}
}

func TestBuildInfoDetailed(t *testing.T) {
	info := BuildInfo{
		Version:   "v1.0.0",
		GitCommit: "abcdef1",
		BuildTime: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
		GoVersion: "go1.24.4",
		Platform:  "linux/amd64",
		Dirty:     true,
	}

	out := info.Detailed()
	assert.Contains(t, out, "Version: v1.0.0")
	assert.Contains(t, out, "Commit: abcdef1")
	assert.Contains(t, out, "Built: 2024-01-02T03:04:05Z")
	assert.Contains(t, out, "Platform: linux/amd64")
	assert.Contains(t, out, "Working directory: dirty")
}

func TestGetBuildInfo(t *testing.T) {
	info := GetBuildInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}
