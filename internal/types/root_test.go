package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoot(t *testing.T) {
	file := NewRoot("Main", "/src/Main.p", false)
	assert.IsType(t, FileRoot{}, file)
	assert.False(t, file.IsDirectory())
	assert.Equal(t, "Main", file.Name())
	assert.Equal(t, "/src/Main.p", file.Path())

	dir := NewRoot("src", "/src", true)
	assert.IsType(t, DirectoryRoot{}, dir)
	assert.True(t, dir.IsDirectory())
}

func TestRenamedKeepsKindAndPath(t *testing.T) {
	original := NewRoot("src", "/code/src", true)
	renamed := Renamed(original, "sources")

	assert.Equal(t, "sources", renamed.Name())
	assert.Equal(t, "/code/src", renamed.Path())
	assert.True(t, renamed.IsDirectory())
	assert.Equal(t, "src", original.Name(), "the original root is a value and stays unchanged")
}

func TestResolveRoot(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.p")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	assert.True(t, ResolveRoot("dir", dir).IsDirectory())
	assert.False(t, ResolveRoot("a", file).IsDirectory())
	assert.False(t, ResolveRoot("gone", filepath.Join(dir, "missing")).IsDirectory())
}

func TestLogicalNames(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) string
		path string
		want string
	}{
		{"file with extension", FileLogicalName, "/src/Order.cls", "Order"},
		{"file with two dots", FileLogicalName, "/src/order.test.p", "order.test"},
		{"file without extension", FileLogicalName, "/src/Makefile", "Makefile"},
		{"directory", DirectoryLogicalName, "/code/src", "src"},
		{"directory with trailing slash", DirectoryLogicalName, "/code/src/", "src"},
		{"filesystem root", DirectoryLogicalName, "/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.fn(tt.path))
		})
	}
}
