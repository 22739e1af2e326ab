package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/matchscan/internal/types"
)

func TestRootRegistryAdd(t *testing.T) {
	reg := NewRootRegistry()
	assert.False(t, reg.Dirty())

	require.NoError(t, reg.Add(types.NewRoot("src", "/code/src", true)))
	assert.True(t, reg.Dirty())

	err := reg.Add(types.NewRoot("SRC", "/other", true))
	assert.True(t, errors.Is(err, ErrDuplicateRoot), "names compare case-insensitively")
	assert.Equal(t, 1, reg.Len())
}

func TestRootRegistryAddFileAndDirectory(t *testing.T) {
	reg := NewRootRegistry()

	root, err := reg.AddFile("/code/tools/Main.p")
	require.NoError(t, err)
	assert.Equal(t, "Main", root.Name())
	assert.False(t, root.IsDirectory())

	_, err = reg.AddFile("/code/other/main.w")
	assert.True(t, errors.Is(err, ErrDuplicateRoot), "file roots are unique by logical name")

	_, err = reg.AddDirectory("/a/lib")
	require.NoError(t, err)
	_, err = reg.AddDirectory("/b/lib")
	assert.NoError(t, err, "directory roots are unique by path, not by name")
	_, err = reg.AddDirectory("/A/LIB")
	assert.True(t, errors.Is(err, ErrDuplicateRoot))

	assert.True(t, reg.ContainsValue("/b/LIB"))
	assert.True(t, reg.Contains("main"))

	var names []string
	for _, r := range reg.Roots() {
		names = append(names, r.Name())
	}
	assert.Equal(t, []string{"Main", "lib", "lib"}, names, "insertion order is kept")
}

func TestRootRegistryRenameAndRemove(t *testing.T) {
	reg := NewRootRegistry(
		types.NewRoot("src", "/src", true),
		types.NewRoot("Main", "/tools/Main.p", false),
	)
	assert.False(t, reg.Dirty(), "seeded registries start clean")

	require.NoError(t, reg.Rename("SRC", "sources"))
	root, ok := reg.Get("Sources")
	require.True(t, ok)
	assert.Equal(t, "/src", root.Path())
	assert.True(t, root.IsDirectory())

	require.NoError(t, reg.Rename("main", "Main"), "renaming to a case variant of itself is allowed")
	assert.True(t, errors.Is(reg.Rename("main", "sources"), ErrDuplicateRoot))
	assert.True(t, errors.Is(reg.Rename("missing", "x"), ErrRootNotFound))

	require.NoError(t, reg.Remove("MAIN"))
	assert.True(t, errors.Is(reg.Remove("Main"), ErrRootNotFound))
	assert.Equal(t, 1, reg.Len())

	reg.MarkClean()
	assert.False(t, reg.Dirty())
}

func TestRootsReturnsCopy(t *testing.T) {
	reg := NewRootRegistry(types.NewRoot("src", "/src", true))
	roots := reg.Roots()
	roots[0] = types.NewRoot("other", "/other", false)

	root, ok := reg.Get("src")
	require.True(t, ok)
	assert.Equal(t, "/src", root.Path())
}
