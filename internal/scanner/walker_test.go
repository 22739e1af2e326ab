package scanner

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/matchscan/internal/testutils"
	"github.com/conneroisu/matchscan/internal/types"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	files := make(map[string]string, len(names))
	for _, name := range names {
		files[name] = "find x"
	}
	testutils.WriteTree(t, dir, files)
}

func collect(t *testing.T, seq func(func(types.Candidate, error) bool)) ([]types.Candidate, []error) {
	t.Helper()
	var candidates []types.Candidate
	var errs []error
	for c, err := range seq {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		candidates = append(candidates, c)
	}
	return candidates, errs
}

func TestWalkerOrderFilesBeforeSubdirectories(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir,
		"a/deep/d.p",
		"b.cls",
		"a/c.w",
		"z.p",
		"notes.txt",
		"b/e.i",
	)

	root := types.DirectoryRoot{RootName: "root", RootPath: dir}
	candidates, errs := collect(t, NewWalker(DefaultFilter()).Walk(context.Background(), root))
	require.Empty(t, errs)

	var rel []string
	for _, c := range candidates {
		r, err := filepath.Rel(dir, c.Path)
		require.NoError(t, err)
		rel = append(rel, filepath.ToSlash(r))
	}
	assert.Equal(t, []string{"b.cls", "z.p", "a/c.w", "a/deep/d.p", "b/e.i"}, rel)
	assert.Equal(t, "b", candidates[0].Name, "file candidates use the base name without extension")
}

func TestWalkerZeroFilterUsesDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.p", "b.go")

	candidates, _ := collect(t, NewWalker(ExtensionFilter{}).Walk(context.Background(), types.DirectoryRoot{RootPath: dir}))
	require.Len(t, candidates, 1)
	assert.Equal(t, "a", candidates[0].Name)
}

func TestWalkerMissingDirectory(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "gone")

	candidates, errs := collect(t, NewWalker(DefaultFilter()).Walk(context.Background(), types.DirectoryRoot{RootName: "gone", RootPath: missing}))
	assert.Empty(t, candidates)
	require.Len(t, errs, 1)
	assert.True(t, errors.Is(errs[0], fs.ErrNotExist))
}

func TestWalkerStopsWhenCancelled(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.p", "b.p", "sub/c.p")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	var seen int
	for _, err := range NewWalker(DefaultFilter()).Walk(ctx, types.DirectoryRoot{RootPath: dir}) {
		require.NoError(t, err)
		seen++
		cancel()
	}
	assert.Equal(t, 1, seen)
}

func TestWalkerStopsWhenConsumerBreaks(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "a.p", "b.p", "sub/c.p")

	var seen int
	for range NewWalker(DefaultFilter()).Walk(context.Background(), types.DirectoryRoot{RootPath: dir}) {
		seen++
		if seen == 2 {
			break
		}
	}
	assert.Equal(t, 2, seen)
}

func TestWalkerSymlinks(t *testing.T) {
	dir := t.TempDir()
	target := t.TempDir()
	writeFiles(t, target, "linked.p", "inner/hidden.p")

	if err := os.Symlink(filepath.Join(target, "linked.p"), filepath.Join(dir, "link.p")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}
	require.NoError(t, os.Symlink(filepath.Join(target, "inner"), filepath.Join(dir, "inner")))
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "loop")))

	candidates, errs := collect(t, NewWalker(DefaultFilter()).Walk(context.Background(), types.DirectoryRoot{RootPath: dir}))
	require.Empty(t, errs)
	require.Len(t, candidates, 1, "file links are followed, directory links are not")
	assert.Equal(t, "link", candidates[0].Name)
}
