package scanner

import (
	"context"
	"iter"
	"os"
	"path/filepath"

	"github.com/conneroisu/matchscan/internal/types"
)

// Walker enumerates the candidate files of a directory root.
type Walker struct {
	filter ExtensionFilter
}

// NewWalker creates a walker keeping only files the filter allows.
func NewWalker(filter ExtensionFilter) *Walker {
	if filter.IsZero() {
		filter = DefaultFilter()
	}
	return &Walker{filter: filter}
}

// Walk lazily yields the candidates under root: the immediate files of a
// directory first, in listing order, then each subdirectory recursively.
// ctx is checked before every file and before every descent; once it is
// done the sequence simply ends.
//
// A directory that cannot be listed is yielded once as an error, with the
// directory's base name and path as the candidate, and its subtree is
// skipped.
func (w *Walker) Walk(ctx context.Context, root types.DirectoryRoot) iter.Seq2[types.Candidate, error] {
	return func(yield func(types.Candidate, error) bool) {
		w.walkDir(ctx, root.Path(), yield)
	}
}

// walkDir returns false when the caller stopped or ctx was cancelled.
func (w *Walker) walkDir(ctx context.Context, dir string, yield func(types.Candidate, error) bool) bool {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return yield(types.Candidate{Name: types.DirectoryLogicalName(dir), Path: dir}, err)
	}

	var subdirs []string
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		isDir, isFile := classify(entry, path)
		if isDir {
			subdirs = append(subdirs, path)
			continue
		}
		if !isFile || !w.filter.Allows(path) {
			continue
		}

		if ctx.Err() != nil {
			return false
		}
		if !yield(types.Candidate{Name: types.FileLogicalName(path), Path: path}, nil) {
			return false
		}
	}

	for _, sub := range subdirs {
		if ctx.Err() != nil {
			return false
		}
		if !w.walkDir(ctx, sub, yield) {
			return false
		}
	}

	return true
}

// classify resolves an entry into directory or file. Symlinks to files are
// files; symlinks to directories are not followed, which keeps link cycles
// from recursing forever.
func classify(entry os.DirEntry, path string) (isDir, isFile bool) {
	mode := entry.Type()
	switch {
	case mode.IsDir():
		return true, false
	case mode&os.ModeSymlink != 0:
		info, err := os.Stat(path)
		if err != nil {
			return false, false
		}
		return false, info.Mode().IsRegular()
	default:
		return false, mode.IsRegular()
	}
}
