// Package types provides common type definitions used throughout matchscan.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"os"
	"path/filepath"
	"strings"
)

// Root is a configured scan origin: either a single file or a directory
// subtree. The concrete type is resolved once when the root is built.
type Root interface {
	// Name is the display name; for file roots it is also the logical name
	// used for deduplication.
	Name() string
	// Path is the full filesystem path of the root.
	Path() string
	// IsDirectory reports whether the root is walked as a tree.
	IsDirectory() bool

	withName(name string) Root
}

// FileRoot is a single file scanned regardless of its extension.
type FileRoot struct {
	RootName string
	RootPath string
}

// DirectoryRoot is a directory walked recursively.
type DirectoryRoot struct {
	RootName string
	RootPath string
}

func (r FileRoot) Name() string      { return r.RootName }
func (r FileRoot) Path() string      { return r.RootPath }
func (r FileRoot) IsDirectory() bool { return false }

func (r FileRoot) withName(name string) Root {
	r.RootName = name
	return r
}

func (r DirectoryRoot) Name() string      { return r.RootName }
func (r DirectoryRoot) Path() string      { return r.RootPath }
func (r DirectoryRoot) IsDirectory() bool { return true }

func (r DirectoryRoot) withName(name string) Root {
	r.RootName = name
	return r
}

// Renamed returns a copy of root carrying a new display name. The path and
// the root kind never change once a root exists.
func Renamed(root Root, name string) Root {
	return root.withName(name)
}

// NewRoot builds a root, resolving its kind from isDirectory.
func NewRoot(name, path string, isDirectory bool) Root {
	if isDirectory {
		return DirectoryRoot{RootName: name, RootPath: path}
	}
	return FileRoot{RootName: name, RootPath: path}
}

// ResolveRoot builds a root by inspecting the filesystem: existing
// directories become DirectoryRoot, anything else (including a missing path)
// becomes FileRoot so that the run reports it as not found.
func ResolveRoot(name, path string) Root {
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return DirectoryRoot{RootName: name, RootPath: path}
	}
	return FileRoot{RootName: name, RootPath: path}
}

// FileLogicalName returns the base name of path without its extension.
func FileLogicalName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// DirectoryLogicalName returns the base name of a directory path, falling
// back to the path itself for volume roots such as "/".
func DirectoryLogicalName(path string) string {
	base := filepath.Base(filepath.Clean(path))
	if strings.Trim(base, `/\.`) == "" {
		return path
	}
	return base
}

// Candidate is a concrete (logical name, file path) pair under
// consideration during a run.
type Candidate struct {
	Name string
	Path string
}

// MatchResult is the record kept for a successfully processed file that
// produced at least one fragment.
type MatchResult struct {
	// LogicalName is the deduplication key
	LogicalName string
	// SourcePath is the file the fragments were extracted from
	SourcePath string
	// Fragments are the matched substrings in order of appearance
	Fragments []string
}
