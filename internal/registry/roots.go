// Package registry holds the two name-keyed registries of a scan: the
// ordered list of configured roots and the per-run dedup registry of claimed
// logical names. Both compare names case-insensitively.
package registry

import (
	"errors"
	"fmt"
	"sync"

	"github.com/conneroisu/matchscan/internal/types"
)

var (
	// ErrDuplicateRoot is returned when a root with the same name or path is
	// already configured.
	ErrDuplicateRoot = errors.New("root already configured")
	// ErrRootNotFound is returned when no root has the requested name.
	ErrRootNotFound = errors.New("root not found")
)

// RootRegistry holds the ordered list of configured roots. Insertion order
// is the scan order.
type RootRegistry struct {
	roots []types.Root
	dirty bool
	mutex sync.RWMutex
}

// NewRootRegistry creates a registry seeded with roots, keeping their order.
// Seeded roots are not checked for uniqueness; documents written by hand are
// scanned as given and duplicates surface as DuplicateKey failures.
func NewRootRegistry(roots ...types.Root) *RootRegistry {
	r := &RootRegistry{roots: make([]types.Root, 0, len(roots))}
	r.roots = append(r.roots, roots...)
	return r
}

// Add appends root unless a root with a case-insensitively equal name exists.
func (r *RootRegistry) Add(root types.Root) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.indexOfName(root.Name()) >= 0 {
		return fmt.Errorf("%w: name %q", ErrDuplicateRoot, root.Name())
	}
	r.roots = append(r.roots, root)
	r.dirty = true
	return nil
}

// AddFile adds a file root named after the file's base name without
// extension. Uniqueness is checked by name.
func (r *RootRegistry) AddFile(path string) (types.Root, error) {
	root := types.FileRoot{RootName: types.FileLogicalName(path), RootPath: path}
	if err := r.Add(root); err != nil {
		return nil, err
	}
	return root, nil
}

// AddDirectory adds a directory root named after the directory's base name.
// Uniqueness is checked by path, so two directories sharing a base name can
// both be configured.
func (r *RootRegistry) AddDirectory(path string) (types.Root, error) {
	root := types.DirectoryRoot{RootName: types.DirectoryLogicalName(path), RootPath: path}

	r.mutex.Lock()
	defer r.mutex.Unlock()

	if r.indexOfValue(path) >= 0 {
		return nil, fmt.Errorf("%w: path %q", ErrDuplicateRoot, path)
	}
	r.roots = append(r.roots, root)
	r.dirty = true
	return root, nil
}

// Contains reports whether a root with a case-insensitively equal name exists.
func (r *RootRegistry) Contains(name string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.indexOfName(name) >= 0
}

// ContainsValue reports whether a root with a case-insensitively equal path exists.
func (r *RootRegistry) ContainsValue(path string) bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.indexOfValue(path) >= 0
}

// Get returns the root with the given name.
func (r *RootRegistry) Get(name string) (types.Root, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	if i := r.indexOfName(name); i >= 0 {
		return r.roots[i], true
	}
	return nil, false
}

// Rename changes the display name of a root in place.
func (r *RootRegistry) Rename(oldName, newName string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOfName(oldName)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrRootNotFound, oldName)
	}
	if j := r.indexOfName(newName); j >= 0 && j != i {
		return fmt.Errorf("%w: name %q", ErrDuplicateRoot, newName)
	}
	r.roots[i] = types.Renamed(r.roots[i], newName)
	r.dirty = true
	return nil
}

// Remove deletes the root with the given name.
func (r *RootRegistry) Remove(name string) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	i := r.indexOfName(name)
	if i < 0 {
		return fmt.Errorf("%w: %q", ErrRootNotFound, name)
	}
	r.roots = append(r.roots[:i], r.roots[i+1:]...)
	r.dirty = true
	return nil
}

// Roots returns a copy of the configured roots in scan order.
func (r *RootRegistry) Roots() []types.Root {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]types.Root, len(r.roots))
	copy(result, r.roots)
	return result
}

// Len returns the number of configured roots.
func (r *RootRegistry) Len() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.roots)
}

// Dirty reports whether the registry changed since it was loaded or last
// marked clean.
func (r *RootRegistry) Dirty() bool {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return r.dirty
}

// MarkClean clears the dirty flag after the registry has been saved.
func (r *RootRegistry) MarkClean() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.dirty = false
}

func (r *RootRegistry) indexOfName(name string) int {
	key := foldKey(name)
	for i, root := range r.roots {
		if foldKey(root.Name()) == key {
			return i
		}
	}
	return -1
}

func (r *RootRegistry) indexOfValue(path string) int {
	key := foldKey(path)
	for i, root := range r.roots {
		if foldKey(root.Path()) == key {
			return i
		}
	}
	return -1
}
