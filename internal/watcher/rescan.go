package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/conneroisu/matchscan/internal/scanner"
	"github.com/conneroisu/matchscan/internal/types"
)

// ExtensionFilter accepts paths the scan's extension allow-list accepts.
// Directory events are kept so that removed or renamed folders still
// trigger a re-run.
func ExtensionFilter(f scanner.ExtensionFilter) FileFilter {
	if f.IsZero() {
		f = scanner.DefaultFilter()
	}
	return func(path string) bool {
		return filepath.Ext(path) == "" || f.Allows(path)
	}
}

// RootFilter accepts paths that belong to one of the roots: the exact
// file of a file root, or anything under a directory root.
func RootFilter(roots []types.Root) FileFilter {
	type entry struct {
		path string
		dir  bool
	}
	entries := make([]entry, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r.Path())
		if err != nil {
			abs = filepath.Clean(r.Path())
		}
		entries = append(entries, entry{path: abs, dir: r.IsDirectory()})
	}

	return func(path string) bool {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = filepath.Clean(path)
		}
		for _, e := range entries {
			if abs == e.path {
				return true
			}
			if e.dir && strings.HasPrefix(abs, e.path+string(filepath.Separator)) {
				return true
			}
		}
		return false
	}
}

// Rescanner runs one scan at a time. Trigger cancels the scan in progress,
// waits for it to unwind and starts a fresh one.
type Rescanner struct {
	scan func(ctx context.Context)

	mutex  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewRescanner creates a rescanner that calls scan for every run.
func NewRescanner(scan func(ctx context.Context)) *Rescanner {
	return &Rescanner{scan: scan}
}

// Trigger starts a new scan derived from parent, replacing any scan still
// running.
func (r *Rescanner) Trigger(parent context.Context) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	r.stopLocked()
	if parent.Err() != nil {
		return
	}

	ctx, cancel := context.WithCancel(parent)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done

	go func() {
		defer close(done)
		defer cancel()
		r.scan(ctx)
	}()
}

// Handler adapts the rescanner to a watcher change handler.
func (r *Rescanner) Handler(parent context.Context) ChangeHandler {
	return func([]ChangeEvent) error {
		r.Trigger(parent)
		return nil
	}
}

// Stop cancels the scan in progress and waits for it to finish.
func (r *Rescanner) Stop() {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.stopLocked()
}

// Wait blocks until the current scan, if any, finishes.
func (r *Rescanner) Wait() {
	r.mutex.Lock()
	done := r.done
	r.mutex.Unlock()

	if done != nil {
		<-done
	}
}

func (r *Rescanner) stopLocked() {
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}
