package output

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/flock"
)

// lockRetryDelay is how often a blocked writer polls for the lock.
const lockRetryDelay = 50 * time.Millisecond

// fileLock wraps a flock file lock guarding one artifact pair.
type fileLock struct {
	flock *flock.Flock
	path  string
}

func newFileLock(path string) *fileLock {
	return &fileLock{
		flock: flock.New(path),
		path:  path,
	}
}

// lock acquires the exclusive lock, giving up when ctx is done.
func (l *fileLock) lock(ctx context.Context) error {
	locked, err := l.flock.TryLockContext(ctx, lockRetryDelay)
	if err != nil {
		return fmt.Errorf("failed to acquire lock on %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("failed to acquire lock on %s", l.path)
	}
	return nil
}

// unlock releases the lock. The lock file stays in place: a waiter already
// holds a descriptor on it, and a fresh file would let a third writer lock
// a different inode.
func (l *fileLock) unlock() error {
	if err := l.flock.Unlock(); err != nil {
		return fmt.Errorf("failed to release lock on %s: %w", l.path, err)
	}
	return nil
}
