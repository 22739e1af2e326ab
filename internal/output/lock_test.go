package output

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileLockHandoffKeepsExclusion(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt.lock")

	first := newFileLock(path)
	require.NoError(t, first.lock(context.Background()))

	second := newFileLock(path)
	acquired := make(chan error, 1)
	go func() { acquired <- second.lock(context.Background()) }()

	// the second writer is polling on the same lock file
	time.Sleep(2 * lockRetryDelay)
	select {
	case err := <-acquired:
		t.Fatalf("second writer acquired a held lock: %v", err)
	default:
	}

	require.NoError(t, first.unlock())
	select {
	case err := <-acquired:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("second writer never acquired the released lock")
	}
	defer second.unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	third := newFileLock(path)
	assert.Error(t, third.lock(ctx), "a third writer must wait while the second holds the lock")
	assert.FileExists(t, path)
}

func TestFileLockUnlockTwice(t *testing.T) {
	lock := newFileLock(filepath.Join(t.TempDir(), "x.lock"))
	require.NoError(t, lock.lock(context.Background()))
	require.NoError(t, lock.unlock())
	assert.NoError(t, lock.unlock())
}
