package events

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"
)

// FailureLog writes one "<name> - Failed: <reason>" line per failed event.
// Other event kinds are ignored. It is independent of the output artifacts.
type FailureLog struct {
	w      *bufio.Writer
	target io.Writer
	closer io.Closer
	err    error
	mutex  sync.Mutex
}

// NewFailureLog writes failure lines to w.
func NewFailureLog(w io.Writer) *FailureLog {
	fl := &FailureLog{w: bufio.NewWriter(w), target: w}
	if c, ok := w.(io.Closer); ok {
		fl.closer = c
	}
	return fl
}

// CreateFailureLog creates (truncating) the log file at path.
func CreateFailureLog(path string) (*FailureLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create failure log: %w", err)
	}
	return NewFailureLog(f), nil
}

// Emit writes e if it is a failure. The first write error is kept and
// returned by Close.
func (l *FailureLog) Emit(e Event) {
	if e.Kind != KindFailed {
		return
	}

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.err != nil {
		return
	}
	_, l.err = fmt.Fprintln(l.w, FailureLine(e))
}

// truncater is implemented by *os.File.
type truncater interface {
	Truncate(size int64) error
	Seek(offset int64, whence int) (int64, error)
}

// Reset discards buffered and written lines so the log only holds the
// failures of the next run. Writers that cannot be truncated keep their
// content; only the buffer and the sticky error are cleared.
func (l *FailureLog) Reset() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.w.Reset(l.target)
	l.err = nil

	t, ok := l.target.(truncater)
	if !ok {
		return nil
	}
	if err := t.Truncate(0); err != nil {
		return fmt.Errorf("failed to truncate failure log: %w", err)
	}
	if _, err := t.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("failed to rewind failure log: %w", err)
	}
	return nil
}

// Flush writes buffered lines to the underlying writer.
func (l *FailureLog) Flush() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.w.Flush(); err != nil && l.err == nil {
		l.err = err
	}
	return l.err
}

// Close flushes buffered lines and closes the underlying writer if it is
// closable.
func (l *FailureLog) Close() error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	if err := l.w.Flush(); err != nil && l.err == nil {
		l.err = err
	}
	if l.closer != nil {
		if err := l.closer.Close(); err != nil && l.err == nil {
			l.err = err
		}
		l.closer = nil
	}
	return l.err
}
