// Package errors defines the typed failures of a scan run and the sentinels
// callers match them against with errors.Is.
package errors

import (
	"errors"
	"fmt"
)

// Kind classifies a scan failure.
type Kind string

const (
	KindDuplicateKey  Kind = "duplicate_key"
	KindNotFound      Kind = "not_found"
	KindExtraction    Kind = "extraction"
	KindConfiguration Kind = "configuration"
)

// Sentinels for errors.Is checks against a ScanError of the same kind.
var (
	ErrDuplicateKey  = &ScanError{Kind: KindDuplicateKey}
	ErrNotFound      = &ScanError{Kind: KindNotFound}
	ErrExtraction    = &ScanError{Kind: KindExtraction}
	ErrConfiguration = &ScanError{Kind: KindConfiguration}
)

// Messages reported for per-file failures that carry no underlying cause.
const (
	MessageDuplicateKey = "Duplicate key."
	MessageNotFound     = "File not found."
)

// ScanError is a structured error raised while configuring or executing a run.
type ScanError struct {
	Kind    Kind
	Name    string
	Path    string
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *ScanError) Error() string {
	msg := e.Message
	if msg == "" && e.Cause != nil {
		msg = e.Cause.Error()
	}
	if e.Name == "" {
		return fmt.Sprintf("[%s] %s", e.Kind, msg)
	}
	return fmt.Sprintf("[%s] %s: %s", e.Kind, e.Name, msg)
}

// Reason is the user-facing failure text written to logs and events.
func (e *ScanError) Reason() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Cause != nil {
		return e.Cause.Error()
	}
	return string(e.Kind)
}

// Unwrap returns the underlying cause error.
func (e *ScanError) Unwrap() error {
	return e.Cause
}

// Is matches any ScanError of the same kind, so the package sentinels work
// with errors.Is.
func (e *ScanError) Is(target error) bool {
	var t *ScanError
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// NewDuplicateKeyError reports a logical name already claimed in this run.
func NewDuplicateKeyError(name, path string) *ScanError {
	return &ScanError{Kind: KindDuplicateKey, Name: name, Path: path, Message: MessageDuplicateKey}
}

// NewNotFoundError reports a candidate path missing at read time.
func NewNotFoundError(name, path string, cause error) *ScanError {
	return &ScanError{Kind: KindNotFound, Name: name, Path: path, Message: MessageNotFound, Cause: cause}
}

// NewExtractionError wraps an I/O or matching failure; the cause message is
// reported verbatim.
func NewExtractionError(name, path string, cause error) *ScanError {
	return &ScanError{Kind: KindExtraction, Name: name, Path: path, Cause: cause}
}

// NewConfigurationError reports a fatal pre-run problem.
func NewConfigurationError(message string, cause error) *ScanError {
	return &ScanError{Kind: KindConfiguration, Message: message, Cause: cause}
}

// KindOf returns the kind of the first ScanError in err's chain, or "".
func KindOf(err error) Kind {
	var se *ScanError
	if errors.As(err, &se) {
		return se.Kind
	}
	return ""
}

// IsConfigurationError reports whether err aborts a run before it starts.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
