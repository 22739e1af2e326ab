package errors

import (
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanErrorMessages(t *testing.T) {
	tests := []struct {
		name   string
		err    *ScanError
		reason string
		text   string
	}{
		{
			name:   "duplicate key",
			err:    NewDuplicateKeyError("order", "/b/order.cls"),
			reason: "Duplicate key.",
			text:   "[duplicate_key] order: Duplicate key.",
		},
		{
			name:   "not found",
			err:    NewNotFoundError("Gone", "/gone.p", fs.ErrNotExist),
			reason: "File not found.",
			text:   "[not_found] Gone: File not found.",
		},
		{
			name:   "extraction uses the cause verbatim",
			err:    NewExtractionError("a", "/a.p", errors.New("permission denied")),
			reason: "permission denied",
			text:   "[extraction] a: permission denied",
		},
		{
			name:   "configuration without name",
			err:    NewConfigurationError("Filename must be specified.", nil),
			reason: "Filename must be specified.",
			text:   "[configuration] Filename must be specified.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.reason, tt.err.Reason())
			assert.Equal(t, tt.text, tt.err.Error())
		})
	}
}

func TestScanErrorMatching(t *testing.T) {
	cause := fs.ErrNotExist
	err := fmt.Errorf("reading root: %w", NewNotFoundError("Gone", "/gone.p", cause))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.True(t, errors.Is(err, fs.ErrNotExist), "the cause stays reachable")
	assert.False(t, errors.Is(err, ErrDuplicateKey))
	assert.Equal(t, KindNotFound, KindOf(err))

	var scanErr *ScanError
	assert.True(t, errors.As(err, &scanErr))
	assert.Equal(t, "/gone.p", scanErr.Path)
}

func TestIsConfigurationError(t *testing.T) {
	assert.True(t, IsConfigurationError(NewConfigurationError("bad", nil)))
	assert.True(t, IsConfigurationError(fmt.Errorf("wrapped: %w", NewConfigurationError("bad", nil))))
	assert.False(t, IsConfigurationError(NewExtractionError("a", "/a", errors.New("x"))))
	assert.False(t, IsConfigurationError(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
}
