package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestErrors_Existence tests that all error variables exist and are not nil
func TestErrors_Existence(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrNotFound", ErrNotFound},
		{"ErrAlreadyExists", ErrAlreadyExists},
		{"ErrInvalidInput", ErrInvalidInput},
		{"ErrUnsupportedType", ErrUnsupportedType},
		{"ErrSyncInProgress", ErrSyncInProgress},
		{"ErrSourceUnavailable", ErrSourceUnavailable},
		{"ErrDownloadFailed", ErrDownloadFailed},
		{"ErrInvalidFile", ErrInvalidFile},
		{"ErrConversionFailed", ErrConversionFailed},
		{"ErrRemoteUnavailable", ErrRemoteUnavailable},
		{"ErrRemoteTransient", ErrRemoteTransient},
		{"ErrRemoteRejected", ErrRemoteRejected},
		{"ErrRateLimited", ErrRateLimited},
		{"ErrLedgerWriteFailed", ErrLedgerWriteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotNil(t, tt.err)
			assert.NotEmpty(t, tt.err.Error())
		})
	}
}

// TestErrors_Uniqueness tests that all errors are distinct
func TestErrors_Uniqueness(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrAlreadyExists,
		ErrInvalidInput,
		ErrUnsupportedType,
		ErrSyncInProgress,
		ErrSourceUnavailable,
		ErrDownloadFailed,
		ErrInvalidFile,
		ErrConversionFailed,
		ErrRemoteUnavailable,
		ErrRemoteTransient,
		ErrRemoteRejected,
		ErrRateLimited,
		ErrLedgerWriteFailed,
	}

	for i, err1 := range allErrors {
		for j, err2 := range allErrors {
			if i != j {
				assert.False(t, errors.Is(err1, err2),
					"Error %v should not match error %v", err1, err2)
			}
		}
	}
}

// TestErrors_WithWrapping tests error wrapping behavior
func TestErrors_WithWrapping(t *testing.T) {
	wrapped := fmt.Errorf("fetching row 12: %w", ErrDownloadFailed)

	assert.True(t, errors.Is(wrapped, ErrDownloadFailed))
	assert.False(t, errors.Is(wrapped, ErrInvalidFile))
	assert.Contains(t, wrapped.Error(), "download failed")
}

// TestErrors_RemoteTaxonomy tests that the remote error classes drive
// retry decisions via errors.Is
func TestErrors_RemoteTaxonomy(t *testing.T) {
	retryable := func(err error) bool {
		return errors.Is(err, ErrRemoteUnavailable) || errors.Is(err, ErrRemoteTransient)
	}

	assert.True(t, retryable(fmt.Errorf("upload: %w", ErrRemoteTransient)))
	assert.True(t, retryable(fmt.Errorf("dial: %w", ErrRemoteUnavailable)))
	assert.False(t, retryable(fmt.Errorf("upload: %w", ErrRemoteRejected)))
	assert.False(t, retryable(fmt.Errorf("commit: %w", ErrLedgerWriteFailed)))
}
