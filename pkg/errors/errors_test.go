package errors

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorFormatting(t *testing.T) {
	assert.Equal(t, "NOT_FOUND: restaurant 7 not found", NewNotFoundError("restaurant 7 not found").Error())

	wrapped := NewInternalError("failed to load catalog", fmt.Errorf("boom"))
	assert.Equal(t, "INTERNAL: failed to load catalog: boom", wrapped.Error())
	assert.EqualError(t, errors.Unwrap(wrapped), "boom")
}

func TestNewPositionUnavailableError_MatchesSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{name: "no cause", err: nil},
		{name: "timeout cause", err: context.DeadlineExceeded},
		{name: "already wrapped", err: fmt.Errorf("denied: %w", ErrPositionUnavailable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewPositionUnavailableError("permission denied", tt.err)
			assert.ErrorIs(t, err, ErrPositionUnavailable)
			assert.True(t, IsType(err, ErrorTypePositionUnavailable))
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestIsType(t *testing.T) {
	err := fmt.Errorf("handler: %w", NewValidationError("lat is invalid"))
	assert.True(t, IsType(err, ErrorTypeValidation))
	assert.False(t, IsType(err, ErrorTypeNotFound))
	assert.False(t, IsType(errors.New("plain"), ErrorTypeValidation))
	assert.False(t, IsType(nil, ErrorTypeValidation))
}
