// internal/core/errors_test.go
package core

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	err := &Error{Code: "TEST_ERROR", Message: "test message"}
	assert.Equal(t, "[TEST_ERROR] test message", err.Error())
}

func TestError_Unwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := &Error{Code: "WRAP", Message: "wrapped", Cause: cause}
	assert.ErrorIs(t, err, cause)
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := WithMessage(ErrDataUnavailable, "Invalid API call", nil)
	assert.ErrorIs(t, err, ErrDataUnavailable)
	assert.NotErrorIs(t, err, ErrNoData)
}

func TestWrapError(t *testing.T) {
	cause := errors.New("original")
	wrapped := WrapError(ErrExportFailed, cause)
	assert.Equal(t, cause, wrapped.Cause)
	assert.Equal(t, ErrExportFailed.Code, wrapped.Code)
	assert.Equal(t, ErrExportFailed.Message, wrapped.Message)
}

func TestWithMessage(t *testing.T) {
	err := WithMessage(ErrDataUnavailable, "rate limited", nil)
	assert.Equal(t, "rate limited", err.Message)

	fallback := WithMessage(ErrDataUnavailable, "", nil)
	assert.Equal(t, "Unknown error", fallback.Message)
}

func TestCodeOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain error", errors.New("boom"), CodeInternal},
		{"core error", ErrNoData, "NO_DATA"},
		{"wrapped core error", fmt.Errorf("fetching: %w", ErrDataUnavailable), "DATA_UNAVAILABLE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CodeOf(tt.err))
		})
	}
}
