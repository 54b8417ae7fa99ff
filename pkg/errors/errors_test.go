package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_HTTPStatus(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{CodeDuplicateUsername, http.StatusConflict},
		{CodeInvalidAccountData, http.StatusBadRequest},
		{CodeInvalidCredentials, http.StatusUnauthorized},
		{CodeSeedingFailed, http.StatusInternalServerError},
		{CodeUnauthenticated, http.StatusUnauthorized},
		{ErrorCode("UNKNOWN_CODE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			err := NewAppError(tt.code, "message", nil)
			assert.Equal(t, tt.want, err.HTTPStatus())
		})
	}
}

func TestAppError_ErrorAndUnwrap(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := NewAppError(CodeSeedingFailed, "Failed to seed users", cause)

	assert.Equal(t, "SEEDING_FAILED: Failed to seed users (caused by: connection refused)", err.Error())
	assert.ErrorIs(t, err, cause)

	plain := NewAppError(CodeInvalidCredentials, "Wrong username or password", nil)
	assert.Equal(t, "INVALID_CREDENTIALS: Wrong username or password", plain.Error())
}

func TestAsAppError(t *testing.T) {
	appErr, ok := AsAppError(NewAppError(CodeDuplicateUsername, "Username already exists", nil))
	require.True(t, ok)
	assert.Equal(t, CodeDuplicateUsername, appErr.Code)

	_, ok = AsAppError(stderrors.New("plain"))
	assert.False(t, ok)

	_, ok = AsAppError(nil)
	assert.False(t, ok)
}

func TestWrapError_KeepsCode(t *testing.T) {
	inner := NewAppError(CodeInvalidAccountData, "Passwords must be at least 6 characters", nil)
	wrapped := WrapError(inner, "registration failed")

	appErr, ok := AsAppError(wrapped)
	require.True(t, ok)
	assert.Equal(t, CodeInvalidAccountData, appErr.Code)
	assert.Equal(t, "registration failed", appErr.Message)

	assert.Nil(t, WrapError(nil, "nothing"))
}

func TestToErrorResponse(t *testing.T) {
	err := NewAppError(CodeInvalidCredentials, "Wrong username or password", nil)
	resp := err.ToErrorResponse("trace-123")

	assert.Equal(t, CodeInvalidCredentials, resp.Error.Code)
	assert.Equal(t, "Wrong username or password", resp.Error.Message)
	assert.Equal(t, "trace-123", resp.Error.TraceID)
}
