package platformerrors

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorTypeToHTTPStatus(t *testing.T) {
	tests := []struct {
		errorType ErrorType
		want      int
	}{
		{ErrorTypeValidation, http.StatusBadRequest},
		{ErrorTypeForbidden, http.StatusForbidden},
		{ErrorTypeNotFound, http.StatusNotFound},
		{ErrorTypeExternal, http.StatusBadGateway},
		{ErrorTypeRateLimited, http.StatusTooManyRequests},
		{ErrorTypeDatabaseError, http.StatusInternalServerError},
		{ErrorType("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorTypeToHTTPStatus(tt.errorType))
		})
	}
}

func TestNewError_CarriesRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-123")

	err := NewError(ctx, LayerDomain, ErrorTypeNotFound, "conversation not found", nil, "code-1")

	assert.Equal(t, "req-123", err.GetRequestID())
	assert.Equal(t, "code-1", err.GetUUID())
	assert.Equal(t, LayerDomain, err.Layer)
	assert.Contains(t, err.Error(), "conversation not found")
}

func TestAsError_PreservesTypeAndCode(t *testing.T) {
	ctx := context.Background()
	inner := NewError(ctx, LayerRepository, ErrorTypeNotFound, "missing", nil, "repo-code")

	wrapped := AsError(ctx, LayerDomain, inner, "get conversation")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeNotFound, wrapped.Type)
	assert.Equal(t, "repo-code", wrapped.UUID)
	assert.True(t, IsNotFound(wrapped))
	assert.True(t, errors.Is(wrapped, inner))
}

func TestAsError_PlainErrorBecomesInternal(t *testing.T) {
	wrapped := AsError(context.Background(), LayerDomain, errors.New("boom"), "failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrorTypeInternal, wrapped.Type)
	assert.Nil(t, AsError(context.Background(), LayerDomain, nil, "nothing"))
}

func TestKindHelpers(t *testing.T) {
	ctx := context.Background()

	assert.True(t, IsForbidden(NewError(ctx, LayerDomain, ErrorTypeForbidden, "no", nil, "")))
	assert.True(t, IsValidation(NewError(ctx, LayerDomain, ErrorTypeValidation, "bad", nil, "")))
	assert.True(t, IsDependencyFailure(NewError(ctx, LayerDomain, ErrorTypeExternal, "down", nil, "")))
	assert.False(t, IsNotFound(errors.New("plain")))
	assert.False(t, IsNotFound(nil))
}
