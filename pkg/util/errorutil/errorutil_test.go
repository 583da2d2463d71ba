package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToDomainError_PassesThroughWrappedDomainError(t *testing.T) {
	base := NewConflict("bookmark already exists", map[string]any{"name": "go"})
	wrapped := fmt.Errorf("add bookmark: %w", base)

	got := ToDomainError(wrapped)
	require.NotNil(t, got)
	assert.Equal(t, CodeConflict, got.Code)
	assert.Equal(t, http.StatusConflict, got.HTTPStatus)
	assert.Equal(t, "go", got.Details["name"])
}

func TestToDomainError_MapsFiberErrors(t *testing.T) {
	tests := []struct {
		status int
		code   string
	}{
		{http.StatusBadRequest, CodeValidationFailed},
		{http.StatusUnauthorized, CodeUnauthorized},
		{http.StatusNotFound, CodeNotFound},
		{http.StatusMethodNotAllowed, "Method Not Allowed"},
		{http.StatusServiceUnavailable, CodeInternal},
	}
	for _, tt := range tests {
		got := ToDomainError(fiber.NewError(tt.status, "boom"))
		assert.Equal(t, tt.code, got.Code, "status %d", tt.status)
		assert.Equal(t, tt.status, got.HTTPStatus)
		assert.Equal(t, "boom", got.Message)
	}
}

func TestToDomainError_HidesUnknownErrors(t *testing.T) {
	cause := errors.New("disk on fire")
	got := ToDomainError(cause)

	assert.Equal(t, CodeInternal, got.Code)
	assert.Equal(t, "internal server error", got.Message)
	assert.ErrorIs(t, got, cause)
}

func TestToDomainError_Nil(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}

func TestHasCode(t *testing.T) {
	assert.True(t, HasCode(NewUnauthorized("nope"), CodeUnauthorized))
	assert.False(t, HasCode(NewUnauthorized("nope"), CodeNotFound))
	assert.False(t, HasCode(errors.New("plain"), CodeUnauthorized))
}
