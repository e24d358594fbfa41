package apperrors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, http.StatusOK},
		{"configuration", fmt.Errorf("stripe: %w", ErrConfiguration), http.StatusServiceUnavailable},
		{"unavailable", NewUnavailableError("store down", errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized},
		{"signature", NewAppError(http.StatusUnauthorized, "bad signature", ErrSignature), http.StatusUnauthorized},
		{"validation", NewValidationError("limit %d out of range", 5000), http.StatusBadRequest},
		{"not found", NewNotFoundError("journal j-1 not found"), http.StatusNotFound},
		{"conflict", ErrConflict, http.StatusConflict},
		{"duplicate", fmt.Errorf("insert: %w", ErrDuplicate), http.StatusConflict},
		{"internal", NewInternalError("failed to save journal", errors.New("connection reset")), http.StatusInternalServerError},
		{"internal overrides code", NewAppError(http.StatusBadRequest, "bad mapping", ErrInternal), http.StatusInternalServerError},
		{"app error code", NewAppError(http.StatusTeapot, "teapot", errors.New("short and stout")), http.StatusTeapot},
		{"unknown", context.DeadlineExceeded, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestNewInternalError(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewInternalError("failed to save journal", cause)

	assert.ErrorIs(t, err, ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save journal: internal error: connection reset", err.Error())

	bare := NewInternalError("boom", nil)
	assert.ErrorIs(t, bare, ErrInternal)
	assert.Equal(t, "boom: internal error", bare.Error())
}
