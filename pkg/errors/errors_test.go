package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_Error(t *testing.T) {
	e := NotFound("order", "ord-1")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "ord-1")
}

func TestAppError_Unwrap(t *testing.T) {
	e := SignatureMismatch()
	assert.ErrorIs(t, e, ErrSignatureMismatch)

	wrapped := fmt.Errorf("verify callback: %w", e)
	assert.ErrorIs(t, wrapped, ErrSignatureMismatch)
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("order", "x"), http.StatusNotFound},
		{"invalid input", InvalidInput("empty cart"), http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), http.StatusUnauthorized},
		{"forbidden", Forbidden("not the order owner"), http.StatusForbidden},
		{"conflict", Conflict("already paid"), http.StatusConflict},
		{"signature mismatch", SignatureMismatch(), http.StatusBadRequest},
		{"provider", Provider("gateway unreachable"), http.StatusBadGateway},
		{"persistence", Persistence(errors.New("write failed")), http.StatusServiceUnavailable},
		{"internal", Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestHTTPStatus_Sentinels(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, HTTPStatus(ErrNotFound))
	assert.Equal(t, http.StatusBadRequest, HTTPStatus(ErrSignatureMismatch))
	assert.Equal(t, http.StatusBadGateway, HTTPStatus(ErrProvider))
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("unknown")))
}

func TestPersistence_WrapsCause(t *testing.T) {
	cause := errors.New("connection reset")
	e := Persistence(cause)
	assert.ErrorIs(t, e, ErrPersistence)
	assert.ErrorIs(t, e, cause)
}
