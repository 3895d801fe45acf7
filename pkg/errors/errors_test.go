package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppError_ErrorString(t *testing.T) {
	e := NotFound("user", "u-1")
	assert.Contains(t, e.Error(), "NOT_FOUND")
	assert.Contains(t, e.Error(), "user with id u-1 not found")
}

func TestAppError_Unwrap(t *testing.T) {
	assert.True(t, errors.Is(NotFound("user", "u-1"), ErrNotFound))
	assert.True(t, errors.Is(Conflict("duplicate"), ErrConflict))
	assert.True(t, errors.Is(LimitExceeded("full"), ErrLimitExceeded))
	assert.True(t, errors.Is(Unauthorized("no token"), ErrUnauthorized))
	assert.True(t, errors.Is(Forbidden("nope"), ErrForbidden))
	assert.True(t, errors.Is(ServiceUnavailable("down"), ErrServiceUnavail))
}

func TestHTTPStatus_AppError(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{NotFound("user", "u-1"), http.StatusNotFound},
		{Conflict("duplicate email"), http.StatusBadRequest},
		{LimitExceeded("wishlist full"), http.StatusBadRequest},
		{InvalidInput("bad email"), http.StatusBadRequest},
		{Unauthorized("missing token"), http.StatusUnauthorized},
		{Forbidden("not permitted"), http.StatusForbidden},
		{ServiceUnavailable("upstream down"), http.StatusServiceUnavailable},
		{Internal(errors.New("boom")), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.status, HTTPStatus(tt.err), "error: %v", tt.err)
	}
}

func TestHTTPStatus_WrappedSentinel(t *testing.T) {
	err := fmt.Errorf("check wishlist: %w", ErrNotFound)
	assert.Equal(t, http.StatusNotFound, HTTPStatus(err))

	err = fmt.Errorf("resolve product: %w", ErrServiceUnavail)
	assert.Equal(t, http.StatusServiceUnavailable, HTTPStatus(err))
}

func TestHTTPStatus_UnknownError(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}
