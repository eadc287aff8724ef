package dErrors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "bookify/pkg/domain-errors"
)

func TestCodeOf(t *testing.T) {
	assert.Equal(t, dErrors.CodeConflict,
		dErrors.CodeOf(dErrors.New(dErrors.CodeConflict, "taken")))
	assert.Equal(t, dErrors.CodeInternal,
		dErrors.CodeOf(errors.New("plain")))

	// Codes survive wrapping in either direction.
	wrapped := fmt.Errorf("outer: %w", dErrors.New(dErrors.CodeNotFound, "gone"))
	assert.Equal(t, dErrors.CodeNotFound, dErrors.CodeOf(wrapped))
}

func TestHasCode(t *testing.T) {
	err := dErrors.Wrap(errors.New("db down"), dErrors.CodeInternal, "failed")
	assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	assert.False(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	assert.False(t, dErrors.HasCode(errors.New("plain"), dErrors.CodeInternal))
}

func TestMessageOf_SanitizesUntaggedErrors(t *testing.T) {
	assert.Equal(t, "gone", dErrors.MessageOf(dErrors.New(dErrors.CodeNotFound, "gone")))
	assert.Equal(t, "an unexpected error occurred",
		dErrors.MessageOf(errors.New("secret internal detail")))
}

func TestWrap_PreservesCause(t *testing.T) {
	cause := errors.New("unique constraint")
	err := dErrors.Wrap(cause, dErrors.CodeConflict, "already exists")
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unique constraint")
}

func TestToHTTPStatus(t *testing.T) {
	cases := map[dErrors.Code]int{
		dErrors.CodeBadRequest:       http.StatusBadRequest,
		dErrors.CodeUnauthorized:     http.StatusUnauthorized,
		dErrors.CodeForbidden:        http.StatusForbidden,
		dErrors.CodeNotFound:         http.StatusNotFound,
		dErrors.CodeTenantUnresolved: http.StatusNotFound,
		dErrors.CodeConflict:         http.StatusConflict,
		dErrors.CodeTooManyRequests:  http.StatusTooManyRequests,
		dErrors.CodeInternal:         http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, dErrors.ToHTTPStatus(code), string(code))
	}
}
