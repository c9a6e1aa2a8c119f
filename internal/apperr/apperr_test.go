package apperr

import (
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
		{"validation", Validation("bad"), http.StatusBadRequest},
		{"conflict", ErrAlreadyCancelled, http.StatusBadRequest},
		{"not found", ErrOrderNotFound, http.StatusNotFound},
		{"access denied", ErrAccessDenied, http.StatusForbidden},
		{"unauthenticated", Unauthenticated("no token"), http.StatusUnauthorized},
		{"plain error", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("outer: %w", ErrInsufficientStock), http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HTTPStatus(tt.err))
		})
	}
}

func TestWithKeepsIdentity(t *testing.T) {
	err := ErrInsufficientStock.With("Product Rice is not available in requested quantity")

	assert.True(t, errors.Is(err, ErrInsufficientStock))
	assert.False(t, errors.Is(err, ErrProductNotFound))
	assert.Equal(t, "Product Rice is not available in requested quantity", err.Error())
}

func TestPublicMessageHidesUnexpected(t *testing.T) {
	err := Unexpected("create order", errors.New("dial tcp 10.0.0.1:3306: connection refused"))

	assert.Equal(t, "Failed to create order", PublicMessage(err, "Failed to create order"))
	assert.Equal(t, "order not found", PublicMessage(ErrOrderNotFound, "x"))
	assert.Equal(t, CodeInternal, CodeOf(errors.New("x")))
}
