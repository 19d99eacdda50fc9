package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMapErrorToHTTP(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"conflict", ErrDuplicateRating, http.StatusConflict, "Rating already exists"},
		{"wrapped not found", fmt.Errorf("lookup: %w", ErrStoreNotFound), http.StatusNotFound, "Store not found"},
		{"validation", ErrInvalidOwner, http.StatusBadRequest, "owner_id must be a valid owner"},
		{"unauthorized", ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"forbidden", ErrForbidden, http.StatusForbidden, "Forbidden"},
		{"unknown error hides detail", errors.New("dial tcp 10.0.0.1:3306: refused"), http.StatusInternalServerError, "internal server error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			httpErr := MapErrorToHTTP(tt.err)
			assert.Equal(t, tt.wantStatus, httpErr.StatusCode)
			assert.Equal(t, tt.wantMsg, httpErr.ToErrorResponse().Error)
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError("storeId", "storeId must be integer")
	assert.Equal(t, "storeId: storeId must be integer", err.Error())
	assert.Equal(t, "validation failed", (&ValidationError{}).Error())
}
