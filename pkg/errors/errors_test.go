package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"not found", NotFound("provider", nil), "Record not found."},
		{"duplicate", Conflict("duplicate key", nil), "A record with the same value already exists."},
		{"permission", Forbidden(nil), "You do not have permission to perform this action."},
		{"validation keeps message", BadRequest("id is required", nil), "id is required"},
		{"plain error", fmt.Errorf("boom"), "An unexpected error occurred. Please try again."},
		{"wrapped", fmt.Errorf("failed to update: %w", NotFound("modifier", nil)), "Record not found."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, UserMessage(tt.err))
		})
	}
}

func TestStatusCode(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, NotFound("x", nil).StatusCode())
	assert.Equal(t, http.StatusConflict, Conflict("x", nil).StatusCode())
	assert.Equal(t, http.StatusForbidden, Forbidden(nil).StatusCode())
	assert.Equal(t, http.StatusInternalServerError, Internal(nil).StatusCode())
}

func TestIs(t *testing.T) {
	err := fmt.Errorf("wrap: %w", BadRequest("bad", nil))
	assert.True(t, Is(err, ErrBadRequest))
	assert.False(t, Is(err, ErrNotFound))
	assert.False(t, Is(nil, ErrInternal))
}
