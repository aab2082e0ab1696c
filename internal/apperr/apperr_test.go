package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/hugh/kanmind/internal/apperr"
	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"field validation", apperr.Field("email", "Email already exists"), http.StatusBadRequest},
		{"flat validation", apperr.Invalid("members must be a list of IDs"), http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("create: %w", apperr.Field("title", "required")), http.StatusBadRequest},
		{"unauthenticated", apperr.ErrUnauthenticated, http.StatusUnauthorized},
		{"forbidden", fmt.Errorf("board: %w", apperr.ErrForbidden), http.StatusForbidden},
		{"not found", apperr.NotFound("Board"), http.StatusNotFound},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperr.Status(tt.err))
		})
	}
}

func TestNotFound_Unwraps(t *testing.T) {
	err := apperr.NotFound("Task")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
	assert.Equal(t, "Task not found", err.Error())
}

func TestValidationError_Message(t *testing.T) {
	err := &apperr.ValidationError{Fields: map[string]string{
		"reviewer_id": "Invalid user.",
		"assignee_id": "Invalid user.",
	}}
	assert.Equal(t, "validation failed: assignee_id: Invalid user.; reviewer_id: Invalid user.", err.Error())
	assert.Equal(t, "validation failed: bad", apperr.Invalid("bad").Error())
}
