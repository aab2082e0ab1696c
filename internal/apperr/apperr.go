// Package apperr defines the error kinds every store returns and the HTTP
// status each one maps to.
package apperr

import (
	"errors"
	"net/http"
	"sort"
	"strings"
)

var (
	ErrUnauthenticated = errors.New("authentication credentials were not provided or are invalid")
	ErrForbidden       = errors.New("you do not have permission to perform this action")
	ErrNotFound        = errors.New("not found")
)

// ValidationError reports malformed or conflicting input. Fields is keyed by
// the offending input field; Detail carries a message not tied to one field.
type ValidationError struct {
	Fields map[string]string
	Detail string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed: " + e.Detail
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Field builds a single-field validation error.
func Field(name, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{name: msg}}
}

// Invalid builds a validation error with a flat detail message.
func Invalid(detail string) *ValidationError {
	return &ValidationError{Detail: detail}
}

// NotFound wraps ErrNotFound with the missing entity's name.
func NotFound(entity string) error {
	return &notFoundError{entity: entity}
}

type notFoundError struct {
	entity string
}

func (e *notFoundError) Error() string { return e.entity + " not found" }
func (e *notFoundError) Unwrap() error { return ErrNotFound }

// Status returns the HTTP status for err, 500 for anything unrecognized.
func Status(err error) int {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
