package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/apperr"
)

type contextKey string

const UserIDKey contextKey = "user_id"

// KeyResolver maps a presented token key to a user id.
type KeyResolver interface {
	Resolve(ctx context.Context, key string) (uuid.UUID, error)
}

var schemes = []string{"Bearer ", "Token "}

func Auth(tokens KeyResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := extractKey(r)
			if key == "" {
				writeUnauthorized(w, "Authentication credentials were not provided.")
				return
			}

			userID, err := tokens.Resolve(r.Context(), key)
			if err != nil {
				if errors.Is(err, apperr.ErrUnauthenticated) {
					writeUnauthorized(w, "Invalid token.")
					return
				}
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(dto.ErrorResponse{Error: "Internal server error"})
				return
			}

			ctx := context.WithValue(r.Context(), UserIDKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func extractKey(r *http.Request) string {
	// 1. Authorization header with either scheme
	authHeader := r.Header.Get("Authorization")
	for _, scheme := range schemes {
		if len(authHeader) > len(scheme) && strings.EqualFold(authHeader[:len(scheme)], scheme) {
			return strings.TrimSpace(authHeader[len(scheme):])
		}
	}

	// 2. X-Auth-Token header for clients that cannot set Authorization
	return strings.TrimSpace(r.Header.Get("X-Auth-Token"))
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("WWW-Authenticate", "Token")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(dto.ErrorResponse{Error: msg})
}

// GetUserID returns the authenticated user, uuid.Nil outside Auth.
func GetUserID(ctx context.Context) uuid.UUID {
	if id, ok := ctx.Value(UserIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}

// WithUserID is used by tests and internal callers to act as a user.
func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIDKey, id)
}
