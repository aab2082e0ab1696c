package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/api/middleware"
	"github.com/hugh/kanmind/internal/apperr"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps err onto the status and body of its apperr kind. Unknown
// errors are logged and reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	status := apperr.Status(err)

	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		msg := ve.Detail
		if msg == "" {
			msg = "Validation failed"
		}
		writeJSON(w, status, dto.ErrorResponse{Error: msg, Details: ve.Fields})
	case status == http.StatusForbidden:
		writeJSON(w, status, dto.ErrorResponse{Error: apperr.ErrForbidden.Error()})
	case status == http.StatusInternalServerError:
		log.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeJSON(w, status, dto.ErrorResponse{Error: "Internal server error"})
	default:
		writeJSON(w, status, dto.ErrorResponse{Error: err.Error()})
	}
}

func writeValidation(w http.ResponseWriter, details map[string]string) {
	writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: details})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return false
	}
	return true
}

// pathID parses a UUID route parameter. A malformed id cannot name any
// object, so it is reported as not found.
func pathID(w http.ResponseWriter, r *http.Request, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "Not found."})
		return uuid.Nil, false
	}
	return id, true
}

func actor(r *http.Request) uuid.UUID {
	return middleware.GetUserID(r.Context())
}
