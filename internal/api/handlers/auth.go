package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/api/validation"
	"github.com/hugh/kanmind/internal/apperr"
	"github.com/hugh/kanmind/internal/auth"
)

type AuthHandler struct {
	users  auth.Directory
	tokens auth.Tokens
	log    *slog.Logger
}

func NewAuthHandler(users auth.Directory, tokens auth.Tokens, log *slog.Logger) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens, log: log}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	user, err := h.users.Register(r.Context(), auth.RegisterInput{
		Fullname:         req.Fullname,
		Email:            req.Email,
		Password:         req.Password,
		RepeatedPassword: req.RepeatedPassword,
	})
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.IssueOrGet(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	resp := dto.NewAuthResponse(token, user)
	writeJSON(w, http.StatusCreated, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if errors := req.Validate(); len(errors) > 0 {
		writeValidation(w, errors)
		return
	}

	user, err := h.users.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	token, err := h.tokens.IssueOrGet(r.Context(), user.ID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewAuthResponse(token, user))
}

// EmailCheck looks an email up case-insensitively.
func (h *AuthHandler) EmailCheck(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		writeValidation(w, map[string]string{"email": "This query parameter is required."})
		return
	}
	if !validation.IsValidEmail(email) {
		writeValidation(w, map[string]string{"email": "Enter a valid email address."})
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, dto.ErrorResponse{Error: "User not found."})
			return
		}
		writeError(w, r, h.log, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.NewUserSummary(user))
}

func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), actor(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewMeResponse(user))
}

// DeleteMe removes the calling user and everything they own.
func (h *AuthHandler) DeleteMe(w http.ResponseWriter, r *http.Request) {
	if err := h.users.DeleteUser(r.Context(), actor(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
