package handlers

import (
	"log/slog"
	"net/http"

	"github.com/hugh/kanmind/internal/api/dto"
	"github.com/hugh/kanmind/internal/comments"
)

type CommentHandler struct {
	store *comments.Store
	log   *slog.Logger
}

func NewCommentHandler(store *comments.Store, log *slog.Logger) *CommentHandler {
	return &CommentHandler{store: store, log: log}
}

func (h *CommentHandler) List(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	list, err := h.store.List(r.Context(), actor(r), taskID)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.NewCommentResponses(list))
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comment, err := h.store.Create(r.Context(), actor(r), taskID, req.Content)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}
	writeJSON(w, http.StatusCreated, dto.NewCommentResponse(comment))
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	taskID, ok := pathID(w, r, "id")
	if !ok {
		return
	}
	commentID, ok := pathID(w, r, "commentID")
	if !ok {
		return
	}

	if err := h.store.Delete(r.Context(), actor(r), taskID, commentID); err != nil {
		writeError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
